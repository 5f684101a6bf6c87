package model

import (
	"encoding/json"
	"fmt"
)

// FlashType tags the one-shot visual event carried by a broadcast.
type FlashType string

const (
	FlashNone    FlashType = ""
	FlashCorrect FlashType = "correct"
	FlashWrong   FlashType = "wrong"
)

// CurrentCell is the snapshot of the open question. CategoryIdx and
// QuestionIdx are 1-based.
type CurrentCell struct {
	CategoryIdx int    `json:"categoryIdx" bson:"categoryIdx"`
	QuestionIdx int    `json:"questionIdx" bson:"questionIdx"`
	Points      int    `json:"points" bson:"points"`
	Text        string `json:"text" bson:"text"`
	Answer      string `json:"answer" bson:"answer"`
}

// GameState is the synchronized part of a room. It is written whole by the
// host and replaced whole on every client.
type GameState struct {
	BoardIndex      int          `json:"boardIndex" bson:"boardIndex"`
	Used            []string     `json:"used" bson:"used"`
	CurrentCell     *CurrentCell `json:"currentCell" bson:"currentCell"`
	BuzzMode        bool         `json:"buzzMode" bson:"buzzMode"`
	BuzzQueue       []string     `json:"buzzQueue" bson:"buzzQueue"`
	CurrentPlayerID string       `json:"currentPlayerId" bson:"currentPlayerId"`
	FlashSeq        int          `json:"flashSeq" bson:"flashSeq"`
	FlashType       FlashType    `json:"flashType" bson:"flashType"`

	// Single-buzzer field written by older hosts. Read only.
	LegacyBuzzPlayerID string `json:"currentBuzzPlayerId,omitempty" bson:"currentBuzzPlayerId,omitempty"`
}

// NewGameState is the state a fresh room starts with.
func NewGameState() GameState {
	return GameState{
		Used:      []string{},
		BuzzQueue: []string{},
	}
}

// Clone deep-copies the state.
func (s GameState) Clone() GameState {
	out := s
	out.Used = append([]string{}, s.Used...)
	out.BuzzQueue = append([]string{}, s.BuzzQueue...)
	if s.CurrentCell != nil {
		cell := *s.CurrentCell
		out.CurrentCell = &cell
	}
	return out
}

type gameStateWire struct {
	BoardIndex         int          `json:"boardIndex"`
	Used               []string     `json:"used"`
	CurrentCell        *CurrentCell `json:"currentCell"`
	BuzzMode           bool         `json:"buzzMode"`
	BuzzQueue          []string     `json:"buzzQueue"`
	CurrentPlayerID    *string      `json:"currentPlayerId"`
	FlashSeq           int          `json:"flashSeq"`
	FlashType          *FlashType   `json:"flashType"`
	LegacyBuzzPlayerID string       `json:"currentBuzzPlayerId,omitempty"`
}

// MarshalJSON writes empty ids and tags as null and empty lists as [].
func (s GameState) MarshalJSON() ([]byte, error) {
	w := gameStateWire{
		BoardIndex:         s.BoardIndex,
		Used:               s.Used,
		CurrentCell:        s.CurrentCell,
		BuzzMode:           s.BuzzMode,
		BuzzQueue:          s.BuzzQueue,
		FlashSeq:           s.FlashSeq,
		LegacyBuzzPlayerID: s.LegacyBuzzPlayerID,
	}
	if w.Used == nil {
		w.Used = []string{}
	}
	if w.BuzzQueue == nil {
		w.BuzzQueue = []string{}
	}
	if s.CurrentPlayerID != "" {
		id := s.CurrentPlayerID
		w.CurrentPlayerID = &id
	}
	if s.FlashType != FlashNone {
		t := s.FlashType
		w.FlashType = &t
	}
	return json.Marshal(w)
}

func (s *GameState) UnmarshalJSON(data []byte) error {
	var w gameStateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = GameState{
		BoardIndex:         w.BoardIndex,
		Used:               w.Used,
		CurrentCell:        w.CurrentCell,
		BuzzMode:           w.BuzzMode,
		BuzzQueue:          w.BuzzQueue,
		FlashSeq:           w.FlashSeq,
		LegacyBuzzPlayerID: w.LegacyBuzzPlayerID,
	}
	if w.CurrentPlayerID != nil {
		s.CurrentPlayerID = *w.CurrentPlayerID
	}
	if w.FlashType != nil {
		s.FlashType = *w.FlashType
	}
	return nil
}

// CellKey is the used-set key of a cell, e.g. "b0-c2-q3".
func CellKey(board, categoryIdx, questionIdx int) string {
	return fmt.Sprintf("b%d-c%d-q%d", board, categoryIdx, questionIdx)
}

// ParseCellKey splits a cell key back into its parts.
func ParseCellKey(key string) (board, categoryIdx, questionIdx int, ok bool) {
	n, err := fmt.Sscanf(key, "b%d-c%d-q%d", &board, &categoryIdx, &questionIdx)
	if err != nil || n != 3 {
		return 0, 0, 0, false
	}
	return board, categoryIdx, questionIdx, true
}
