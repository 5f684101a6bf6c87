package game

import "quizboard/internal/model"

// Host is the authoritative game state machine. It owns a private copy of
// the state and players; callers read results back with State and Players.
// Operations whose preconditions fail return false and change nothing.
type Host struct {
	quiz    *model.Quiz
	players []model.Player
	state   model.GameState
	buzzer  Buzzer
	used    map[string]struct{}
}

// NewHost loads a host from a stored room.
func NewHost(quiz *model.Quiz, players []model.Player, state model.GameState) *Host {
	h := &Host{
		quiz:    quiz,
		players: model.ClonePlayers(players),
		state:   state.Clone(),
		buzzer:  BuzzerFromState(state),
		used:    make(map[string]struct{}, len(state.Used)),
	}
	for _, k := range h.state.Used {
		h.used[k] = struct{}{}
	}
	h.resolveCurrentPlayer()
	return h
}

// State serializes the current game state.
func (h *Host) State() model.GameState {
	s := h.state.Clone()
	h.buzzer.WriteTo(&s)
	return s
}

func (h *Host) Players() []model.Player {
	return model.ClonePlayers(h.players)
}

func (h *Host) Buzzer() Buzzer { return h.buzzer }

// SyncPlayers replaces the player list, keeping scores the host already holds
// for known players.
func (h *Host) SyncPlayers(players []model.Player) {
	next := model.ClonePlayers(players)
	for i := range next {
		if j := model.IndexOfPlayer(h.players, next[i].ID); j >= 0 {
			next[i].Score = h.players[j].Score
		}
	}
	h.players = next
	h.resolveCurrentPlayer()
}

// OpenQuestion reveals a cell of the active board. Any buzz-in in progress is
// reset.
func (h *Host) OpenQuestion(categoryIdx, questionIdx int) bool {
	q, ok := h.quiz.Board(h.state.BoardIndex).Question(categoryIdx, questionIdx)
	if !ok {
		return false
	}
	key := model.CellKey(h.state.BoardIndex, categoryIdx, questionIdx)
	if _, used := h.used[key]; used {
		return false
	}
	h.used[key] = struct{}{}
	h.state.Used = append(h.state.Used, key)
	h.state.CurrentCell = &model.CurrentCell{
		CategoryIdx: categoryIdx,
		QuestionIdx: questionIdx,
		Points:      q.Points(),
		Text:        q.Text,
		Answer:      q.Answer,
	}
	h.buzzer = ClosedBuzzer()
	h.resolveCurrentPlayer()
	return true
}

// JudgeAnswer scores the answer given by the active player, or by the front
// of the buzz queue while buzzing.
func (h *Host) JudgeAnswer(correct bool) bool {
	cell := h.state.CurrentCell
	if cell == nil {
		return false
	}
	half := cell.Points / 2

	switch h.buzzer.Phase() {
	case BuzzClosed:
		if correct {
			h.addScore(h.state.CurrentPlayerID, cell.Points)
			h.endQuestion()
			return true
		}
		h.addScore(h.state.CurrentPlayerID, -half)
		h.buzzer = OpenBuzzer()
		if !h.hasBuzzCandidates() {
			h.endQuestion()
		}
		return true

	case BuzzJudging:
		judged := h.buzzer.Judged()
		if correct {
			h.addScore(judged, half)
			h.endQuestion()
			return true
		}
		h.addScore(judged, -half)
		h.buzzer = h.buzzer.Advance()
		if h.buzzer.Phase() == BuzzClosed {
			h.endQuestion()
		}
		return true
	}

	// open window, nobody to judge yet
	return false
}

// EndQuestion closes the open question without scoring, e.g. when nobody
// buzzed in.
func (h *Host) EndQuestion() bool {
	if h.state.CurrentCell == nil {
		return false
	}
	h.endQuestion()
	return true
}

// Buzz appends playerID to the queue if they are eligible.
func (h *Host) Buzz(playerID string) bool {
	if !CanBuzz(h.State(), h.players, playerID) {
		return false
	}
	next, ok := h.buzzer.Enqueue(playerID)
	if ok {
		h.buzzer = next
	}
	return ok
}

// Flash tags the next broadcast with a one-shot event. FlashNone leaves the
// sequence untouched.
func (h *Host) Flash(t model.FlashType) {
	if t == model.FlashNone {
		return
	}
	h.state.FlashSeq++
	h.state.FlashType = t
}

func (h *Host) endQuestion() {
	h.state.CurrentCell = nil
	h.buzzer = ClosedBuzzer()
	// buzz-in winners do not take the turn
	h.state.CurrentPlayerID = NextPlayerID(h.players, h.state.CurrentPlayerID)
	if ShouldAdvanceBoard(h.quiz, h.state) {
		h.state.BoardIndex = 1
	}
}

func (h *Host) hasBuzzCandidates() bool {
	for _, p := range h.players {
		if p.ID != h.state.CurrentPlayerID {
			return true
		}
	}
	return false
}

func (h *Host) addScore(playerID string, delta int) {
	if i := model.IndexOfPlayer(h.players, playerID); i >= 0 {
		h.players[i].Score += delta
	}
}

func (h *Host) resolveCurrentPlayer() {
	if len(h.players) == 0 {
		h.state.CurrentPlayerID = ""
		return
	}
	if model.IndexOfPlayer(h.players, h.state.CurrentPlayerID) < 0 {
		h.state.CurrentPlayerID = h.players[0].ID
	}
}
