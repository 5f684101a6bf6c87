package model

import "time"

type RoomStatus string

const (
	RoomOpen RoomStatus = "open"
)

// Room is the shared document one game session lives in. Game state and
// players are the only fields that change after creation.
type Room struct {
	Code       string     `json:"code" bson:"code"`
	GameName   string     `json:"gameName" bson:"gameName"`
	QuizID     string     `json:"quizId" bson:"quizId"`
	QuizTitle  string     `json:"quizTitle,omitempty" bson:"quizTitle,omitempty"`
	HostName   string     `json:"hostName" bson:"hostName"`
	MaxPlayers int        `json:"maxPlayers" bson:"maxPlayers"`
	PinHash    string     `json:"-" bson:"pinHash,omitempty"`
	HasPin     bool       `json:"hasPin" bson:"hasPin"`
	Status     RoomStatus `json:"status" bson:"status"`
	Players    []Player   `json:"players" bson:"players"`
	State      GameState  `json:"state" bson:"state"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// FindPlayer returns the index of the player with the given id, or -1.
func (r *Room) FindPlayer(id string) int {
	return IndexOfPlayer(r.Players, id)
}

// RoomPatch is a shallow merge into a stored room. Nil fields are left alone.
// Players encodes a nil roster as null so an empty one survives the wire.
type RoomPatch struct {
	State   *GameState `json:"state,omitempty"`
	Players []Player   `json:"players"`
}

// IsEmpty reports whether the patch would not change anything.
func (p *RoomPatch) IsEmpty() bool {
	return p.State == nil && p.Players == nil
}

// RoomEvent is what the change feed delivers after a room write.
type RoomEvent struct {
	Code    string    `json:"code"`
	State   GameState `json:"state"`
	Players []Player  `json:"players"`
}

// EventFromRoom builds the feed payload for a stored room.
func EventFromRoom(room *Room) RoomEvent {
	players := room.Players
	if players == nil {
		players = []Player{}
	}
	return RoomEvent{
		Code:    room.Code,
		State:   room.State,
		Players: players,
	}
}

// CreateRoomRequest carries the host's choices for a new room.
type CreateRoomRequest struct {
	GameName     string     `json:"gameName"`
	HostName     string     `json:"hostName"`
	MaxPlayers   int        `json:"maxPlayers"`
	Pin          string     `json:"pin,omitempty"`
	QuizID       string     `json:"quizId"`
	QuizTitle    string     `json:"quizTitle,omitempty"`
	InitialState *GameState `json:"initialState,omitempty"`
}

// CreateRoomResponse is returned to the host; the token authorizes game commands.
type CreateRoomResponse struct {
	Room      *Room  `json:"room"`
	HostToken string `json:"hostToken"`
}
