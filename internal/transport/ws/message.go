package ws

import (
	"encoding/json"

	"quizboard/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server to client
const (
	MsgWelcome  MessageType = "welcome"
	MsgSnapshot MessageType = "snapshot"
	MsgError    MessageType = "error"
)

// Client to server. Only players buzz; the rest is host only.
const (
	MsgBuzz         MessageType = "buzz"
	MsgOpenQuestion MessageType = "open_question"
	MsgJudge        MessageType = "judge"
	MsgEndQuestion  MessageType = "end_question"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Role of a connection in its room.
type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
	RoleViewer Role = "viewer"
)

// WelcomePayload is the first frame of every connection.
type WelcomePayload struct {
	RoomCode     string `json:"roomCode"`
	Role         Role   `json:"role"`
	PlayerID     string `json:"playerId,omitempty"`
	BuzzWindowMs int64  `json:"buzzWindowMs"`
}

// SnapshotPayload carries the whole synchronized room.
type SnapshotPayload = model.RoomEvent

type ErrorPayload struct {
	Error string `json:"error"`
}

type OpenQuestionPayload struct {
	CategoryIdx int `json:"categoryIdx"`
	QuestionIdx int `json:"questionIdx"`
}

type JudgePayload struct {
	Correct bool `json:"correct"`
}

// NewMessage encodes payload into an envelope.
func NewMessage(t MessageType, payload interface{}) (*Message, error) {
	msg := &Message{Type: t}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}
	return msg, nil
}
