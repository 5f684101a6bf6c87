package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"quizboard/internal/model"
	"quizboard/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	commandTimeout = 10 * time.Second
	readyTimeout   = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// RoomService is the part of the room service a connection uses.
type RoomService interface {
	GetRoom(ctx context.Context, code string) (*model.Room, error)
	Buzz(ctx context.Context, code, playerID string) (*model.Room, error)
}

// HostService runs host commands sent over the socket.
type HostService interface {
	OpenQuestion(ctx context.Context, code string, categoryIdx, questionIdx int) (*model.Room, error)
	JudgeAnswer(ctx context.Context, code string, correct bool) (*model.Room, error)
	EndQuestion(ctx context.Context, code string) (*model.Room, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	authSvc    *service.AuthService
	roomSvc    RoomService
	hostSvc    HostService
	buzzWindow time.Duration

	msgRate  rate.Limit
	msgBurst int
}

// NewHandler creates a new WebSocket handler. buzzWindow is announced to
// clients in the welcome frame.
func NewHandler(hub *Hub, authSvc *service.AuthService, roomSvc RoomService, hostSvc HostService, buzzWindow time.Duration) *Handler {
	return &Handler{
		hub:        hub,
		authSvc:    authSvc,
		roomSvc:    roomSvc,
		hostSvc:    hostSvc,
		buzzWindow: buzzWindow,
		msgRate:    1,
		msgBurst:   5,
	}
}

// SetRateLimit changes the per-connection limit for inbound frames.
func (h *Handler) SetRateLimit(limit rate.Limit, burst int) {
	h.msgRate = limit
	h.msgBurst = burst
}

// RoomWS handles GET /v1/ws/rooms/{code}. A room host token or player token
// is passed as ?token=; without one the connection is a read-only viewer.
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := service.NormalizeCode(mux.Vars(r)["code"])

	role, playerID, status := h.authorize(r.URL.Query().Get("token"), code)
	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}

	if _, err := h.roomSvc.GetRoom(r.Context(), code); err != nil {
		http.Error(w, service.PublicMessage(err), service.HTTPStatus(err))
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("websocket upgrade")
		return
	}

	conn := NewConnection(h.hub, code, role, playerID)
	ready := h.hub.Register(conn)

	go h.writePump(wsConn, conn)

	h.hub.SendTo(conn, MsgWelcome, WelcomePayload{
		RoomCode:     code,
		Role:         role,
		PlayerID:     playerID,
		BuzzWindowMs: h.buzzWindow.Milliseconds(),
	})

	// Replay only after the feed is live so no write falls in between.
	select {
	case <-ready:
	case <-time.After(readyTimeout):
		log.Warn().Str("room", code).Msg("room feed not ready, replaying anyway")
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	room, err := h.roomSvc.GetRoom(ctx, code)
	cancel()
	if err != nil {
		h.hub.SendTo(conn, MsgError, ErrorPayload{Error: service.PublicMessage(err)})
	} else {
		h.hub.SendTo(conn, MsgSnapshot, model.EventFromRoom(room))
	}

	log.Info().Str("room", code).Str("role", string(role)).Str("player", playerID).Msg("websocket connected")
	go h.readPump(wsConn, conn)
}

func (h *Handler) authorize(token, code string) (Role, string, int) {
	if token == "" {
		return RoleViewer, "", http.StatusOK
	}
	if claims, err := h.authSvc.ValidateHostToken(token); err == nil {
		if claims.RoomCode != code {
			return "", "", http.StatusForbidden
		}
		return RoleHost, "", http.StatusOK
	}
	if claims, err := h.authSvc.ValidatePlayerToken(token); err == nil {
		if claims.RoomCode != code {
			return "", "", http.StatusForbidden
		}
		return RolePlayer, claims.PlayerID, http.StatusOK
	}
	return "", "", http.StatusUnauthorized
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	limiter := rate.NewLimiter(h.msgRate, h.msgBurst)

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("room", conn.RoomCode).Msg("websocket read")
			}
			break
		}

		if !limiter.Allow() {
			h.hub.SendTo(conn, MsgError, ErrorPayload{Error: "too many messages"})
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.hub.SendTo(conn, MsgError, ErrorPayload{Error: "malformed message"})
			continue
		}

		if err := h.dispatch(conn, &msg); err != nil {
			h.hub.SendTo(conn, MsgError, ErrorPayload{Error: service.PublicMessage(err)})
		}
	}
}

var (
	errHostOnly   = &service.UserInputError{Status: http.StatusForbidden, Msg: "only the host can do that"}
	errPlayerOnly = &service.UserInputError{Status: http.StatusForbidden, Msg: "only players can buzz"}
	errBadPayload = &service.UserInputError{Status: http.StatusBadRequest, Msg: "malformed payload"}
	errUnknown    = &service.UserInputError{Status: http.StatusBadRequest, Msg: "unknown message type"}
)

// dispatch runs one client command. Results reach every connection through
// the change feed, so nothing is sent back on success.
func (h *Handler) dispatch(conn *Connection, msg *Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case MsgBuzz:
		if conn.Role != RolePlayer {
			return errPlayerOnly
		}
		_, err := h.roomSvc.Buzz(ctx, conn.RoomCode, conn.PlayerID)
		return err

	case MsgOpenQuestion:
		if conn.Role != RoleHost {
			return errHostOnly
		}
		var p OpenQuestionPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, err := h.hostSvc.OpenQuestion(ctx, conn.RoomCode, p.CategoryIdx, p.QuestionIdx)
		return err

	case MsgJudge:
		if conn.Role != RoleHost {
			return errHostOnly
		}
		var p JudgePayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, err := h.hostSvc.JudgeAnswer(ctx, conn.RoomCode, p.Correct)
		return err

	case MsgEndQuestion:
		if conn.Role != RoleHost {
			return errHostOnly
		}
		_, err := h.hostSvc.EndQuestion(ctx, conn.RoomCode)
		return err
	}
	return errUnknown
}

func decodePayload(msg *Message, v interface{}) error {
	if len(msg.Payload) == 0 {
		return errBadPayload
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return errBadPayload
	}
	return nil
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
