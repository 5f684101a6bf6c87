// Package client is the realtime side of a host or player screen. A Session
// holds one WebSocket to a room, rebuilds the board from every snapshot and
// runs the local buzz-in countdown.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"quizboard/internal/game"
	"quizboard/internal/model"
	"quizboard/internal/transport/ws"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

var (
	// ErrBuzzerClosed is returned by Buzz when this player may not buzz now,
	// including after the local countdown ran out.
	ErrBuzzerClosed = errors.New("buzzer closed")
	// ErrNotHost is returned by host commands on a player or viewer session.
	ErrNotHost = errors.New("only the host can do that")
	// ErrStopped is returned after Stop.
	ErrStopped = errors.New("session stopped")
)

// APIError is a non-2xx answer of the REST API.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Msg)
}

// Options configures Dial.
type Options struct {
	// BaseURL is the server address, e.g. http://localhost:8080.
	BaseURL  string
	RoomCode string
	// Token is a room host or player token. Empty connects as a viewer.
	Token string
	// Quiz lets the session draw the board. Optional.
	Quiz *model.Quiz

	HTTPClient *http.Client
	Dialer     *websocket.Dialer
	// Tick is how often OnTick reports the remaining buzz time.
	Tick time.Duration
}

// Session is one connection to a room.
type Session struct {
	opts Options

	conn    *websocket.Conn
	writeMu sync.Mutex

	role       ws.Role
	playerID   string
	buzzWindow time.Duration

	mu        sync.Mutex
	rec       *game.Reconciler
	countdown *game.Countdown

	onUpdate func(game.Update)
	onError  func(string)
	onTick   func(time.Duration)

	stopOnce sync.Once
	stopped  chan struct{}
}

// Dial connects to the room and waits for the welcome frame.
func Dial(ctx context.Context, opts Options) (*Session, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	opts.RoomCode = strings.ToUpper(strings.TrimSpace(opts.RoomCode))

	wsURL, err := socketURL(opts.BaseURL, opts.RoomCode, opts.Token)
	if err != nil {
		return nil, err
	}

	conn, resp, err := opts.Dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("dial room %s: %w", opts.RoomCode, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	var msg ws.Message
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	var welcome ws.WelcomePayload
	if msg.Type != ws.MsgWelcome || json.Unmarshal(msg.Payload, &welcome) != nil {
		conn.Close()
		return nil, fmt.Errorf("expected welcome frame, got %q", msg.Type)
	}

	gameRole := game.RoleViewer
	if welcome.Role == ws.RoleHost {
		gameRole = game.RoleHost
	}
	rec := game.NewReconciler(gameRole, welcome.PlayerID)
	rec.SetQuiz(opts.Quiz)

	window := time.Duration(welcome.BuzzWindowMs) * time.Millisecond
	if window <= 0 {
		window = game.DefaultBuzzWindow
	}

	return &Session{
		opts:       opts,
		conn:       conn,
		role:       welcome.Role,
		playerID:   welcome.PlayerID,
		buzzWindow: window,
		rec:        rec,
		countdown:  game.NewCountdown(opts.Tick),
		stopped:    make(chan struct{}),
	}, nil
}

func socketURL(base, code, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/ws/rooms/" + url.PathEscape(code)
	q := url.Values{}
	if token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// OnUpdate sets the callback for applied snapshots. Set it before Run.
func (s *Session) OnUpdate(fn func(game.Update)) { s.onUpdate = fn }

// OnError sets the callback for error frames sent by the server.
func (s *Session) OnError(fn func(msg string)) { s.onError = fn }

// OnTick sets the callback reporting the time left to buzz.
func (s *Session) OnTick(fn func(remaining time.Duration)) { s.onTick = fn }

func (s *Session) Role() ws.Role { return s.role }

func (s *Session) PlayerID() string { return s.playerID }

// BuzzWindow is the buzz-in time announced by the server.
func (s *Session) BuzzWindow() time.Duration { return s.buzzWindow }

// Run reads frames until the connection closes or Stop is called. It is the
// only reader of the connection.
func (s *Session) Run() error {
	defer s.countdown.Stop()
	for {
		var msg ws.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.stopped:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read room %s: %w", s.opts.RoomCode, err)
		}
		s.handle(&msg)
	}
}

func (s *Session) handle(msg *ws.Message) {
	switch msg.Type {
	case ws.MsgSnapshot:
		var ev ws.SnapshotPayload
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			log.Warn().Err(err).Str("room", s.opts.RoomCode).Msg("bad snapshot frame")
			return
		}
		s.applySnapshot(ev)

	case ws.MsgError:
		var p ws.ErrorPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		log.Debug().Str("room", s.opts.RoomCode).Str("error", p.Error).Msg("server rejected command")
		if s.onError != nil {
			s.onError(p.Error)
		}

	default:
		log.Debug().Str("room", s.opts.RoomCode).Str("type", string(msg.Type)).Msg("ignoring frame")
	}
}

func (s *Session) applySnapshot(ev model.RoomEvent) {
	s.mu.Lock()
	u := s.rec.Apply(ev)
	// a replayed snapshot of an open window does not restart the countdown
	if u.BuzzWindowOpened {
		s.countdown.Start(s.buzzWindow, s.onTick, nil)
	}
	if u.BuzzerClosed || !ev.State.BuzzMode {
		s.countdown.Stop()
	}
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(u)
	}
}

// View is the current rendering of the room.
func (s *Session) View() game.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.View()
}

// State is the last snapshot plus local optimistic marks.
func (s *Session) State() model.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.State()
}

// BuzzRemaining is the time left in the local buzz-in window.
func (s *Session) BuzzRemaining() time.Duration {
	return s.countdown.Remaining()
}

// Buzz asks to answer the open question. It fails locally once the
// countdown has run out; the server decides everything else.
func (s *Session) Buzz() error {
	s.mu.Lock()
	ok := s.rec.CanBuzz() && s.countdown.Active()
	s.mu.Unlock()
	if !ok {
		return ErrBuzzerClosed
	}
	return s.send(ws.MsgBuzz, nil)
}

// OpenQuestion reveals a cell. The cell is marked used locally right away.
func (s *Session) OpenQuestion(categoryIdx, questionIdx int) error {
	if s.role != ws.RoleHost {
		return ErrNotHost
	}
	s.mu.Lock()
	s.rec.MarkUsed(s.rec.State().BoardIndex, categoryIdx, questionIdx)
	s.mu.Unlock()
	return s.send(ws.MsgOpenQuestion, ws.OpenQuestionPayload{CategoryIdx: categoryIdx, QuestionIdx: questionIdx})
}

// Judge marks the answer of the front buzzer.
func (s *Session) Judge(correct bool) error {
	if s.role != ws.RoleHost {
		return ErrNotHost
	}
	return s.send(ws.MsgJudge, ws.JudgePayload{Correct: correct})
}

// EndQuestion closes the open question without scoring.
func (s *Session) EndQuestion() error {
	if s.role != ws.RoleHost {
		return ErrNotHost
	}
	return s.send(ws.MsgEndQuestion, nil)
}

// SendState replaces the room's game state.
func (s *Session) SendState(ctx context.Context, state model.GameState) error {
	return s.patch(ctx, model.RoomPatch{State: &state})
}

// SendPlayers replaces the room's player list.
func (s *Session) SendPlayers(ctx context.Context, players []model.Player) error {
	if players == nil {
		players = []model.Player{}
	}
	return s.patch(ctx, model.RoomPatch{Players: players})
}

func (s *Session) patch(ctx context.Context, patch model.RoomPatch) error {
	if s.role != ws.RoleHost {
		return ErrNotHost
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	endpoint := s.opts.BaseURL + "/v1/rooms/" + url.PathEscape(s.opts.RoomCode) + "/state"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.opts.Token)

	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("patch room %s: %w", s.opts.RoomCode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Msg: e.Error}
	}
	return nil
}

func (s *Session) send(t ws.MessageType, payload interface{}) error {
	select {
	case <-s.stopped:
		return ErrStopped
	default:
	}
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// Stop closes the connection. Run returns nil afterwards.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopped)
		s.countdown.Stop()

		s.writeMu.Lock()
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		s.conn.Close()
	})
}
