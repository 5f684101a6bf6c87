package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizboard/internal/cache"
	"quizboard/internal/model"
	"quizboard/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type mockRooms struct {
	mock.Mock
}

func (m *mockRooms) GetRoom(_ context.Context, code string) (*model.Room, error) {
	args := m.Called(code)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *mockRooms) Buzz(_ context.Context, code, playerID string) (*model.Room, error) {
	args := m.Called(code, playerID)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

type mockHost struct {
	mock.Mock
}

func (m *mockHost) OpenQuestion(_ context.Context, code string, categoryIdx, questionIdx int) (*model.Room, error) {
	args := m.Called(code, categoryIdx, questionIdx)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *mockHost) JudgeAnswer(_ context.Context, code string, correct bool) (*model.Room, error) {
	args := m.Called(code, correct)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *mockHost) EndQuestion(_ context.Context, code string) (*model.Room, error) {
	args := m.Called(code)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

type wsFixture struct {
	server  *httptest.Server
	hub     *Hub
	handler *Handler
	feed    cache.ChangeFeed
	auth    *service.AuthService
	rooms   *mockRooms
	host    *mockHost
	room    *model.Room
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	feed := cache.NewChangeFeed(client)
	hub := NewHub(feed)
	t.Cleanup(hub.Close)

	room := &model.Room{
		Code:    "ABC234",
		Players: []model.Player{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"}},
		State:   model.NewGameState(),
	}
	rooms := &mockRooms{}
	rooms.On("GetRoom", "ABC234").Return(room, nil)
	rooms.On("GetRoom", "NOPE22").Return(nil, service.ErrRoomNotFound)
	host := &mockHost{}

	auth := service.NewAuthService("admin", "secret", "k", time.Hour)
	h := NewHandler(hub, auth, rooms, host, 10*time.Second)

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/rooms/{code}", h.RoomWS)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &wsFixture{server: server, hub: hub, handler: h, feed: feed, auth: auth, rooms: rooms, host: host, room: room}
}

func (f *wsFixture) dial(t *testing.T, code, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/v1/ws/rooms/" + code
	if token != "" {
		url += "?token=" + token
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func readMessage(t *testing.T, c *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, c.ReadJSON(&msg))
	return msg
}

func readError(t *testing.T, c *websocket.Conn) string {
	t.Helper()
	msg := readMessage(t, c)
	require.Equal(t, MsgError, msg.Type)
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	return p.Error
}

// connect dials and consumes the welcome and replay frames.
func (f *wsFixture) connect(t *testing.T, token string) (*websocket.Conn, WelcomePayload) {
	t.Helper()
	c, _, err := f.dial(t, "abc234", token)
	require.NoError(t, err)

	msg := readMessage(t, c)
	require.Equal(t, MsgWelcome, msg.Type)
	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &welcome))

	msg = readMessage(t, c)
	require.Equal(t, MsgSnapshot, msg.Type)
	return c, welcome
}

func TestRoomWS_ViewerGetsReplayAndFeed(t *testing.T) {
	f := newWSFixture(t)

	c, _, err := f.dial(t, "ABC234", "")
	require.NoError(t, err)

	msg := readMessage(t, c)
	require.Equal(t, MsgWelcome, msg.Type)
	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &welcome))
	assert.Equal(t, RoleViewer, welcome.Role)
	assert.Equal(t, "ABC234", welcome.RoomCode)
	assert.Equal(t, int64(10000), welcome.BuzzWindowMs)

	msg = readMessage(t, c)
	require.Equal(t, MsgSnapshot, msg.Type)
	var replay SnapshotPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &replay))
	assert.Len(t, replay.Players, 2)

	state := model.NewGameState()
	state.FlashSeq = 7
	state.FlashType = model.FlashCorrect
	require.NoError(t, f.feed.Publish(context.Background(), model.RoomEvent{Code: "ABC234", State: state, Players: f.room.Players}))

	msg = readMessage(t, c)
	require.Equal(t, MsgSnapshot, msg.Type)
	var snap SnapshotPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, 7, snap.State.FlashSeq)
	assert.Equal(t, model.FlashCorrect, snap.State.FlashType)

	assert.Equal(t, 1, f.hub.Watching("ABC234"))
	c.Close()
	assert.Eventually(t, func() bool { return f.hub.Watching("ABC234") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRoomWS_ViewerCannotCommand(t *testing.T) {
	f := newWSFixture(t)
	c, _ := f.connect(t, "")

	require.NoError(t, c.WriteJSON(Message{Type: MsgBuzz}))
	assert.Equal(t, "only players can buzz", readError(t, c))

	require.NoError(t, c.WriteJSON(Message{Type: MsgEndQuestion}))
	assert.Equal(t, "only the host can do that", readError(t, c))
	f.host.AssertNotCalled(t, "EndQuestion", mock.Anything)
}

func TestRoomWS_PlayerCommands(t *testing.T) {
	f := newWSFixture(t)
	token, err := f.auth.GeneratePlayerToken("ABC234", "p2")
	require.NoError(t, err)

	f.rooms.On("Buzz", "ABC234", "p2").Return(f.room, nil).Once()
	f.rooms.On("Buzz", "ABC234", "p2").Return(nil, service.ErrNotEligible)

	c, welcome := f.connect(t, token)
	assert.Equal(t, RolePlayer, welcome.Role)
	assert.Equal(t, "p2", welcome.PlayerID)

	require.NoError(t, c.WriteJSON(Message{Type: MsgBuzz}))
	require.NoError(t, c.WriteJSON(Message{Type: MsgBuzz}))
	assert.Equal(t, "not eligible to buzz", readError(t, c))
	f.rooms.AssertNumberOfCalls(t, "Buzz", 2)

	require.NoError(t, c.WriteJSON(Message{Type: MsgJudge, Payload: json.RawMessage(`{"correct":true}`)}))
	assert.Equal(t, "only the host can do that", readError(t, c))
	f.host.AssertNotCalled(t, "JudgeAnswer", mock.Anything, mock.Anything)
}

func TestRoomWS_HostCommands(t *testing.T) {
	f := newWSFixture(t)
	token, err := f.auth.GenerateRoomHostToken("ABC234", "host_1")
	require.NoError(t, err)

	f.host.On("OpenQuestion", "ABC234", 1, 2).Return(f.room, nil)
	f.host.On("JudgeAnswer", "ABC234", false).Return(nil, &service.TransportError{Op: "update room", Err: assert.AnError})

	c, welcome := f.connect(t, token)
	assert.Equal(t, RoleHost, welcome.Role)

	require.NoError(t, c.WriteJSON(Message{Type: MsgOpenQuestion, Payload: json.RawMessage(`{"categoryIdx":1,"questionIdx":2}`)}))
	require.NoError(t, c.WriteJSON(Message{Type: MsgJudge, Payload: json.RawMessage(`{"correct":false}`)}))
	assert.Equal(t, "update room failed", readError(t, c))
	f.host.AssertCalled(t, "OpenQuestion", "ABC234", 1, 2)

	require.NoError(t, c.WriteJSON(Message{Type: MsgOpenQuestion}))
	assert.Equal(t, "malformed payload", readError(t, c))

	require.NoError(t, c.WriteJSON(Message{Type: "dance"}))
	assert.Equal(t, "unknown message type", readError(t, c))
}

func TestRoomWS_RateLimited(t *testing.T) {
	f := newWSFixture(t)
	f.handler.SetRateLimit(rate.Every(time.Hour), 1)
	token, err := f.auth.GeneratePlayerToken("ABC234", "p1")
	require.NoError(t, err)
	f.rooms.On("Buzz", "ABC234", "p1").Return(f.room, nil)

	c, _ := f.connect(t, token)
	require.NoError(t, c.WriteJSON(Message{Type: MsgBuzz}))
	require.NoError(t, c.WriteJSON(Message{Type: MsgBuzz}))
	assert.Equal(t, "too many messages", readError(t, c))
	f.rooms.AssertNumberOfCalls(t, "Buzz", 1)
}

func TestRoomWS_Rejects(t *testing.T) {
	f := newWSFixture(t)

	otherRoom, err := f.auth.GeneratePlayerToken("ZZZ999", "p1")
	require.NoError(t, err)
	_, resp, err := f.dial(t, "ABC234", otherRoom)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	otherHost, err := f.auth.GenerateRoomHostToken("ZZZ999", "host_1")
	require.NoError(t, err)
	_, resp, err = f.dial(t, "ABC234", otherHost)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = f.dial(t, "ABC234", "garbage")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = f.dial(t, "NOPE22", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
