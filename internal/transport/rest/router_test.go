package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "quizboard/docs"
	"quizboard/internal/cache"
	"quizboard/internal/model"
	"quizboard/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRooms struct {
	mock.Mock
}

func (m *mockRooms) CreateRoom(_ context.Context, hostID string, req model.CreateRoomRequest) (*model.CreateRoomResponse, error) {
	args := m.Called(hostID, req)
	resp, _ := args.Get(0).(*model.CreateRoomResponse)
	return resp, args.Error(1)
}

func (m *mockRooms) GetRoom(_ context.Context, code string) (*model.Room, error) {
	args := m.Called(code)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *mockRooms) JoinRoom(_ context.Context, code string, req model.JoinRequest) (*model.PlayerJoinResponse, error) {
	args := m.Called(code, req)
	resp, _ := args.Get(0).(*model.PlayerJoinResponse)
	return resp, args.Error(1)
}

func (m *mockRooms) UpdateRoomState(_ context.Context, code string, patch model.RoomPatch) (*model.Room, error) {
	args := m.Called(code, patch)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *mockRooms) Buzz(_ context.Context, code, playerID string) (*model.Room, error) {
	args := m.Called(code, playerID)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *mockRooms) Leaderboard(_ context.Context, code string, limit int) ([]cache.LeaderboardEntry, error) {
	args := m.Called(code, limit)
	entries, _ := args.Get(0).([]cache.LeaderboardEntry)
	return entries, args.Error(1)
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

type mockQuizzes struct {
	mock.Mock
}

func (m *mockQuizzes) LoadQuizByID(_ context.Context, id string) (*model.Quiz, error) {
	args := m.Called(id)
	quiz, _ := args.Get(0).(*model.Quiz)
	return quiz, args.Error(1)
}

func (m *mockQuizzes) ListQuizzes(_ context.Context) ([]model.QuizSummary, error) {
	args := m.Called()
	list, _ := args.Get(0).([]model.QuizSummary)
	return list, args.Error(1)
}

func (m *mockQuizzes) SaveQuiz(_ context.Context, quiz *model.Quiz) (*model.Quiz, error) {
	args := m.Called(quiz)
	saved, _ := args.Get(0).(*model.Quiz)
	return saved, args.Error(1)
}

type routerFixture struct {
	handler http.Handler
	auth    *service.AuthService
	rooms   *mockRooms
	host    *mockHost
	quizzes *mockQuizzes
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		auth:    service.NewAuthService("admin", "secret", "k", time.Hour),
		rooms:   &mockRooms{},
		host:    &mockHost{},
		quizzes: &mockQuizzes{},
	}
	f.handler = NewRouter(&Container{
		AuthService: f.auth,
		QuizService: f.quizzes,
		RoomService: f.rooms,
		HostService: f.host,
		PublicURL:   "https://quiz.example",
	})
	return f
}

func (f *routerFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthAndDocs(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/v1/docs/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/v1", doc["basePath"])
	assert.Contains(t, doc["paths"], "/rooms/{code}/buzz")

	rec = f.do(http.MethodOptions, "/v1/rooms", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogin(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestCreateRoom(t *testing.T) {
	f := newRouterFixture()
	login, err := f.auth.Login("admin", "secret")
	require.NoError(t, err)

	req := model.CreateRoomRequest{HostName: "Quizmaster", QuizID: "q1", MaxPlayers: 4}

	rec := f.do(http.MethodPost, "/v1/rooms", "", req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	player, err := f.auth.GeneratePlayerToken("ABC234", "p1")
	require.NoError(t, err)
	rec = f.do(http.MethodPost, "/v1/rooms", player, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.rooms.On("CreateRoom", login.HostID, req).Return(&model.CreateRoomResponse{
		Room:      &model.Room{Code: "ABC234"},
		HostToken: "room-token",
	}, nil).Once()
	rec = f.do(http.MethodPost, "/v1/rooms", login.Token, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp model.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ABC234", resp.Room.Code)
	assert.Equal(t, "room-token", resp.HostToken)

	f.rooms.On("CreateRoom", login.HostID, req).Return(nil, &service.TransportError{Op: "create room", Err: assert.AnError})
	rec = f.do(http.MethodPost, "/v1/rooms", login.Token, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "create room failed", errorOf(t, rec))
}

func TestJoinAndGetRoom(t *testing.T) {
	f := newRouterFixture()
	room := &model.Room{Code: "ABC234", PinHash: "secret-hash", HasPin: true}

	f.rooms.On("GetRoom", "ABC234").Return(room, nil)
	f.rooms.On("GetRoom", "NOPE22").Return(nil, service.ErrRoomNotFound)

	rec := f.do(http.MethodGet, "/v1/rooms/ABC234", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	assert.Contains(t, rec.Body.String(), `"hasPin":true`)

	rec = f.do(http.MethodGet, "/v1/rooms/NOPE22", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "room not found", errorOf(t, rec))

	f.rooms.On("JoinRoom", "ABC234", model.JoinRequest{Name: "Alice", Pin: "0000"}).Return(nil, service.ErrWrongPin)
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/join", "", model.JoinRequest{Name: "Alice", Pin: "0000"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.rooms.On("JoinRoom", "ABC234", model.JoinRequest{Name: "Bob"}).Return(nil, service.ErrRoomFull)
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/join", "", model.JoinRequest{Name: "Bob"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.rooms.On("JoinRoom", "ABC234", model.JoinRequest{Name: "alice", Pin: "4711"}).Return(&model.PlayerJoinResponse{
		Room:   room,
		Player: model.Player{ID: "p2", Name: "Alice (2)"},
		Token:  "player-token",
	}, nil)
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/join", "", model.JoinRequest{Name: "alice", Pin: "4711"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.PlayerJoinResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Alice (2)", resp.Player.Name)

	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/join", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoomHostRoutes(t *testing.T) {
	f := newRouterFixture()
	room := &model.Room{Code: "ABC234"}

	login, err := f.auth.Login("admin", "secret")
	require.NoError(t, err)
	hostToken, err := f.auth.GenerateRoomHostToken("ABC234", login.HostID)
	require.NoError(t, err)
	otherRoom, err := f.auth.GenerateRoomHostToken("ZZZ999", login.HostID)
	require.NoError(t, err)

	open := map[string]int{"categoryIdx": 2, "questionIdx": 3}

	rec := f.do(http.MethodPost, "/v1/rooms/ABC234/questions/open", "", open)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/questions/open", login.Token, open)
	assert.Equal(t, http.StatusForbidden, rec.Code, "operator token is not scoped to the room")
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/questions/open", otherRoom, open)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.host.On("OpenQuestion", "abc234", 2, 3).Return(room, nil)
	rec = f.do(http.MethodPost, "/v1/rooms/abc234/questions/open", hostToken, open)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.host.On("JudgeAnswer", "ABC234", true).Return(room, nil)
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/judge", hostToken, map[string]bool{"correct": true})
	assert.Equal(t, http.StatusOK, rec.Code)

	f.host.On("EndQuestion", "ABC234").Return(room, nil)
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/questions/end", hostToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	state := model.NewGameState()
	state.BoardIndex = 1
	f.rooms.On("UpdateRoomState", "ABC234", mock.MatchedBy(func(p model.RoomPatch) bool {
		return p.State != nil && p.State.BoardIndex == 1 && p.Players == nil
	})).Return(room, nil)
	rec = f.do(http.MethodPatch, "/v1/rooms/ABC234/state", hostToken, model.RoomPatch{State: &state})
	assert.Equal(t, http.StatusOK, rec.Code)

	f.host.AssertExpectations(t)
	f.rooms.AssertExpectations(t)
}

func TestBuzzRoute(t *testing.T) {
	f := newRouterFixture()
	token, err := f.auth.GeneratePlayerToken("ABC234", "p2")
	require.NoError(t, err)
	hostToken, err := f.auth.GenerateRoomHostToken("ABC234", "host_1")
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/v1/rooms/ABC234/buzz", hostToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/v1/rooms/ZZZ999/buzz", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.rooms.On("Buzz", "ABC234", "p2").Return(&model.Room{Code: "ABC234"}, nil).Once()
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/buzz", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.rooms.On("Buzz", "ABC234", "p2").Return(nil, service.ErrNotEligible)
	rec = f.do(http.MethodPost, "/v1/rooms/ABC234/buzz", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not eligible to buzz", errorOf(t, rec))
}

func TestQuizRoutes(t *testing.T) {
	f := newRouterFixture()
	login, err := f.auth.Login("admin", "secret")
	require.NoError(t, err)

	f.quizzes.On("ListQuizzes").Return([]model.QuizSummary{{ID: "q2", Title: "Newer"}, {ID: "q1", Title: "Older"}}, nil)
	rec := f.do(http.MethodGet, "/v1/quizzes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.QuizSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "q2", list[0].ID)

	f.quizzes.On("LoadQuizByID", "missing").Return(nil, service.ErrQuizNotFound)
	rec = f.do(http.MethodGet, "/v1/quizzes/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/v1/quizzes", "", model.Quiz{Title: "New"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.quizzes.On("SaveQuiz", mock.AnythingOfType("*model.Quiz")).Return(nil, service.ErrInvalidQuiz).Once()
	rec = f.do(http.MethodPost, "/v1/quizzes", login.Token, model.Quiz{Title: "New"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.quizzes.On("SaveQuiz", mock.AnythingOfType("*model.Quiz")).Return(&model.Quiz{ID: "q3", Title: "New"}, nil)
	rec = f.do(http.MethodPost, "/v1/quizzes", login.Token, model.Quiz{Title: "New"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLeaderboardAndQR(t *testing.T) {
	f := newRouterFixture()
	f.rooms.On("Leaderboard", "ABC234", 3).Return([]cache.LeaderboardEntry{{PlayerID: "p1", Name: "Alice", Score: 500, Rank: 1}}, nil)

	rec := f.do(http.MethodGet, "/v1/rooms/ABC234/leaderboard?top=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		RoomCode string                   `json:"roomCode"`
		Entries  []cache.LeaderboardEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ABC234", body.RoomCode)
	assert.Equal(t, "Alice", body.Entries[0].Name)

	f.rooms.On("GetRoom", "ABC234").Return(&model.Room{Code: "ABC234"}, nil)
	rec = f.do(http.MethodGet, "/v1/rooms/ABC234/qr", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}
