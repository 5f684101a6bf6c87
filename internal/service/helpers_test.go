package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"quizboard/internal/cache"
	"quizboard/internal/config"
	"quizboard/internal/crypto"
	"quizboard/internal/model"
	"quizboard/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testQuizID = "65f000000000000000000001"

type mockQuizRepo struct {
	mock.Mock
}

func (m *mockQuizRepo) Create(ctx context.Context, quiz *model.Quiz) (string, error) {
	args := m.Called(ctx, quiz)
	return args.String(0), args.Error(1)
}

func (m *mockQuizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	args := m.Called(ctx, id)
	quiz, _ := args.Get(0).(*model.Quiz)
	return quiz, args.Error(1)
}

func (m *mockQuizRepo) List(ctx context.Context, limit int64) ([]model.QuizSummary, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]model.QuizSummary)
	return list, args.Error(1)
}

// memRoomRepo is an in-memory RoomRepo that stores copies.
type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
	err   error
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: map[string]*model.Room{}}
}

func copyRoom(r *model.Room) *model.Room {
	out := *r
	out.Players = model.ClonePlayers(r.Players)
	out.State = r.State.Clone()
	return &out
}

func (m *memRoomRepo) Create(_ context.Context, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rooms[room.Code]; ok {
		return repository.ErrDuplicateCode
	}
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt
	m.rooms[room.Code] = copyRoom(room)
	return nil
}

func (m *memRoomRepo) GetByCode(_ context.Context, code string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rooms[code]
	if !ok {
		return nil, nil
	}
	return copyRoom(r), nil
}

func (m *memRoomRepo) ApplyPatch(_ context.Context, code string, patch model.RoomPatch) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rooms[code]
	if !ok {
		return nil, nil
	}
	if patch.State != nil {
		r.State = patch.State.Clone()
	}
	if patch.Players != nil {
		r.Players = model.ClonePlayers(patch.Players)
	}
	return copyRoom(r), nil
}

func (m *memRoomRepo) AppendPlayer(_ context.Context, code string, player model.Player, maxPlayers int) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rooms[code]
	if !ok || len(r.Players) >= maxPlayers {
		return nil, nil
	}
	r.Players = append(r.Players, player)
	return copyRoom(r), nil
}

func (m *memRoomRepo) EnsureIndexes(context.Context, time.Duration) error { return nil }

func testQuiz() *model.Quiz {
	cat := func(name string, n int) model.Category {
		c := model.Category{Name: name}
		for i := 1; i <= n; i++ {
			c.Questions = append(c.Questions, model.Question{Index: i, Text: name + " question", Answer: name + " answer"})
		}
		return c
	}
	return &model.Quiz{
		ID:    testQuizID,
		Title: "General Knowledge",
		Boards: []model.Board{
			{Categories: []model.Category{cat("History", 2), cat("Science", 2)}},
			{Categories: []model.Category{cat("Final", 1)}},
		},
	}
}

type fixture struct {
	rooms   *RoomService
	host    *HostService
	quizzes *QuizService
	auth    *AuthService
	repo    *memRoomRepo
	quiz    *mockQuizRepo
	feed    cache.ChangeFeed
	mr      *miniredis.Miniredis
}

func newFixture(t *testing.T, tweak ...func(*config.GameConfig)) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := config.DefaultGameConfig()
	for _, fn := range tweak {
		fn(&cfg)
	}

	quizRepo := &mockQuizRepo{}
	quizRepo.On("GetByID", mock.Anything, testQuizID).Return(testQuiz(), nil).Maybe()
	quizRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil).Maybe()

	repo := newMemRoomRepo()
	feed := cache.NewChangeFeed(client)
	auth := NewAuthService("admin", "secret", "test-secret", time.Hour)
	quizzes := NewQuizService(quizRepo, cache.NewQuizCache(client, cfg.RoomTTL))
	rooms := NewRoomService(
		repo,
		quizzes,
		cache.NewRoomCache(client, cfg.RoomTTL),
		cache.NewLeaderboardCache(client, cfg.RoomTTL),
		cache.NewRoomLock(client, cfg.LockTTL, cfg.LockWait),
		feed,
		auth,
		crypto.NewPinHasher(1, 8*1024, 16, 8, 1),
		cfg,
	)
	return &fixture{
		rooms:   rooms,
		host:    NewHostService(rooms, quizzes),
		quizzes: quizzes,
		auth:    auth,
		repo:    repo,
		quiz:    quizRepo,
		feed:    feed,
		mr:      mr,
	}
}

func (f *fixture) createRoom(t *testing.T, req model.CreateRoomRequest) *model.Room {
	t.Helper()
	if req.QuizID == "" {
		req.QuizID = testQuizID
	}
	if req.HostName == "" {
		req.HostName = "Quizmaster"
	}
	resp, err := f.rooms.CreateRoom(context.Background(), "host_1", req)
	require.NoError(t, err)
	return resp.Room
}

func (f *fixture) join(t *testing.T, code, name string) model.Player {
	t.Helper()
	resp, err := f.rooms.JoinRoom(context.Background(), code, model.JoinRequest{Name: name})
	require.NoError(t, err)
	return resp.Player
}

func scoreOf(room *model.Room, id string) int {
	if i := room.FindPlayer(id); i >= 0 {
		return room.Players[i].Score
	}
	return 0
}
