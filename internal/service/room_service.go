package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"quizboard/internal/cache"
	"quizboard/internal/config"
	"quizboard/internal/game"
	"quizboard/internal/model"
	"quizboard/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RoomService handles room lifecycle and every write to a room. Writes to
// one room are serialized by the room lock and fanned out on the feed.
type RoomService struct {
	roomRepo    repository.RoomRepo
	quizSvc     *QuizService
	roomCache   cache.RoomCache
	leaderboard cache.LeaderboardCache
	lock        cache.RoomLock
	feed        Broadcaster
	authSvc     *AuthService
	hasher      PinHasher
	cfg         config.GameConfig
}

// NewRoomService creates a new room service
func NewRoomService(
	roomRepo repository.RoomRepo,
	quizSvc *QuizService,
	roomCache cache.RoomCache,
	leaderboard cache.LeaderboardCache,
	lock cache.RoomLock,
	feed Broadcaster,
	authSvc *AuthService,
	hasher PinHasher,
	cfg config.GameConfig,
) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		quizSvc:     quizSvc,
		roomCache:   roomCache,
		leaderboard: leaderboard,
		lock:        lock,
		feed:        feed,
		authSvc:     authSvc,
		hasher:      hasher,
		cfg:         cfg,
	}
}

// NormalizeCode is the stored form of a room code as typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom allocates a fresh code, stores the room and returns it with the
// host token for the room.
func (s *RoomService) CreateRoom(ctx context.Context, hostID string, req model.CreateRoomRequest) (*model.CreateRoomResponse, error) {
	hostName := game.CleanName(req.HostName)
	if hostName == "" || utf8.RuneCountInString(hostName) > s.cfg.MaxNameLength {
		return nil, ErrInvalidRoom
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = s.cfg.DefaultMaxPlayers
	}
	if maxPlayers < 2 || maxPlayers > s.cfg.MaxPlayersCap {
		return nil, ErrInvalidRoom
	}

	quiz, err := s.quizSvc.LoadQuizByID(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}

	quizTitle := strings.TrimSpace(req.QuizTitle)
	if quizTitle == "" {
		quizTitle = quiz.Title
	}
	gameName := strings.TrimSpace(req.GameName)
	if gameName == "" {
		gameName = quizTitle
	}

	state := model.NewGameState()
	if req.InitialState != nil {
		state = req.InitialState.Clone()
	}

	room := &model.Room{
		GameName:   gameName,
		QuizID:     req.QuizID,
		QuizTitle:  quizTitle,
		HostName:   hostName,
		MaxPlayers: maxPlayers,
		Status:     model.RoomOpen,
		Players:    []model.Player{},
		State:      state,
	}

	if req.Pin != "" {
		hash, err := s.hasher.Hash(req.Pin)
		if err != nil {
			return nil, fmt.Errorf("failed to hash pin: %w", err)
		}
		room.PinHash = hash
		room.HasPin = true
	}

	if err := s.insertWithFreshCode(ctx, room); err != nil {
		return nil, err
	}

	if err := s.roomCache.Set(ctx, room); err != nil {
		return nil, transportErr("cache room", err)
	}

	token, err := s.authSvc.GenerateRoomHostToken(room.Code, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign host token: %w", err)
	}

	log.Info().Str("room", room.Code).Str("quiz", room.QuizID).Int("maxPlayers", maxPlayers).Msg("room created")
	return &model.CreateRoomResponse{Room: room, HostToken: token}, nil
}

// insertWithFreshCode retries on code collisions, up to the configured
// number of attempts.
func (s *RoomService) insertWithFreshCode(ctx context.Context, room *model.Room) error {
	for attempt := 0; attempt < s.cfg.CodeAttempts; attempt++ {
		code, err := s.generateRoomCode()
		if err != nil {
			return fmt.Errorf("failed to generate room code: %w", err)
		}

		exists, err := s.roomCache.Exists(ctx, code)
		if err != nil {
			return transportErr("check room code", err)
		}
		if exists {
			continue
		}

		room.Code = code
		err = s.roomRepo.Create(ctx, room)
		if errors.Is(err, repository.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return transportErr("create room", err)
		}
		return nil
	}
	return transportErr("create room", errors.New("failed to generate unique room code"))
}

func (s *RoomService) generateRoomCode() (string, error) {
	chars := s.cfg.CodeAlphabet
	b := make([]byte, s.cfg.CodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	code := make([]byte, s.cfg.CodeLength)
	for i := range code {
		code[i] = chars[int(b[i])%len(chars)]
	}
	return string(code), nil
}

// GetRoom returns the room from the cache, falling back to the store.
func (s *RoomService) GetRoom(ctx context.Context, code string) (*model.Room, error) {
	code = NormalizeCode(code)

	room, err := s.roomCache.Get(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("room cache read failed")
	}
	if room != nil {
		return room, nil
	}

	room, err = s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, transportErr("get room", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if err := s.roomCache.Set(ctx, room); err != nil {
		log.Warn().Err(err).Str("room", code).Msg("room cache write failed")
	}
	return room, nil
}

// JoinRoom appends a player. A name already in use gets a numeric suffix;
// the stored name is returned in the response.
func (s *RoomService) JoinRoom(ctx context.Context, code string, req model.JoinRequest) (*model.PlayerJoinResponse, error) {
	code = NormalizeCode(code)
	name := game.CleanName(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if utf8.RuneCountInString(name) > s.cfg.MaxNameLength {
		return nil, ErrNameTooLong
	}

	var player model.Player
	room, err := s.withLock(ctx, code, func(room *model.Room) (*model.Room, error) {
		if room.PinHash != "" {
			ok, err := s.hasher.Compare(room.PinHash, req.Pin)
			if err != nil || !ok {
				return nil, ErrWrongPin
			}
		}
		if len(room.Players) >= room.MaxPlayers {
			return nil, ErrRoomFull
		}

		player = model.Player{
			ID:       uuid.New().String(),
			Name:     game.UniqueName(room.Players, name),
			JoinedAt: time.Now(),
		}
		updated, err := s.roomRepo.AppendPlayer(ctx, code, player, room.MaxPlayers)
		if err != nil {
			return nil, transportErr("join room", err)
		}
		if updated == nil {
			return nil, ErrRoomFull
		}

		// the first joiner takes the turn
		host := game.NewHost(nil, room.Players, room.State)
		host.SyncPlayers(updated.Players)
		state := host.State()
		if state.CurrentPlayerID == updated.State.CurrentPlayerID {
			return updated, nil
		}
		return s.applyPatch(ctx, code, model.RoomPatch{State: &state})
	})
	if err != nil {
		return nil, err
	}

	token, err := s.authSvc.GeneratePlayerToken(code, player.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign player token: %w", err)
	}

	log.Info().Str("room", code).Str("player", player.ID).Str("name", player.Name).Msg("player joined")
	return &model.PlayerJoinResponse{Room: room, Player: player, Token: token}, nil
}

// UpdateRoomState shallow-merges a patch into the room. An empty patch
// returns the room unchanged.
func (s *RoomService) UpdateRoomState(ctx context.Context, code string, patch model.RoomPatch) (*model.Room, error) {
	if patch.IsEmpty() {
		return s.GetRoom(ctx, code)
	}
	return s.withLock(ctx, NormalizeCode(code), func(room *model.Room) (*model.Room, error) {
		return s.applyPatch(ctx, room.Code, patch)
	})
}

// Buzz appends playerID to the buzz queue if they may buzz right now.
func (s *RoomService) Buzz(ctx context.Context, code, playerID string) (*model.Room, error) {
	return s.withLock(ctx, NormalizeCode(code), func(room *model.Room) (*model.Room, error) {
		if room.FindPlayer(playerID) < 0 {
			return nil, ErrNotRoomMember
		}
		host := game.NewHost(nil, room.Players, room.State)
		if !host.Buzz(playerID) {
			return nil, ErrNotEligible
		}
		state := host.State()
		return s.applyPatch(ctx, room.Code, model.RoomPatch{State: &state})
	})
}

// Leaderboard returns players ordered by score, best first.
func (s *RoomService) Leaderboard(ctx context.Context, code string, limit int) ([]cache.LeaderboardEntry, error) {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	entries, err := s.leaderboard.GetTop(ctx, room.Code, limit)
	if err == nil && (len(entries) > 0 || len(room.Players) == 0) {
		return entries, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("room", room.Code).Msg("leaderboard read failed")
	}
	return rankPlayers(room.Players, limit), nil
}

func rankPlayers(players []model.Player, limit int) []cache.LeaderboardEntry {
	sorted := model.ClonePlayers(players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	entries := make([]cache.LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = cache.LeaderboardEntry{PlayerID: p.ID, Name: p.Name, Score: p.Score, Rank: i + 1}
	}
	return entries
}

// withLock runs fn on the freshly read room while holding the room lock and
// publishes the room fn returns.
func (s *RoomService) withLock(ctx context.Context, code string, fn func(room *model.Room) (*model.Room, error)) (*model.Room, error) {
	release, err := s.lock.Acquire(ctx, code)
	if err != nil {
		return nil, transportErr("lock room", err)
	}
	defer release()

	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, transportErr("get room", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	updated, err := fn(room)
	if err != nil {
		return nil, err
	}
	if updated == room {
		return room, nil
	}
	if err := s.publish(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RoomService) applyPatch(ctx context.Context, code string, patch model.RoomPatch) (*model.Room, error) {
	updated, err := s.roomRepo.ApplyPatch(ctx, code, patch)
	if err != nil {
		return nil, transportErr("update room", err)
	}
	if updated == nil {
		return nil, ErrRoomNotFound
	}
	return updated, nil
}

// publish refreshes the cache and leaderboard and notifies subscribers of a
// stored write.
func (s *RoomService) publish(ctx context.Context, room *model.Room) error {
	if err := s.roomCache.Set(ctx, room); err != nil {
		return transportErr("cache room", err)
	}
	if err := s.leaderboard.Sync(ctx, room.Code, room.Players); err != nil {
		log.Warn().Err(err).Str("room", room.Code).Msg("leaderboard sync failed")
	}
	if err := s.feed.Publish(ctx, model.EventFromRoom(room)); err != nil {
		return transportErr("publish room", err)
	}
	return nil
}
