// Package app wires the stores, services and transports of a server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quizboard/internal/cache"
	"quizboard/internal/config"
	"quizboard/internal/crypto"
	"quizboard/internal/repository"
	"quizboard/internal/service"
	"quizboard/internal/transport/rest"
	"quizboard/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	Mongo *mongo.Client
	Redis *redis.Client

	RoomRepo repository.RoomRepo
	QuizRepo repository.QuizRepo

	RoomCache   cache.RoomCache
	QuizCache   cache.QuizCache
	Leaderboard cache.LeaderboardCache
	Feed        cache.ChangeFeed

	AuthService *service.AuthService
	QuizService *service.QuizService
	RoomService *service.RoomService
	HostService *service.HostService

	Hub     *ws.Hub
	Handler http.Handler
}

// Connect dials MongoDB and Redis, makes sure the room indexes exist and
// wires everything on top.
func Connect(ctx context.Context, cfg *config.Config) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	log.Info().Str("db", cfg.MongoDB).Msg("connected to mongodb")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		mongoClient.Disconnect(ctx)
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	a := Wire(cfg, mongoClient.Database(cfg.MongoDB), rdb)
	a.Mongo = mongoClient

	if err := a.RoomRepo.EnsureIndexes(pingCtx, cfg.Game.RoomTTL); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("room indexes: %w", err)
	}
	return a, nil
}

// Wire builds the object graph over existing connections. Nothing is dialed.
func Wire(cfg *config.Config, db *mongo.Database, rdb *redis.Client) *App {
	a := &App{Redis: rdb}

	a.RoomRepo = repository.NewRoomRepo(db)
	a.QuizRepo = repository.NewQuizRepo(db)

	a.RoomCache = cache.NewRoomCache(rdb, cfg.Game.RoomTTL)
	a.QuizCache = cache.NewQuizCache(rdb, cfg.Game.RoomTTL)
	a.Leaderboard = cache.NewLeaderboardCache(rdb, cfg.Game.RoomTTL)
	a.Feed = cache.NewChangeFeed(rdb)
	lock := cache.NewRoomLock(rdb, cfg.Game.LockTTL, cfg.Game.LockWait)

	a.AuthService = service.NewAuthService(cfg.HostUsername, cfg.HostPassword, cfg.JWTSecret, cfg.Game.RoomTTL)
	a.QuizService = service.NewQuizService(a.QuizRepo, a.QuizCache)
	a.RoomService = service.NewRoomService(
		a.RoomRepo,
		a.QuizService,
		a.RoomCache,
		a.Leaderboard,
		lock,
		a.Feed,
		a.AuthService,
		crypto.DefaultPinHasher(),
		cfg.Game,
	)
	a.HostService = service.NewHostService(a.RoomService, a.QuizService)

	a.Hub = ws.NewHub(a.Feed)
	wsHandler := ws.NewHandler(a.Hub, a.AuthService, a.RoomService, a.HostService, cfg.Game.BuzzWindow)

	a.Handler = rest.NewRouter(&rest.Container{
		AuthService: a.AuthService,
		QuizService: a.QuizService,
		RoomService: a.RoomService,
		HostService: a.HostService,
		WSHandler:   wsHandler,
		PublicURL:   cfg.PublicURL,
		CORSOrigins: cfg.CORSOrigins,
	})
	return a
}

// Close stops the hub and drops both connections.
func (a *App) Close(ctx context.Context) {
	a.Hub.Close()
	if err := a.Redis.Close(); err != nil {
		log.Warn().Err(err).Msg("close redis")
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("disconnect mongodb")
		}
	}
}
