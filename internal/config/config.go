package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the server configuration, read from flags and QUIZBOARD_* env vars.
type Config struct {
	MongoURI     string
	MongoDB      string
	RedisAddr    string
	Port         int
	JWTSecret    string
	HostUsername string
	HostPassword string
	CORSOrigins  string
	PublicURL    string
	LogLevel     string
	Game         GameConfig
}

// NewViper returns a viper instance with env lookup and defaults set.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("QUIZBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	game := DefaultGameConfig()
	v.SetDefault("mongo-uri", "mongodb://localhost:27017")
	v.SetDefault("mongo-db", "quizboard")
	v.SetDefault("redis-uri", "localhost:6379")
	v.SetDefault("port", 8080)
	v.SetDefault("jwt-secret", "super-secret-key-change-in-production")
	v.SetDefault("host-username", "admin")
	v.SetDefault("host-password", "password123")
	v.SetDefault("cors-origins", "*")
	v.SetDefault("public-url", "http://localhost:8080")
	v.SetDefault("log-level", "info")
	v.SetDefault("room-ttl", game.RoomTTL)
	v.SetDefault("buzz-window", game.BuzzWindow)
	v.SetDefault("max-players", game.MaxPlayersCap)
	return v
}

// BindFlags registers the server flags and binds them to v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.String("mongo-uri", v.GetString("mongo-uri"), "MongoDB connection string (env: QUIZBOARD_MONGO_URI)")
	fs.String("mongo-db", v.GetString("mongo-db"), "MongoDB database name (env: QUIZBOARD_MONGO_DB)")
	fs.String("redis-uri", v.GetString("redis-uri"), "Redis address, redis:// prefix allowed (env: QUIZBOARD_REDIS_URI)")
	fs.IntP("port", "p", v.GetInt("port"), "port to listen on (env: QUIZBOARD_PORT)")
	fs.String("jwt-secret", v.GetString("jwt-secret"), "secret used to sign tokens (env: QUIZBOARD_JWT_SECRET)")
	fs.String("host-username", v.GetString("host-username"), "operator login name (env: QUIZBOARD_HOST_USERNAME)")
	fs.String("host-password", v.GetString("host-password"), "operator password (env: QUIZBOARD_HOST_PASSWORD)")
	fs.String("cors-origins", v.GetString("cors-origins"), "allowed CORS origins (env: QUIZBOARD_CORS_ORIGINS)")
	fs.String("public-url", v.GetString("public-url"), "address players open to join, encoded in room QR codes (env: QUIZBOARD_PUBLIC_URL)")
	fs.String("log-level", v.GetString("log-level"), "debug, info, warn or error (env: QUIZBOARD_LOG_LEVEL)")
	fs.Duration("room-ttl", v.GetDuration("room-ttl"), "how long rooms are kept (env: QUIZBOARD_ROOM_TTL)")
	fs.Duration("buzz-window", v.GetDuration("buzz-window"), "buzz-in window announced to clients (env: QUIZBOARD_BUZZ_WINDOW)")
	fs.Int("max-players", v.GetInt("max-players"), "upper bound for maxPlayers of a room (env: QUIZBOARD_MAX_PLAYERS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// Load reads the configuration out of v.
func Load(v *viper.Viper) (*Config, error) {
	game := DefaultGameConfig()
	game.RoomTTL = v.GetDuration("room-ttl")
	game.BuzzWindow = v.GetDuration("buzz-window")
	game.MaxPlayersCap = v.GetInt("max-players")

	cfg := &Config{
		MongoURI:     v.GetString("mongo-uri"),
		MongoDB:      v.GetString("mongo-db"),
		RedisAddr:    strings.TrimPrefix(v.GetString("redis-uri"), "redis://"),
		Port:         v.GetInt("port"),
		JWTSecret:    v.GetString("jwt-secret"),
		HostUsername: v.GetString("host-username"),
		HostPassword: v.GetString("host-password"),
		CORSOrigins:  v.GetString("cors-origins"),
		PublicURL:    strings.TrimSuffix(v.GetString("public-url"), "/"),
		LogLevel:     v.GetString("log-level"),
		Game:         game,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.JWTSecret == "" {
		return errors.New("jwt secret must not be empty")
	}
	return c.Game.validate()
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
