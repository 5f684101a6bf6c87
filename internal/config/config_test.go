package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "quizboard", cfg.MongoDB)
	assert.Equal(t, 6*time.Hour, cfg.Game.RoomTTL)
	assert.Equal(t, 10*time.Second, cfg.Game.BuzzWindow)
	assert.Equal(t, 6, cfg.Game.CodeLength)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("QUIZBOARD_REDIS_URI", "redis://cache:6379")
	t.Setenv("QUIZBOARD_BUZZ_WINDOW", "15s")

	v := NewViper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, v)
	require.NoError(t, fs.Parse([]string{"--port", "9090", "--log_level", "debug"}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 15*time.Second, cfg.Game.BuzzWindow)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	v := NewViper()
	v.Set("port", 0)
	_, err := Load(v)
	assert.Error(t, err)

	v = NewViper()
	v.Set("buzz-window", "0s")
	_, err = Load(v)
	assert.Error(t, err)

	v = NewViper()
	v.Set("max-players", 1)
	_, err = Load(v)
	assert.Error(t, err)
}
