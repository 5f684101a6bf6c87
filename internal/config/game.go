package config

import (
	"fmt"
	"time"
)

// GameConfig holds the room and buzzer tunables.
type GameConfig struct {
	// CodeAlphabet leaves out characters that are easy to misread (0/O, 1/I).
	CodeAlphabet      string        `json:"-"`
	CodeLength        int           `json:"codeLength"`
	CodeAttempts      int           `json:"codeAttempts"`
	DefaultMaxPlayers int           `json:"defaultMaxPlayers"`
	MaxPlayersCap     int           `json:"maxPlayersCap"`
	MaxNameLength     int           `json:"maxNameLength"`
	RoomTTL           time.Duration `json:"roomTtl"`
	BuzzWindow        time.Duration `json:"buzzWindow"`
	LockTTL           time.Duration `json:"lockTtl"`
	LockWait          time.Duration `json:"lockWait"`
}

// DefaultGameConfig returns the default game configuration
func DefaultGameConfig() GameConfig {
	return GameConfig{
		CodeAlphabet:      "ABCDEFGHJKLMNPQRSTUVWXYZ23456789",
		CodeLength:        6,
		CodeAttempts:      8,
		DefaultMaxPlayers: 4,
		MaxPlayersCap:     32,
		MaxNameLength:     32,
		RoomTTL:           6 * time.Hour,
		BuzzWindow:        10 * time.Second,
		LockTTL:           5 * time.Second,
		LockWait:          2 * time.Second,
	}
}

func (g GameConfig) validate() error {
	if g.CodeLength < 4 || g.CodeLength > 6 {
		return fmt.Errorf("room code length must be 4-6, got %d", g.CodeLength)
	}
	if g.MaxPlayersCap < 2 {
		return fmt.Errorf("max players must be at least 2, got %d", g.MaxPlayersCap)
	}
	if g.BuzzWindow <= 0 {
		return fmt.Errorf("buzz window must be positive, got %s", g.BuzzWindow)
	}
	if g.RoomTTL <= 0 {
		return fmt.Errorf("room ttl must be positive, got %s", g.RoomTTL)
	}
	return nil
}
