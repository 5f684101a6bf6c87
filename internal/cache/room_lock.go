package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when the room stayed locked for the whole wait.
var ErrLockTimeout = errors.New("room is busy")

// RoomLock serializes writers of one room across processes.
type RoomLock interface {
	Acquire(ctx context.Context, code string) (release func(), err error)
}

type roomLock struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// Deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRoomLock creates a lock that expires after ttl and gives up after wait.
func NewRoomLock(client *redis.Client, ttl, wait time.Duration) RoomLock {
	return &roomLock{
		client: client,
		ttl:    ttl,
		wait:   wait,
		retry:  25 * time.Millisecond,
	}
}

func lockKey(code string) string {
	return fmt.Sprintf("room:%s:lock", code)
}

func (l *roomLock) Acquire(ctx context.Context, code string) (func(), error) {
	key := lockKey(code)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Background context so a cancelled request still unlocks.
				unlockScript.Run(context.Background(), l.client, []string{key}, token)
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
