package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizboard/internal/model"

	"github.com/redis/go-redis/v9"
)

// RoomCache keeps the latest copy of each room in Redis so reads and
// replays skip Mongo. The PIN hash is never cached.
type RoomCache interface {
	Set(ctx context.Context, room *model.Room) error
	Get(ctx context.Context, code string) (*model.Room, error)
	Exists(ctx context.Context, code string) (bool, error)
}

type roomCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomCache creates a new room cache
func NewRoomCache(client *redis.Client, ttl time.Duration) RoomCache {
	return &roomCache{
		client: client,
		ttl:    ttl,
	}
}

func roomKey(code string) string {
	return fmt.Sprintf("room:%s", code)
}

func (c *roomCache) Set(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, roomKey(room.Code), data, c.ttl).Err()
}

func (c *roomCache) Get(ctx context.Context, code string) (*model.Room, error) {
	data, err := c.client.Get(ctx, roomKey(code)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *roomCache) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, roomKey(code)).Result()
	return n > 0, err
}
