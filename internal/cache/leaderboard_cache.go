package cache

import (
	"context"
	"fmt"
	"time"

	"quizboard/internal/model"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache mirrors room scores into a Redis ZSET
type LeaderboardCache interface {
	Sync(ctx context.Context, roomCode string, players []model.Player) error
	GetTop(ctx context.Context, roomCode string, limit int) ([]LeaderboardEntry, error)
	GetRank(ctx context.Context, roomCode, playerID string) (int64, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client, ttl time.Duration) LeaderboardCache {
	return &leaderboardCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *leaderboardCache) key(roomCode string) string {
	return fmt.Sprintf("room:%s:lb", roomCode)
}

func (c *leaderboardCache) namesKey(roomCode string) string {
	return fmt.Sprintf("room:%s:names", roomCode)
}

// Sync replaces the leaderboard with the given player list.
func (c *leaderboardCache) Sync(ctx context.Context, roomCode string, players []model.Player) error {
	key, names := c.key(roomCode), c.namesKey(roomCode)

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key, names)
		if len(players) == 0 {
			return nil
		}
		members := make([]redis.Z, 0, len(players))
		fields := make([]interface{}, 0, 2*len(players))
		for _, p := range players {
			members = append(members, redis.Z{Score: float64(p.Score), Member: p.ID})
			fields = append(fields, p.ID, p.Name)
		}
		pipe.ZAdd(ctx, key, members...)
		pipe.HSet(ctx, names, fields...)
		pipe.Expire(ctx, key, c.ttl)
		pipe.Expire(ctx, names, c.ttl)
		return nil
	})
	return err
}

func (c *leaderboardCache) GetTop(ctx context.Context, roomCode string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(roomCode), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	ids := make([]string, len(results))
	for i, z := range results {
		ids[i] = z.Member.(string)
		entries[i] = LeaderboardEntry{
			PlayerID: ids[i],
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	if len(ids) == 0 {
		return entries, nil
	}

	names, err := c.client.HMGet(ctx, c.namesKey(roomCode), ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		if s, ok := n.(string); ok {
			entries[i].Name = s
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, roomCode, playerID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(roomCode), playerID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
