package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizboard/internal/model"

	"github.com/redis/go-redis/v9"
)

// QuizCache keeps loaded quizzes in Redis. Quizzes are not edited after they
// are saved, so entries only expire.
type QuizCache interface {
	Set(ctx context.Context, quiz *model.Quiz) error
	Get(ctx context.Context, id string) (*model.Quiz, error)
}

type quizCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuizCache creates a new quiz cache
func NewQuizCache(client *redis.Client, ttl time.Duration) QuizCache {
	return &quizCache{
		client: client,
		ttl:    ttl,
	}
}

func quizKey(id string) string {
	return fmt.Sprintf("quiz:%s", id)
}

func (c *quizCache) Set(ctx context.Context, quiz *model.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, quizKey(quiz.ID), data, c.ttl).Err()
}

// Get returns (nil, nil) on a miss.
func (c *quizCache) Get(ctx context.Context, id string) (*model.Quiz, error) {
	data, err := c.client.Get(ctx, quizKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quiz model.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}
