package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"quizboard/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ChangeFeed delivers every room write to the processes serving that room.
type ChangeFeed interface {
	Publish(ctx context.Context, event model.RoomEvent) error
	Subscribe(ctx context.Context, code string) (*Subscription, error)
}

// Subscription streams the events of one room until Close.
type Subscription struct {
	code   string
	pubsub *redis.PubSub
	events chan model.RoomEvent
	done   chan struct{}
	once   sync.Once
}

// Events is closed when the subscription ends.
func (s *Subscription) Events() <-chan model.RoomEvent {
	return s.events
}

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

type changeFeed struct {
	client *redis.Client
}

func NewChangeFeed(client *redis.Client) ChangeFeed {
	return &changeFeed{client: client}
}

func feedChannel(code string) string {
	return fmt.Sprintf("room:%s:feed", code)
}

func (f *changeFeed) Publish(ctx context.Context, event model.RoomEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, feedChannel(event.Code), data).Err()
}

// Subscribe returns once Redis has confirmed the subscription, so no event
// published after it returns is missed.
func (f *changeFeed) Subscribe(ctx context.Context, code string) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, feedChannel(code))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	sub := &Subscription{
		code:   code,
		pubsub: pubsub,
		events: make(chan model.RoomEvent, 16),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

func (s *Subscription) pump() {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		var event model.RoomEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("room", s.code).Msg("dropping malformed feed message")
			continue
		}
		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}
