package service

import (
	"context"

	"quizboard/internal/model"
)

// Broadcaster publishes every room write to the connections watching that
// room (avoids import cycle with the transport layer).
type Broadcaster interface {
	Publish(ctx context.Context, event model.RoomEvent) error
}

// PinHasher hashes and checks room PINs.
type PinHasher interface {
	Hash(pin string) (string, error)
	Compare(hash, pin string) (bool, error)
}
