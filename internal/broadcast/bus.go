package broadcast

import (
	"context"
	"errors"
)

// Event mirrors the browser storage event: the key that changed, its new
// serialized value and the context that wrote it.
type Event struct {
	Key      string `json:"key"`
	NewValue string `json:"newValue"`
	Origin   string `json:"origin"`
}

type Handler func(Event)

// Bus delivers writes made by one context to every other context subscribed
// to the same key. A context never receives its own events.
type Bus interface {
	Origin() string

	Publish(ctx context.Context, key, newValue string) error

	Subscribe(key string, handler Handler) (unsubscribe func())

	Close() error
}

var ErrBusClosed = errors.New("broadcast bus is closed")
