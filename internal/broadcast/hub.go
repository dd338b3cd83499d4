package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub connects in-process contexts. Each Endpoint stands in for one browser
// tab: it has its own subscriptions and its own delivery loop.
type Hub struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
	logger    *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		endpoints: make(map[string]*Endpoint),
		logger:    logger,
	}
}

// Connect registers a new context. An empty origin gets a generated one.
func (h *Hub) Connect(origin string) *Endpoint {
	if origin == "" {
		origin = uuid.NewString()
	}

	ep := &Endpoint{
		hub:        h,
		origin:     origin,
		dispatcher: newDispatcher(defaultQueueSize, h.logger.With(zap.String("origin", origin))),
	}

	h.mu.Lock()
	h.endpoints[origin] = ep
	h.mu.Unlock()

	return ep
}

func (h *Hub) disconnect(origin string) {
	h.mu.Lock()
	delete(h.endpoints, origin)
	h.mu.Unlock()
}

func (h *Hub) deliver(ev Event) {
	h.mu.RLock()
	targets := make([]*Endpoint, 0, len(h.endpoints))
	for origin, ep := range h.endpoints {
		if origin != ev.Origin {
			targets = append(targets, ep)
		}
	}
	h.mu.RUnlock()

	// Writers never wait on a slow reader. A dropped event only delays that
	// reader until the next write to the key, since reloads re-read the
	// whole value.
	for _, ep := range targets {
		if !ep.dispatcher.offer(ev) {
			h.logger.Warn("storage event dropped, receiver queue full",
				zap.String("key", ev.Key),
				zap.String("receiver", ep.origin),
			)
		}
	}
}

type Endpoint struct {
	hub        *Hub
	origin     string
	dispatcher *dispatcher
	closed     sync.Once
}

func (e *Endpoint) Origin() string { return e.origin }

func (e *Endpoint) Publish(_ context.Context, key, newValue string) error {
	select {
	case <-e.dispatcher.done:
		return ErrBusClosed
	default:
	}

	e.hub.deliver(Event{Key: key, NewValue: newValue, Origin: e.origin})
	return nil
}

func (e *Endpoint) Subscribe(key string, handler Handler) func() {
	return e.dispatcher.subscribe(key, handler)
}

func (e *Endpoint) Close() error {
	e.closed.Do(func() {
		e.hub.disconnect(e.origin)
		e.dispatcher.close()
	})
	return nil
}
