// Package records implements the record store: named JSON collections kept in
// a repository and announced to other contexts over a broadcast bus.
package records

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"equipcare-hub.com/equipcare-hub/internal/broadcast"
	repository "equipcare-hub.com/equipcare-hub/internal/repositories"
)

// Store is one context's handle on the shared collections.
type Store struct {
	repo   repository.Repository
	bus    broadcast.Bus
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(repo repository.Repository, bus broadcast.Bus, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		bus:    bus,
		logger: logger.With(zap.String("origin", bus.Origin())),
		locks:  make(map[string]*sync.Mutex),
	}
}

// lock serializes read-modify-write sequences on key within this context.
// Writes from other contexts are not covered; between contexts the last
// write wins.
func (s *Store) lock(key string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Store) Origin() string { return s.bus.Origin() }

// ReadRaw returns the stored value of key. Repository failures are logged and
// reported as an absent key.
func (s *Store) ReadRaw(ctx context.Context, key string) (string, bool) {
	value, found, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Warn("record read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, found
}

// WriteRaw replaces key and then announces the new value to other contexts.
// A failed announcement is logged; the write itself already succeeded.
func (s *Store) WriteRaw(ctx context.Context, key, value string) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, key, value); err != nil {
		s.logger.Warn("storage event not delivered", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Subscribe runs fn with the new value whenever another context writes key.
func (s *Store) Subscribe(key string, fn func(newValue string)) (unsubscribe func()) {
	return s.bus.Subscribe(key, func(ev broadcast.Event) {
		fn(ev.NewValue)
	})
}
