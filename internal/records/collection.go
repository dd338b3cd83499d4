package records

import (
	"context"
	"encoding/json"
	"slices"

	"go.uber.org/zap"
)

// Record is anything stored in a collection under a stable id.
type Record interface {
	RecordID() string
}

// Collection is a typed view of one JSON array key.
type Collection[T Record] struct {
	store *Store
	key   string
	seed  func() []T
}

// NewCollection binds key to T. seed may be nil; when set, Load persists it the
// first time the key is found absent.
func NewCollection[T Record](store *Store, key string, seed func() []T) *Collection[T] {
	return &Collection[T]{store: store, key: key, seed: seed}
}

func (c *Collection[T]) Key() string { return c.key }

func (c *Collection[T]) Store() *Store { return c.store }

// Read decodes the collection. A missing key or a value that does not decode
// yields (nil, false); decode failures are logged, never returned.
func (c *Collection[T]) Read(ctx context.Context) ([]T, bool) {
	raw, found := c.store.ReadRaw(ctx, c.key)
	if !found {
		return nil, false
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.store.logger.Warn("stored collection is corrupt, treating as absent",
			zap.String("key", c.key),
			zap.Error(err),
		)
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

// Load reads the collection, seeding and persisting the defaults when the
// collection was never initialized.
func (c *Collection[T]) Load(ctx context.Context) []T {
	if items, ok := c.Read(ctx); ok {
		return items
	}
	if c.seed == nil {
		return []T{}
	}

	unlock := c.store.lock(c.key)
	defer unlock()
	return c.load(ctx)
}

// load is Load for callers already holding the key lock.
func (c *Collection[T]) load(ctx context.Context) []T {
	if items, ok := c.Read(ctx); ok {
		return items
	}
	if c.seed == nil {
		return []T{}
	}

	items := c.seed()
	if err := c.save(ctx, items); err != nil {
		c.store.logger.Warn("failed to persist seed data", zap.String("key", c.key), zap.Error(err))
	}
	return items
}

// Save replaces the whole collection.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	unlock := c.store.lock(c.key)
	defer unlock()
	return c.save(ctx, items)
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.store.WriteRaw(ctx, c.key, string(data))
}

func (c *Collection[T]) Find(ctx context.Context, id string) (T, bool) {
	for _, item := range c.Load(ctx) {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Mutate loads the collection, passes it to fn and saves what fn returns
// when fn reports a change. No other Mutate, Save or seed on the same key
// runs in this context in between. An error from fn aborts without writing.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) (next []T, changed bool, err error)) error {
	unlock := c.store.lock(c.key)
	defer unlock()

	next, changed, err := fn(c.load(ctx))
	if err != nil || !changed {
		return err
	}
	return c.save(ctx, next)
}

// Upsert replaces the item with the same id in place, or appends it.
func (c *Collection[T]) Upsert(ctx context.Context, item T) (created bool, err error) {
	err = c.Mutate(ctx, func(items []T) ([]T, bool, error) {
		i := slices.IndexFunc(items, func(existing T) bool {
			return existing.RecordID() == item.RecordID()
		})
		if i >= 0 {
			items[i] = item
			return items, true, nil
		}
		created = true
		return append(items, item), true, nil
	})
	return created, err
}

// Remove drops the item with the given id. It reports false, without
// writing, when no such item exists.
func (c *Collection[T]) Remove(ctx context.Context, id string) (removed bool, err error) {
	err = c.Mutate(ctx, func(items []T) ([]T, bool, error) {
		kept := slices.DeleteFunc(items, func(item T) bool { return item.RecordID() == id })
		removed = len(kept) < len(items)
		return kept, removed, nil
	})
	return removed, err
}

// Subscribe calls fn whenever another context replaces the collection.
func (c *Collection[T]) Subscribe(fn func()) (unsubscribe func()) {
	return c.store.Subscribe(c.key, func(string) { fn() })
}
