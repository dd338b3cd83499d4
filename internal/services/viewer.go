package services

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"equipcare-hub.com/equipcare-hub/internal/records"
)

// Viewer keeps an in-memory copy of one collection current: it loads on
// Mount, re-reads the whole collection whenever another context writes it,
// and stops listening on Unmount.
type Viewer[T records.Record] struct {
	collection *records.Collection[T]
	compare    func(a, b T) int
	deleter    func(ctx context.Context, id string) error
	onChange   func([]T)
	logger     *zap.Logger

	mu          sync.RWMutex
	items       []T
	unsubscribe func()
}

type ViewerOption[T records.Record] func(*Viewer[T])

// WithSort keeps the items ordered by compare after every load.
func WithSort[T records.Record](compare func(a, b T) int) ViewerOption[T] {
	return func(v *Viewer[T]) { v.compare = compare }
}

// WithDeleter replaces the default delete, which persists the reduced list.
func WithDeleter[T records.Record](deleter func(ctx context.Context, id string) error) ViewerOption[T] {
	return func(v *Viewer[T]) { v.deleter = deleter }
}

// WithOnChange is called with a copy of the items after each reload or delete.
func WithOnChange[T records.Record](fn func([]T)) ViewerOption[T] {
	return func(v *Viewer[T]) { v.onChange = fn }
}

func NewViewer[T records.Record](collection *records.Collection[T], logger *zap.Logger, opts ...ViewerOption[T]) *Viewer[T] {
	v := &Viewer[T]{
		collection: collection,
		logger:     logger.With(zap.String("collection", collection.Key())),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount loads the collection, seeding it if needed, and subscribes to
// changes from other contexts. It returns the loaded items.
func (v *Viewer[T]) Mount(ctx context.Context) []T {
	v.mu.Lock()
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
	v.items = v.sorted(v.collection.Load(ctx))
	v.unsubscribe = v.collection.Subscribe(func() {
		v.reload(context.Background())
	})
	items := slices.Clone(v.items)
	v.mu.Unlock()

	return items
}

func (v *Viewer[T]) reload(ctx context.Context) {
	items, ok := v.collection.Read(ctx)
	if !ok {
		items = []T{}
	}

	v.mu.Lock()
	v.items = v.sorted(items)
	snapshot := slices.Clone(v.items)
	v.mu.Unlock()

	v.logger.Debug("collection reloaded", zap.Int("count", len(snapshot)))
	v.notify(snapshot)
}

func (v *Viewer[T]) Items() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.items)
}

// Remove drops id from the in-memory list and persists the deletion.
func (v *Viewer[T]) Remove(ctx context.Context, id string) error {
	v.mu.Lock()
	remaining := slices.DeleteFunc(slices.Clone(v.items), func(item T) bool {
		return item.RecordID() == id
	})

	var err error
	if v.deleter != nil {
		err = v.deleter(ctx, id)
	} else {
		err = v.collection.Save(ctx, remaining)
	}
	if err == nil {
		v.items = remaining
	}
	snapshot := slices.Clone(v.items)
	v.mu.Unlock()

	if err != nil {
		return err
	}
	v.notify(snapshot)
	return nil
}

func (v *Viewer[T]) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

func (v *Viewer[T]) sorted(items []T) []T {
	if v.compare != nil {
		slices.SortStableFunc(items, v.compare)
	}
	return items
}

func (v *Viewer[T]) notify(items []T) {
	if v.onChange != nil {
		v.onChange(items)
	}
}
