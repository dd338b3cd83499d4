package records

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Value is a single preference stored under its own key.
type Value[T any] struct {
	store *Store
	key   string
	def   T
}

func NewValue[T any](store *Store, key string, def T) *Value[T] {
	return &Value[T]{store: store, key: key, def: def}
}

func (v *Value[T]) Key() string { return v.key }

// Get returns the stored value or the default. Plain strings written without
// JSON quoting are accepted for string values.
func (v *Value[T]) Get(ctx context.Context) T {
	raw, found := v.store.ReadRaw(ctx, v.key)
	if !found {
		return v.def
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		if s, ok := any(&out).(*string); ok {
			*s = raw
			return out
		}
		v.store.logger.Warn("stored value is corrupt, using default",
			zap.String("key", v.key),
			zap.Error(err),
		)
		return v.def
	}
	return out
}

func (v *Value[T]) Set(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return v.store.WriteRaw(ctx, v.key, string(data))
}

func (v *Value[T]) Subscribe(fn func()) (unsubscribe func()) {
	return v.store.Subscribe(v.key, func(string) { fn() })
}
