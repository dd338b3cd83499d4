package repository

import "context"

// Repository is the durable key-value half of the record store. Values are
// replaced whole; merging happens above this layer.
type Repository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)

	Set(ctx context.Context, key, value string) error

	Delete(ctx context.Context, key string) error

	Keys(ctx context.Context) ([]string, error)
}
