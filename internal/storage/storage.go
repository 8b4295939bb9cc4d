package storage

import (
	"context"
)

// KeyValueStore persists opaque values under string keys. Get returns an error
// matching apperrors.ErrNotFound when the key has never been written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
