package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// ErrBusy is returned when the database stays locked by another process for
// longer than the configured wait.
var ErrBusy = errors.New("storage: database is busy")

// KV is the persistent key/value store used for the wishlist and the session.
// Writes are durable once Set or Delete returns.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	// Update reads key, passes its value (nil when missing) to fn and stores
	// the result in one transaction.
	Update(key string, fn func(old []byte) ([]byte, error)) error
	Close() error
}

// Watcher reports keys written by other processes sharing the database.
type Watcher interface {
	// Watch calls fn with the key of every foreign write until ctx is done.
	Watch(ctx context.Context, fn func(key string)) error
}
