package domain

import "context"

// Store is the durable key-value store the list repository is built on.
// Values are opaque bytes (JSON in practice). Writes to a single key are
// atomic; there is no transaction across keys.
type Store interface {
	// Get returns the value for key. found is false when the key was never
	// written; that is not an error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	Close() error
}
