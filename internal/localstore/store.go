// Package localstore persists small client-side blobs (guest carts, saved
// tokens) behind a swappable key/value interface.
package localstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("localstore: key not found")

// Store is a key/value store for client state. Values are opaque bytes;
// callers own the encoding.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Clear removes key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error
}
