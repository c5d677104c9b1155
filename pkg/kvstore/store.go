// Package kvstore provides the durable key/value storage the session manager
// persists through. Values survive process restarts (FileStore, RedisStore)
// until explicitly deleted, mirroring browser origin-scoped storage.
package kvstore

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound indicates no value is stored under the requested key.
	ErrKeyNotFound = errors.New("kvstore: key not found")

	// ErrEmptyKey indicates an empty key was provided.
	ErrEmptyKey = errors.New("kvstore: empty key")
)

// Store defines the persistence contract for session state.
// Implementations must treat Delete of an absent key as a no-op.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
