// Package kv holds the durable key-value backends the entity store persists
// its collections into. Each key maps to one opaque JSON document.
package kv

import "context"

// Backend is a durable string-keyed byte store.
type Backend interface {
	// Get returns the value for key. found is false when the key was never set.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
