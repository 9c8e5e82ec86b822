// Package store holds the bookmark list persistence built on a pluggable
// key-value collaborator.
package store

import "context"

// KV is the async key-value capability the bookmark store is built on.
// Get returns (nil, nil) for a missing key. Values are opaque bytes; the
// bookmark store serializes JSON into them.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
