// Package memory is an in-memory store.KV used in tests and when running
// without Redis. It mirrors the storage semantics the bookmark store
// expects: missing keys read as nil, writes replace whole values.
package memory

import (
	"context"
	"sync"
)

// KV is a mutex-guarded map. The optional hooks let tests pause an
// operation between its read and its write to pin down interleavings.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte

	// BeforeSet, when non-nil, runs just before a Set takes the lock.
	// Test-only seam for forcing read-modify-write interleavings.
	BeforeSet func(key string)
}

// New returns an empty KV.
func New() *KV {
	return &KV{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value, or nil when absent.
func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	v, ok := k.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set replaces the value under key.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if k.BeforeSet != nil {
		k.BeforeSet(key)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	k.data[key] = stored
	return nil
}

// Len reports the number of stored keys.
func (k *KV) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.data)
}
