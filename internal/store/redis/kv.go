// Package redis implements store.KV over a Redis connection. Each bookmark
// list is one string value; Redis is the only shared mutable resource in
// the system and offers no transaction around the store's read-modify-write
// cycle, so the lost-update property documented on store.Bookmarks applies.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KV adapts a go-redis client to the store.KV capability.
type KV struct {
	client *redis.Client
}

// NewKV wraps an existing client.
func NewKV(client *redis.Client) *KV {
	return &KV{client: client}
}

// Get returns the raw value under key, or nil when the key does not exist.
func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := k.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value under key without expiry; bookmark lists live until
// explicitly rewritten.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := k.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping verifies the connection; used by the readiness probe.
func (k *KV) Ping(ctx context.Context) error {
	if err := k.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
