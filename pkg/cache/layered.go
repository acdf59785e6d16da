package cache

import (
	"context"
	"errors"
	"time"
)

// l1TTL caps how long the memory layer trusts a value read back from Redis.
const l1TTL = 30 * time.Second

// LayeredCache implements two-level cache (L1: memory, L2: Redis).
type LayeredCache struct {
	mem    *MemoryCache
	remote Service
}

var _ Service = (*LayeredCache)(nil)

// NewLayeredCache creates a layered cache in front of remote.
func NewLayeredCache(mem *MemoryCache, remote Service) *LayeredCache {
	return &LayeredCache{mem: mem, remote: remote}
}

// Set writes through: remote first, then memory.
func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.remote.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return lc.mem.Set(ctx, key, value, ttl)
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := lc.mem.Get(ctx, key); err == nil {
		return v, nil
	}
	v, err := lc.remote.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	_ = lc.mem.Set(ctx, key, v, l1TTL)
	return v, nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

// Close closes both layers.
func (lc *LayeredCache) Close() error {
	_ = lc.mem.Close()
	return lc.remote.Close()
}
