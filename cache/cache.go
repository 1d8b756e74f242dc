package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: key not found")

// DefaultTTL is the expiration applied to values written by SET commands.
const DefaultTTL = 15 * time.Second

// Store represents a simple TTL-based cache abstraction that can be backed
// by memory, Redis, or any other KV store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
