package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adeilh/tierkv/cache"
)

// Store implements cache.Store on top of a go-redis client.
type Store struct {
	opts   Options
	client *goredis.Client
}

// NewStore builds a Redis-backed cache store. The connection pool is created
// lazily by go-redis; call Ping to verify connectivity.
func NewStore(opts Options) *Store {
	cfg := opts.withDefaults()
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	})
	return &Store{opts: cfg, client: client}
}

// NewStoreFromClient wraps an existing client. The caller keeps ownership of
// the client's lifetime.
func NewStoreFromClient(client *goredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: GET %s: %w", key, err)
	}
	return payload, nil
}

// Set writes value under key. go-redis sends EX for whole-second ttls and PX
// otherwise; ttl <= 0 stores the key without expiration.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: SET %s: %w", key, err)
	}
	return nil
}

// Delete removes key, returning cache.ErrNotFound when nothing was deleted.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis: DEL %s: %w", key, err)
	}
	if n == 0 {
		return cache.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping %s: %w", s.client.Options().Addr, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
