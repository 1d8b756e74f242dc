// Package memory provides an in-process cache.Store for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/adeilh/tierkv/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time
	hasExpiry bool
}

// Store is a concurrency-safe map with lazy TTL expiration. Expired entries
// are dropped on access; nothing runs in the background.
type Store struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

// NewStore returns an empty Store using the wall clock.
func NewStore() *Store {
	return &Store{items: make(map[string]entry), now: time.Now}
}

// WithClock overrides the time source (useful for tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
		e.hasExpiry = true
	}
	s.items[key] = e
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(key); !ok {
		return cache.ErrNotFound
	}
	delete(s.items, key)
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.items {
		if _, ok := s.lookup(k); ok {
			n++
		}
	}
	return n
}

// lookup must be called with mu held.
func (s *Store) lookup(key string) (entry, bool) {
	e, ok := s.items[key]
	if !ok {
		return entry{}, false
	}
	if e.hasExpiry && !s.now().Before(e.expiresAt) {
		delete(s.items, key)
		return entry{}, false
	}
	return e, true
}
