package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is a per-key TTL cache with single-flight fetch coalescing. Reads and
// writes for one key never block another key's, and concurrent callers for an
// expired or missing key share a single underlying fetch. The store is
// entirely in-memory and resets with the process.
type Store[T any] struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]entry[T]

	group singleflight.Group

	// now is replaceable in tests
	now func() time.Time
}

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// New creates a store whose entries expire ttl after a successful fetch
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached value for key if it is still fresh.
// Otherwise fetch runs exactly once, no matter how many callers arrive
// concurrently, and all of them receive its result. A successful fetch
// replaces the entry; a failed one leaves the cache untouched, so the next
// call retries instead of serving a negative result.
func (s *Store[T]) GetOrFetch(key string, fetch func() (T, error)) (T, error) {
	if value, ok := s.lookup(key); ok {
		return value, nil
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		// A fetch that finished while we queued may have refreshed the
		// entry already
		if value, ok := s.lookup(key); ok {
			return value, nil
		}

		value, err := fetch()
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.entries[key] = entry[T]{value: value, fetchedAt: s.now()}
		s.mu.Unlock()

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}

// lookup returns the entry for key when it has not expired
func (s *Store[T]) lookup(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || s.now().Sub(e.fetchedAt) > s.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Delete removes a single key's entry
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Clear drops every entry, forcing the next access per key to fetch again
func (s *Store[T]) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry[T])
	s.mu.Unlock()
}
