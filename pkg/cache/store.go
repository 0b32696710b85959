package cache

import (
	"container/list"
	"sync"
	"time"
)

// Store is the in-process TTL cache. All methods are safe for
// concurrent use; each operation is atomic with respect to its key.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*entry
	lru        *list.List // front = most recently used, values are keys
	maxEntries int

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxEntries bounds the store to n entries. When the bound is
// exceeded, expired entries are evicted first, then the least recently
// used live ones. Zero or negative n leaves the store unbounded.
func WithMaxEntries(n int) Option {
	return func(s *Store) { s.maxEntries = n }
}

// NewStore creates an in-process TTL cache.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		lru:     list.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key if it is present, fresh, and
// of type T. Expired entries are removed on read and reported as
// misses. A stored value of a different type is also a miss; the key
// scheme makes that a key-construction bug rather than a runtime
// concern.
func Get[T any](s *Store, key string) (T, bool) {
	var zero T

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		CacheMisses.WithLabelValues(storeMemory).Inc()
		return zero, false
	}
	if e.expiredAt(s.now()) {
		s.remove(key, e)
		s.mu.Unlock()
		CacheEvictions.WithLabelValues(evictExpired).Inc()
		CacheMisses.WithLabelValues(storeMemory).Inc()
		return zero, false
	}
	if e.lruElem != nil {
		s.lru.MoveToFront(e.lruElem)
	}
	v := e.value
	s.mu.Unlock()

	typed, ok := v.(T)
	if !ok {
		CacheMisses.WithLabelValues(storeMemory).Inc()
		return zero, false
	}
	CacheHits.WithLabelValues(storeMemory).Inc()
	return typed, true
}

// Set stores value under key for ttl. Any prior entry for the key is
// replaced unconditionally.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.remove(key, old)
	}

	e := &entry{value: value, storedAt: s.now(), ttl: ttl}
	if s.maxEntries > 0 {
		e.lruElem = s.lru.PushFront(key)
	}
	s.entries[key] = e
	CacheEntries.Set(float64(len(s.entries)))

	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		s.evictLocked()
	}
}

// Delete removes the entry for key, if any.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		s.remove(key, e)
	}
}

// Clear removes all entries. Used for test isolation and explicit
// user-triggered invalidation.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
	s.lru.Init()
	CacheEntries.Set(0)
}

// Len returns the number of stored entries, including entries whose
// TTL has lapsed but which no read has touched yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// remove deletes an entry and its recency node. Caller holds s.mu.
func (s *Store) remove(key string, e *entry) {
	delete(s.entries, key)
	if e.lruElem != nil {
		s.lru.Remove(e.lruElem)
	}
	CacheEntries.Set(float64(len(s.entries)))
}

// evictLocked brings the store back under maxEntries: expired entries
// go first, then least recently used live ones. Caller holds s.mu.
func (s *Store) evictLocked() {
	now := s.now()
	for key, e := range s.entries {
		if len(s.entries) <= s.maxEntries {
			return
		}
		if e.expiredAt(now) {
			s.remove(key, e)
			CacheEvictions.WithLabelValues(evictExpired).Inc()
		}
	}
	for len(s.entries) > s.maxEntries {
		back := s.lru.Back()
		if back == nil {
			return
		}
		key := back.Value.(string)
		s.remove(key, s.entries[key])
		CacheEvictions.WithLabelValues(evictLRU).Inc()
	}
}
