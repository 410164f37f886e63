// Package localstore provides the in-process fallback store shared by the
// cache facade and the rate limiter: a map with per-entry TTL, lazy expiry
// on read, and a hard capacity bound enforced by FIFO eviction. A Janitor
// sweeps entries that expired without ever being read again.
package localstore

import (
	"sync"
	"time"
)

// DefaultCapacity bounds memory when the store is the only backend of a
// long-running process.
const DefaultCapacity = 10_000

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a bounded in-process key-value store with per-entry TTL.
//
// Safe for concurrent use. All operations complete without I/O.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	queue    []string // live keys in insertion order, oldest first
	capacity int

	now func() time.Time // test seam
}

// New constructs a Store. capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		entries:  make(map[string]entry),
		queue:    make([]string, 0),
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the value for key. An entry past its TTL is removed and
// reported absent.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		s.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. If the key is new and the store is at
// capacity, the oldest entry is evicted first.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists {
		if len(s.entries) >= s.capacity {
			s.evictOldestLocked()
		}
		s.queue = append(s.queue, key)
	}
	s.entries[key] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.removeLocked(key)
	return true
}

// Has reports whether key is present and unexpired, applying the same lazy
// expiry as Get.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// PurgeExpired removes every entry whose TTL has passed and returns the
// number removed.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	if removed > 0 {
		s.compactQueueLocked()
	}
	storeSize.Set(float64(len(s.entries)))
	return removed
}

// evictOldestLocked removes the oldest live entry. Popping in a loop keeps
// this correct even if the queue ever holds a key the map no longer does.
func (s *Store) evictOldestLocked() {
	for len(s.queue) > 0 {
		k := s.queue[0]
		s.queue = s.queue[1:]
		if _, ok := s.entries[k]; ok {
			delete(s.entries, k)
			storeEvictions.Inc()
			return
		}
	}
}

// removeLocked deletes key from the map and its queue slot, preserving
// insertion order for the remainder.
func (s *Store) removeLocked(key string) {
	delete(s.entries, key)
	for i, k := range s.queue {
		if k == key {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			break
		}
	}
}

// compactQueueLocked rebuilds the queue keeping only live keys, preserving
// insertion order. Used after bulk removals where per-key scans would be
// quadratic.
func (s *Store) compactQueueLocked() {
	live := s.queue[:0]
	for _, k := range s.queue {
		if _, ok := s.entries[k]; ok {
			live = append(live, k)
		}
	}
	s.queue = live
}
