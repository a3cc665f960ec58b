package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. It is used in tests
// and as a degraded-mode fallback when Redis is unreachable at startup.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	// Now is the clock used for expiry checks; overridable in tests
	Now func() time.Time
}

type memoryEntry struct {
	value     string
	counter   int64
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		Now:     time.Now,
	}
}

// Get returns the value for key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(key)
	if !ok {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set writes key with the given TTL
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.Now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

// Delete removes key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// IncrWithTTL atomically increments the counter at key
func (s *MemoryStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(key)
	if !ok {
		entry = &memoryEntry{}
		if ttl > 0 {
			entry.expiresAt = s.Now().Add(ttl)
		}
		s.entries[key] = entry
	}
	entry.counter++
	return entry.counter, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// live returns the entry for key if present and not expired.
// Caller must hold the lock.
func (s *MemoryStore) live(key string) (*memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !s.Now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return entry, true
}
