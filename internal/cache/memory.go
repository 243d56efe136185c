package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// memoryStore keeps entries in a map with lazy expiry: stale entries
// are dropped when read, and swept whenever a write lands.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func (s *memoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if s.now().After(stored.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}
	out := stored.entry
	return &out, nil
}

func (s *memoryStore) Put(_ context.Context, key string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, stored := range s.entries {
		if now.After(stored.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memoryEntry{entry: *entry, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
