package slidingwindow

import (
	"sync"
	"time"
)

// Store counts timestamped events per key inside a trailing window. Both the
// failed-attempt tracker and the rate limiter sit on top of this interface so
// a shared external store can replace the in-memory map in a multi-process
// deployment without touching the callers.
//
// Every method prunes entries older than the window before acting, and each
// method is atomic with respect to concurrent calls for the same key:
// racing requests must not be able to undercount and slip past a threshold.
type Store interface {
	// RecordAndCount appends an event at now and returns the count of events
	// still inside the window, including the new one.
	RecordAndCount(key string, now time.Time, window time.Duration) int

	// Count returns the number of events inside the window without recording.
	Count(key string, now time.Time, window time.Duration) int

	// TryRecord records an event only if fewer than limit events are already
	// in the window. Returns true when the event was recorded.
	TryRecord(key string, now time.Time, window time.Duration, limit int) bool

	// Clear removes the key entirely.
	Clear(key string)
}

// MemoryStore is a lock-guarded in-process Store. State is ephemeral: it does
// not survive restarts and does not synchronize across processes, which is
// acceptable for a single-process deployment.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]time.Time),
	}
}

func (s *MemoryStore) RecordAndCount(key string, now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := prune(s.entries[key], now, window)
	kept = append(kept, now)
	s.entries[key] = kept
	return len(kept)
}

func (s *MemoryStore) Count(key string, now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := prune(s.entries[key], now, window)
	if len(kept) == 0 {
		delete(s.entries, key)
		return 0
	}
	s.entries[key] = kept
	return len(kept)
}

func (s *MemoryStore) TryRecord(key string, now time.Time, window time.Duration, limit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := prune(s.entries[key], now, window)
	if len(kept) >= limit {
		s.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	s.entries[key] = kept
	return true
}

func (s *MemoryStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
