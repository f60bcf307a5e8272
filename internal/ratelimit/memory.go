package ratelimit

import (
	"sync"
	"time"
)

type record struct {
	count int
	reset time.Time
}

// MemoryStore keeps counters in a mutex-guarded map. Records are created on
// first use and replaced once their window has passed; a janitor drops
// long-expired entries so the map stays bounded.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]*record),
		now:     time.Now,
	}
	go s.cleanup()
	return s
}

// newMemoryStoreAt is used by tests to control the clock. No janitor.
func newMemoryStoreAt(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*record),
		now:     now,
	}
}

func (s *MemoryStore) Increment(key string, cfg Config) Result {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || now.After(rec.reset) {
		rec = &record{count: 1, reset: now.Add(cfg.Window)}
		s.records[key] = rec
		return Result{Allowed: true, Limit: cfg.Max, Remaining: cfg.Max - 1, Reset: rec.reset}
	}

	if rec.count < cfg.Max {
		rec.count++
		return Result{Allowed: true, Limit: cfg.Max, Remaining: cfg.Max - rec.count, Reset: rec.reset}
	}

	// At the cap: refuse without counting further, reset stays put.
	return Result{Allowed: false, Limit: cfg.Max, Remaining: 0, Reset: rec.reset}
}

func (s *MemoryStore) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		now := s.now()
		s.mu.Lock()
		for key, rec := range s.records {
			if now.Sub(rec.reset) > 5*time.Minute {
				delete(s.records, key)
			}
		}
		s.mu.Unlock()
	}
}
