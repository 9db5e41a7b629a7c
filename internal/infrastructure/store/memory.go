package store

import (
	"context"
	"sync"
	"time"

	"github.com/productlens/backend/internal/domain"
)

// tabEntry represents the last record seen on a tab with optional expiration
type tabEntry struct {
	Record     *domain.ProductRecord
	Expiration time.Time
}

func (e tabEntry) expired(now time.Time) bool {
	return !e.Expiration.IsZero() && now.After(e.Expiration)
}

// MemoryTabStore is a thread-safe in-memory map from tab ID to product record.
// Updates are last-write-wins.
type MemoryTabStore struct {
	data  map[string]tabEntry
	mutex sync.RWMutex
	done  chan struct{}
	once  sync.Once
}

// NewMemoryTabStore creates a new in-memory tab store
func NewMemoryTabStore() *MemoryTabStore {
	s := &MemoryTabStore{
		data: make(map[string]tabEntry),
		done: make(chan struct{}),
	}

	// Remove entries of tabs that expired without a close event
	go s.cleanupExpired(10 * time.Minute)

	return s
}

// Put stores the record for a tab. A zero ttl keeps it until the tab is closed.
func (s *MemoryTabStore) Put(ctx context.Context, tabID string, record *domain.ProductRecord, ttl time.Duration) error {
	if tabID == "" || record == nil {
		return domain.ErrInvalidRequest
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry := tabEntry{Record: record}
	if ttl > 0 {
		entry.Expiration = time.Now().Add(ttl)
	}
	s.data[tabID] = entry
	return nil
}

// Get retrieves the record for a tab
func (s *MemoryTabStore) Get(ctx context.Context, tabID string) (*domain.ProductRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, exists := s.data[tabID]
	if !exists || entry.expired(time.Now()) {
		return nil, domain.ErrTabNotFound
	}
	return entry.Record, nil
}

// Delete removes the record for a tab
func (s *MemoryTabStore) Delete(ctx context.Context, tabID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, tabID)
	return nil
}

// Len returns the number of tabs currently holding a record
func (s *MemoryTabStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Close stops the cleanup goroutine
func (s *MemoryTabStore) Close() {
	s.once.Do(func() { close(s.done) })
}

// cleanupExpired removes expired entries periodically
func (s *MemoryTabStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictExpired(time.Now())
		}
	}
}

func (s *MemoryTabStore) evictExpired(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for key, entry := range s.data {
		if entry.expired(now) {
			delete(s.data, key)
		}
	}
}
