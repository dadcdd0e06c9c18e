package cache

import (
	"context"
	"sync"
	"time"

	"StockLens/internal/model"
)

type memoryItem struct {
	bars     []model.OHLCV
	expireAt time.Time // zero means no expiry
	lastUse  uint64
}

// MemoryStore is an in-process Store with least-recently-used eviction once
// maxEntries is reached. maxEntries <= 0 disables eviction. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.Mutex
	data       map[Key]*memoryItem
	maxEntries int
	ttl        time.Duration
	clock      uint64
	now        func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxEntries bounds the number of cached downloads.
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) { s.maxEntries = n }
}

// WithTTL expires entries after d. Zero keeps entries until evicted.
func WithTTL(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.ttl = d }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		data: make(map[Key]*memoryItem),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]model.OHLCV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !item.expireAt.IsZero() && s.now().After(item.expireAt) {
		delete(s.data, key)
		return nil, ErrCacheMiss
	}
	s.clock++
	item.lastUse = s.clock
	return model.CopyBars(item.bars), nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, bars []model.OHLCV) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists && s.maxEntries > 0 && len(s.data) >= s.maxEntries {
		s.evictLRU()
	}
	item := &memoryItem{bars: model.CopyBars(bars)}
	if s.ttl > 0 {
		item.expireAt = s.now().Add(s.ttl)
	}
	s.clock++
	item.lastUse = s.clock
	s.data[key] = item
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of cached downloads, expired ones included until touched.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Purge drops every entry.
func (s *MemoryStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[Key]*memoryItem)
}

func (s *MemoryStore) evictLRU() {
	var oldest Key
	var oldestUse uint64
	found := false
	for k, item := range s.data {
		if !found || item.lastUse < oldestUse {
			oldest, oldestUse, found = k, item.lastUse, true
		}
	}
	if found {
		delete(s.data, oldest)
	}
}
