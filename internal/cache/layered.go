package cache

import (
	"context"

	"StockLens/internal/model"
)

// LayeredStore reads through a memory L1 to a shared L2 and writes through both.
type LayeredStore struct {
	l1 *MemoryStore
	l2 Store
}

// NewLayeredStore combines a memory store with a slower shared store.
func NewLayeredStore(l1 *MemoryStore, l2 Store) *LayeredStore {
	return &LayeredStore{l1: l1, l2: l2}
}

func (s *LayeredStore) Get(ctx context.Context, key Key) ([]model.OHLCV, error) {
	if bars, err := s.l1.Get(ctx, key); err == nil {
		return bars, nil
	}
	bars, err := s.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = s.l1.Set(ctx, key, bars)
	return bars, nil
}

func (s *LayeredStore) Set(ctx context.Context, key Key, bars []model.OHLCV) error {
	if err := s.l2.Set(ctx, key, bars); err != nil {
		return err
	}
	return s.l1.Set(ctx, key, bars)
}

func (s *LayeredStore) Delete(ctx context.Context, key Key) error {
	_ = s.l1.Delete(ctx, key)
	return s.l2.Delete(ctx, key)
}
