package collector

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"StockLens/internal/model"
)

// MockFetcher returns deterministic synthetic bars for development and testing.
// It is safe for concurrent use.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV // when set, returned as-is
	Err   error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchRange has been invoked.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchRange(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return model.CopyBars(m.Bars), nil
	}
	base := m.Price
	if base == 0 {
		base = 100
	}
	return generateMockBars(base, start, end), nil
}

// generateMockBars yields one bar per weekday in [start, end) following a gentle
// trend with a weekly wave so that every indicator has something to measure.
func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; day.Before(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + 0.002*float64(i) + 0.02*math.Sin(float64(i)/3))
		bars = append(bars, model.OHLCV{
			Time:   day,
			Open:   p * 0.995,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: 1000000 + float64(i%7)*50000,
		})
		i++
	}
	return bars
}
