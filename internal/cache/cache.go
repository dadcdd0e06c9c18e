// Package cache memoizes raw price downloads keyed by symbol and date range.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockLens/internal/model"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Key identifies one download. Dates are kept at day granularity in UTC.
type Key struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// NewKey normalizes the symbol to upper case and truncates both dates to the day.
func NewKey(symbol string, start, end time.Time) Key {
	return Key{
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
		Start:  day(start),
		End:    day(end),
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Symbol, k.Start.Format("2006-01-02"), k.End.Format("2006-01-02"))
}

// Store holds downloaded bars. Implementations return copies so callers never share
// memory with the cache.
type Store interface {
	Get(ctx context.Context, key Key) ([]model.OHLCV, error)
	Set(ctx context.Context, key Key, bars []model.OHLCV) error
	Delete(ctx context.Context, key Key) error
}
