package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"StockLens/internal/cache"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
)

// Collector loads raw price history through the download cache.
type Collector struct {
	Fetcher  Fetcher
	Store    cache.Store // nil disables caching
	Recorder recorder.Recorder
	Metrics  *metrics.Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, store cache.Store, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Store:    store,
		Recorder: recorder.NewNoopRecorder(),
		log:      log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
		now:      time.Now,
	}
}

// Load returns daily bars for symbol in [start, end). Cached downloads are reused
// unless forceRefresh is set. The returned series never aliases cached data.
func (c *Collector) Load(ctx context.Context, symbol string, start, end time.Time, forceRefresh bool) (*model.PriceSeries, error) {
	const op = "load prices"
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, model.NewError(model.KindFormat, op, fmt.Errorf("empty symbol: %w", model.ErrInvalidInput))
	}
	if !start.Before(end) {
		return nil, model.NewError(model.KindFormat, op,
			fmt.Errorf("%s: start %s is not before end %s: %w", symbol,
				start.Format(time.DateOnly), end.Format(time.DateOnly), model.ErrInvalidInput))
	}

	key := cache.NewKey(symbol, start, end)
	if c.Store != nil && !forceRefresh {
		bars, err := c.Store.Get(ctx, key)
		switch {
		case err == nil:
			c.Metrics.RecordCache(true)
			c.recordLoad(symbol, "cache", start, end, len(bars), true)
			c.log.Debug().Str("key", key.String()).Int("rows", len(bars)).Msg("cache hit")
			return &model.PriceSeries{Symbol: symbol, Bars: bars, Source: "cache", FetchedAt: c.now()}, nil
		case errors.Is(err, cache.ErrCacheMiss):
			c.Metrics.RecordCache(false)
		default:
			c.log.Warn().Err(err).Str("key", key.String()).Msg("cache lookup failed, fetching")
		}
	}

	began := c.now()
	bars, err := c.Fetcher.FetchRange(ctx, symbol, key.Start, key.End)
	c.Metrics.RecordFetch(c.Fetcher.Name(), err)
	c.Metrics.RecordLatency("fetch", time.Since(began))
	if err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Msg("download failed")
		return nil, model.NewError(model.KindAcquisition, op, fmt.Errorf("%s: %w", symbol, err))
	}
	if len(bars) == 0 {
		return nil, model.NewError(model.KindAcquisition, op,
			fmt.Errorf("%s between %s and %s: %w", symbol,
				key.Start.Format(time.DateOnly), key.End.Format(time.DateOnly), model.ErrNoData))
	}

	if c.Store != nil {
		if err := c.Store.Set(ctx, key, bars); err != nil {
			c.log.Warn().Err(err).Str("key", key.String()).Msg("cache store failed")
		}
	}
	c.recordLoad(symbol, c.Fetcher.Name(), start, end, len(bars), false)
	c.log.Info().Str("symbol", symbol).Int("rows", len(bars)).Msg("downloaded prices")

	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      model.CopyBars(bars),
		Source:    c.Fetcher.Name(),
		FetchedAt: c.now(),
	}, nil
}

func (c *Collector) recordLoad(symbol, source string, start, end time.Time, rows int, cached bool) {
	if c.Recorder == nil {
		return
	}
	err := c.Recorder.RecordLoad(&recorder.Load{
		Symbol: symbol, Source: source, Start: start, End: end, Rows: rows, Cached: cached,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("record load failed")
	}
}
