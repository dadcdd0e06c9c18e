package collector

import (
	"context"
	"time"

	"StockLens/internal/model"
)

// Fetcher downloads daily bars for a symbol over [start, end).
type Fetcher interface {
	FetchRange(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// NewFetcher picks a Fetcher by provider name: "rest", "mock" or anything else for Yahoo.
func NewFetcher(provider, baseURL, apiKey, proxyURL string, timeout time.Duration) Fetcher {
	switch provider {
	case "rest":
		return NewRESTFetcher(baseURL, apiKey, proxyURL, timeout)
	case "mock":
		return &MockFetcher{}
	default:
		return NewYahooFetcher(baseURL, proxyURL, timeout)
	}
}
