package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/cache"
	"StockLens/internal/collector"
	"StockLens/internal/metrics"
	"StockLens/internal/ml"
	"StockLens/internal/model"
	"StockLens/internal/pipeline"
	"StockLens/internal/recorder"
)

type spyRecorder struct {
	recorder.NoopRecorder
	mu   sync.Mutex
	runs []recorder.Run
}

func (s *spyRecorder) RecordRun(run *recorder.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

var (
	start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T, fetcher collector.Fetcher) (*Service, *spyRecorder) {
	t.Helper()
	spy := &spyRecorder{}
	c := collector.NewCollector(fetcher, cache.NewMemoryStore(), zerolog.Nop())
	p := pipeline.New(pipeline.DefaultOptions(), zerolog.Nop())
	s := NewService(c, p, ml.DefaultOptions(), zerolog.Nop(),
		WithRecorder(spy), WithMetrics(metrics.New()), WithMaxClusters(4))
	return s, spy
}

func TestRun_Regression(t *testing.T) {
	s, spy := newService(t, &collector.MockFetcher{})
	report, err := s.Run(context.Background(), Request{
		Symbol: "aapl", Start: start, End: end, Mode: model.ModeRegression, Horizon: 1, Theme: "zombie",
	})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", report.Symbol)
	assert.Equal(t, "mock", report.Source)
	assert.Equal(t, "Close", report.Target)
	assert.Equal(t, []string{"Open", "High", "Low", "Volume"}, report.Features)
	assert.Len(t, report.Predictions, report.Rows)
	require.NotNil(t, report.Predictions[0].Actual)
	assert.Contains(t, report.Coefficients, "High")
	r2, ok := report.Metrics.Get(model.MetricR2)
	require.True(t, ok)
	assert.Greater(t, r2, 0.8)
	assert.Contains(t, report.Message, "UNDEAD")
	require.NotNil(t, report.Bundle)
	assert.Len(t, report.Bundle.Views, 7)

	require.Len(t, spy.runs, 1)
	assert.Equal(t, report.RunID, spy.runs[0].ID)
	assert.Equal(t, "ok", spy.runs[0].Status)
}

func TestRun_ClassificationWithIndicators(t *testing.T) {
	s, _ := newService(t, &collector.MockFetcher{})
	report, err := s.Run(context.Background(), Request{
		Symbol: "MSFT", Start: start, End: end, Mode: model.ModeClassification,
		Horizon: 1, Threshold: 0.004, WithIndicators: true,
	})
	require.NoError(t, err)
	assert.Contains(t, report.Features, model.ColRSI)
	assert.NotEmpty(t, report.ClassWeights)
	for _, p := range report.Predictions {
		assert.Contains(t, []string{"down", "stable", "up"}, p.Label)
	}
	acc, _ := report.Metrics.Get(model.MetricAccuracy)
	assert.True(t, acc >= 0 && acc <= 1)
	assert.Equal(t, "default", report.Theme)
}

func TestRun_ClusteringAuto(t *testing.T) {
	s, _ := newService(t, &collector.MockFetcher{})
	report, err := s.Run(context.Background(), Request{
		Symbol: "NVDA", Start: start, End: end, Mode: model.ModeClustering, AutoClusters: true,
	})
	require.NoError(t, err)
	require.NotNil(t, report.Clusters)
	assert.GreaterOrEqual(t, report.Clusters.K, 2)
	assert.LessOrEqual(t, report.Clusters.K, 4)
	total := 0
	for _, id := range report.Clusters.SortedClusterIDs() {
		total += report.Clusters.Counts[id]
	}
	assert.Equal(t, report.Rows, total)
	assert.Empty(t, report.Target)
	assert.Nil(t, report.Predictions[0].Actual)
}

func TestRun_Upload(t *testing.T) {
	s, _ := newService(t, &collector.MockFetcher{Err: errors.New("must not be called")})
	bars, err := (&collector.MockFetcher{}).FetchRange(context.Background(), "X", start, end)
	require.NoError(t, err)

	report, err := s.Run(context.Background(), Request{
		Upload: &model.PriceSeries{Symbol: "FILE", Bars: bars, Source: "upload"},
		Mode:   model.ModeRegression, Horizon: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "upload", report.Source)
	assert.Equal(t, len(bars)-5, report.Rows)
}

func TestRun_ScoreGaugesSkipUploads(t *testing.T) {
	rec := metrics.New()
	c := collector.NewCollector(&collector.MockFetcher{}, cache.NewMemoryStore(), zerolog.Nop())
	s := NewService(c, pipeline.New(pipeline.DefaultOptions(), zerolog.Nop()), ml.DefaultOptions(), zerolog.Nop(),
		WithMetrics(rec))
	bars, err := (&collector.MockFetcher{}).FetchRange(context.Background(), "X", start, end)
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"A1B2C3", "ANY-NAME-THE-CLIENT-PICKS", "ANOTHER"} {
		_, err := s.Run(ctx, Request{
			Upload: &model.PriceSeries{Symbol: name, Bars: bars, Source: model.SourceUpload},
			Mode:   model.ModeRegression, Horizon: 1,
		})
		require.NoError(t, err)
	}
	n, err := testutil.GatherAndCount(rec.Registry(), "stocklens_last_metric")
	require.NoError(t, err)
	assert.Zero(t, n, "uploads must not create score series")

	_, err = s.Run(ctx, Request{Symbol: "AAPL", Start: start, End: end, Mode: model.ModeRegression, Horizon: 1})
	require.NoError(t, err)
	n, err = testutil.GatherAndCount(rec.Registry(), "stocklens_last_metric")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per regression metric")
}

func TestRun_Failures(t *testing.T) {
	s, spy := newService(t, &collector.MockFetcher{Err: errors.New("timeout")})
	ctx := context.Background()

	_, err := s.Run(ctx, Request{Symbol: "AAPL", Start: start, End: end, Mode: model.ModeRegression})
	assert.Equal(t, model.KindAcquisition, model.KindOf(err))

	_, err = s.Run(ctx, Request{Symbol: "AAPL", Start: start, End: end, Mode: "forecast"})
	assert.ErrorIs(t, err, model.ErrInvalidMode)

	_, err = s.Run(ctx, Request{Symbol: "AAPL", Start: start, End: end, Mode: model.ModeRegression, Theme: "nope"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	require.Len(t, spy.runs, 3)
	for _, r := range spy.runs {
		assert.Equal(t, "error", r.Status)
		assert.NotEmpty(t, r.Error)
	}
}
