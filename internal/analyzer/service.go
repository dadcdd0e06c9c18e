// Package analyzer runs one end-to-end analysis: acquire prices, build features,
// fit the model for the requested mode, evaluate it and assemble the report.
package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"StockLens/internal/collector"
	"StockLens/internal/metrics"
	"StockLens/internal/ml"
	"StockLens/internal/model"
	"StockLens/internal/pipeline"
	"StockLens/internal/recorder"
	"StockLens/internal/theme"
)

// Service is stateless between runs and safe for concurrent use.
type Service struct {
	collector   *collector.Collector
	pipeline    *pipeline.Pipeline
	modelOpts   ml.Options
	maxClusters int
	recorder    recorder.Recorder
	metrics     *metrics.Recorder
	log         zerolog.Logger
	newID       func() string
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder persists every run, successful or not.
func WithRecorder(r recorder.Recorder) Option { return func(s *Service) { s.recorder = r } }

// WithMetrics exports run counters and scores.
func WithMetrics(m *metrics.Recorder) Option { return func(s *Service) { s.metrics = m } }

// WithMaxClusters bounds the automatic cluster search.
func WithMaxClusters(n int) Option { return func(s *Service) { s.maxClusters = n } }

// NewService wires the analysis steps together.
func NewService(c *collector.Collector, p *pipeline.Pipeline, opts ml.Options, log zerolog.Logger, options ...Option) *Service {
	s := &Service{
		collector:   c,
		pipeline:    p,
		modelOpts:   opts,
		maxClusters: 10,
		recorder:    recorder.NewNoopRecorder(),
		log:         log.With().Str("component", "analyzer").Logger(),
		newID:       uuid.NewString,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Pipeline exposes the indicator pipeline for read-only endpoints.
func (s *Service) Pipeline() *pipeline.Pipeline { return s.pipeline }

// Collector exposes the price loader for read-only endpoints.
func (s *Service) Collector() *collector.Collector { return s.collector }

// Recorder returns the run history store.
func (s *Service) Recorder() recorder.Recorder { return s.recorder }

// Run executes req. A failure aborts this request only; cached downloads are kept.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	began := time.Now()
	report := &Report{RunID: s.newID(), Mode: req.Mode, Horizon: req.Horizon, Symbol: req.Symbol}

	err := s.run(ctx, req, report)
	report.Duration = time.Since(began)

	s.metrics.RecordRun(string(req.Mode), err)
	s.metrics.RecordLatency("analysis", report.Duration)

	run := report.Run()
	if err != nil {
		run.Status = "error"
		run.Error = err.Error()
	}
	if recErr := s.recorder.RecordRun(run); recErr != nil {
		s.log.Warn().Err(recErr).Str("run_id", report.RunID).Msg("record run failed")
	}

	logEvt := s.log.Info()
	if err != nil {
		logEvt = s.log.Warn().Err(err).Str("kind", model.KindOf(err).String())
	}
	logEvt.Str("run_id", report.RunID).
		Str("symbol", report.Symbol).
		Str("mode", string(req.Mode)).
		Int("rows", report.Rows).
		Dur("duration", report.Duration).
		Msg("analysis finished")

	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) run(ctx context.Context, req Request, report *Report) error {
	const op = "analyze"
	mode, err := model.ParseAnalysisMode(string(req.Mode))
	if err != nil {
		return err
	}
	req.Mode = mode
	report.Mode = mode

	th, ok := theme.Lookup(req.Theme)
	if !ok {
		return model.NewError(model.KindFormat, op, fmt.Errorf("%w: unknown theme %q", model.ErrInvalidInput, req.Theme))
	}
	report.Theme = th.Name

	series, err := s.acquire(ctx, req)
	if err != nil {
		return err
	}
	report.Symbol = series.Symbol
	report.Source = series.Source

	frame := series.Frame()
	if req.WithIndicators {
		if frame, err = s.pipeline.Indicators(frame); err != nil {
			return err
		}
	}

	ds, err := s.pipeline.PrepareML(frame, pipeline.DatasetRequest{
		Mode:      req.Mode,
		Target:    req.Target,
		Features:  req.Features,
		Horizon:   req.Horizon,
		Threshold: req.Threshold,
	})
	if err != nil {
		return err
	}
	report.Rows = ds.Rows()
	report.Features = ds.Features
	if req.Mode.Supervised() {
		report.Target = ds.Target
	}

	opts := s.modelOpts
	if req.Clusters > 0 {
		opts.Clusters = req.Clusters
	}
	if req.Mode == model.ModeClustering && req.AutoClusters {
		k, score, err := ml.OptimalClusters(ds.X, s.maxClusters, ml.CriterionSilhouette, opts.Seed)
		if err != nil {
			return err
		}
		s.log.Debug().Int("k", k).Float64("silhouette", score).Msg("selected cluster count")
		opts.Clusters = k
	}

	m, err := ml.New(req.Mode, opts)
	if err != nil {
		return err
	}
	report.ModelName = m.Name()
	if err := m.Train(ds.X, ds.Y); err != nil {
		return fmt.Errorf("%s: %w", m.Name(), err)
	}
	pred, err := m.Predict(ds.X)
	if err != nil {
		return fmt.Errorf("%s: %w", m.Name(), err)
	}
	report.Metrics, err = m.Evaluate(ds.X, ds.Y)
	if err != nil {
		return fmt.Errorf("%s: %w", m.Name(), err)
	}
	// Upload symbols come from client file names and would make gauge labels unbounded.
	if req.Upload == nil {
		for name, v := range report.Metrics.Values {
			s.metrics.RecordScore(report.Symbol, string(req.Mode), name, v)
		}
	}

	report.Predictions = predictions(ds, pred)
	describeModel(report, m, ds)

	bundle, err := s.pipeline.Visualization(series.Frame())
	if err != nil {
		return err
	}
	report.Bundle = bundle
	report.Message = th.Message(report.Metrics)
	return nil
}

func (s *Service) acquire(ctx context.Context, req Request) (*model.PriceSeries, error) {
	if req.Upload != nil {
		if len(req.Upload.Bars) == 0 {
			return nil, model.NewError(model.KindAcquisition, "analyze upload", model.ErrNoData)
		}
		return req.Upload, nil
	}
	if s.collector == nil {
		return nil, model.NewError(model.KindAcquisition, "analyze", fmt.Errorf("no data source configured: %w", model.ErrNoData))
	}
	return s.collector.Load(ctx, req.Symbol, req.Start, req.End, req.ForceRefresh)
}

func predictions(ds *model.MLDataset, pred []float64) []Prediction {
	out := make([]Prediction, len(pred))
	for i, p := range pred {
		out[i] = Prediction{Date: ds.Dates[i], Predicted: p}
		switch ds.Mode {
		case model.ModeClassification:
			out[i].Label = model.Movement(int(p)).String()
			fallthrough
		case model.ModeRegression:
			actual := ds.Y[i]
			out[i].Actual = &actual
		case model.ModeClustering:
			out[i].Label = fmt.Sprintf("cluster %d", int(p))
		}
	}
	return out
}

func describeModel(report *Report, m ml.Model, ds *model.MLDataset) {
	switch fitted := m.(type) {
	case *ml.LinearRegression:
		report.Coefficients = named(ds.Features, fitted.Coefficients())
		icpt := fitted.Intercept()
		report.Intercept = &icpt
	case *ml.LogisticRegression:
		classes := fitted.Classes()
		weights := fitted.Coefficients()
		report.ClassWeights = make(map[string]map[string]float64, len(classes))
		for i, c := range classes {
			report.ClassWeights[model.Movement(int(c)).String()] = named(ds.Features, weights[i])
		}
	case *ml.KMeans:
		labels, _ := fitted.Predict(ds.X)
		counts := make(map[int]int, fitted.K)
		for _, l := range labels {
			counts[int(l)]++
		}
		centers := fitted.Centers()
		summary := &ClusterSummary{K: fitted.K, Counts: counts, Inertia: fitted.Inertia()}
		for _, c := range centers {
			summary.Centers = append(summary.Centers, named(ds.Features, c))
		}
		report.Clusters = summary
	}
}

func named(names []string, values []float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for i, v := range values {
		if i < len(names) {
			out[names[i]] = v
		}
	}
	return out
}

// SortedClusterIDs returns the cluster ids of a summary in ascending order.
func (c *ClusterSummary) SortedClusterIDs() []int {
	ids := make([]int, 0, len(c.Counts))
	for id := range c.Counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
