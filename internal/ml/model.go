// Package ml wraps standardize-then-fit models for each analysis mode.
package ml

import (
	"fmt"

	"StockLens/internal/model"
)

// Model is the contract shared by every adapter.
type Model interface {
	Name() string
	Mode() model.AnalysisMode
	Train(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
	Evaluate(X [][]float64, y []float64) (model.Metrics, error)
}

// Options configures the adapters built by New. Each iterative model has its own
// iteration cap.
type Options struct {
	Clusters        int     `yaml:"clusters"`
	LogisticMaxIter int     `yaml:"logistic_max_iter"`
	KMeansMaxIter   int     `yaml:"kmeans_max_iter"`
	C               float64 `yaml:"c"`
	Seed            int64   `yaml:"seed"`
}

// DefaultOptions returns three clusters, C = 1, seed 42 and iteration caps of
// 1000 for logistic regression and 300 for k-means.
func DefaultOptions() Options {
	return Options{Clusters: 3, LogisticMaxIter: 1000, KMeansMaxIter: 300, C: 1, Seed: 42}
}

// New returns an untrained model for mode.
func New(mode model.AnalysisMode, opts Options) (Model, error) {
	switch mode {
	case model.ModeRegression:
		return NewLinearRegression(), nil
	case model.ModeClassification:
		return NewLogisticRegression(opts.C, opts.LogisticMaxIter), nil
	case model.ModeClustering:
		return NewKMeans(opts.Clusters, opts.KMeansMaxIter, opts.Seed), nil
	}
	return nil, model.NewError(model.KindFormat, "new model", fmt.Errorf("%w: %q", model.ErrInvalidMode, mode))
}
