package analyzer

import (
	"math"
	"time"

	"StockLens/internal/model"
	"StockLens/internal/recorder"
)

// Request describes one analysis. Either Symbol with a date range or Upload is set.
type Request struct {
	Symbol       string
	Start        time.Time
	End          time.Time
	ForceRefresh bool
	// Upload replaces the download when non-nil.
	Upload *model.PriceSeries

	Mode      model.AnalysisMode
	Target    string
	Features  []string
	Horizon   int
	Threshold float64
	// WithIndicators adds the technical indicator columns before building features.
	WithIndicators bool
	// Clusters overrides the configured cluster count; AutoClusters searches 2..max.
	Clusters     int
	AutoClusters bool

	Theme string
}

// Prediction pairs a model output with its date and, for supervised modes, the truth.
type Prediction struct {
	Date      time.Time `json:"date"`
	Actual    *float64  `json:"actual,omitempty"`
	Predicted float64   `json:"predicted"`
	Label     string    `json:"label,omitempty"`
}

// ClusterSummary describes a fitted k-means model.
type ClusterSummary struct {
	K       int                  `json:"k"`
	Counts  map[int]int          `json:"counts"`
	Centers []map[string]float64 `json:"centers"`
	Inertia float64              `json:"inertia"`
}

// Report is everything a client needs to render one analysis.
type Report struct {
	RunID        string                        `json:"run_id"`
	Symbol       string                        `json:"symbol"`
	Source       string                        `json:"source"`
	Mode         model.AnalysisMode            `json:"mode"`
	ModelName    string                        `json:"model"`
	Target       string                        `json:"target,omitempty"`
	Horizon      int                           `json:"horizon"`
	Rows         int                           `json:"rows"`
	Features     []string                      `json:"features"`
	Metrics      model.Metrics                 `json:"metrics"`
	Predictions  []Prediction                  `json:"predictions"`
	Coefficients map[string]float64            `json:"coefficients,omitempty"`
	Intercept    *float64                      `json:"intercept,omitempty"`
	ClassWeights map[string]map[string]float64 `json:"class_weights,omitempty"`
	Clusters     *ClusterSummary               `json:"clusters,omitempty"`
	Bundle       *model.VisualizationBundle    `json:"visualization,omitempty"`
	Theme        string                        `json:"theme"`
	Message      string                        `json:"message"`
	Duration     time.Duration                 `json:"duration_ns"`
}

// Run converts the report into a history record. Non-finite metrics are left out.
func (r *Report) Run() *recorder.Run {
	finite := make(map[string]float64, len(r.Metrics.Values))
	for k, v := range r.Metrics.Values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite[k] = v
		}
	}
	return &recorder.Run{
		ID:         r.RunID,
		Symbol:     r.Symbol,
		Source:     r.Source,
		Mode:       string(r.Mode),
		Target:     r.Target,
		Horizon:    r.Horizon,
		Rows:       r.Rows,
		Metrics:    finite,
		Status:     "ok",
		DurationMS: r.Duration.Milliseconds(),
	}
}
