package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// AnalysisMode selects the model family and its metric set.
type AnalysisMode string

const (
	ModeRegression     AnalysisMode = "regression"
	ModeClassification AnalysisMode = "classification"
	ModeClustering     AnalysisMode = "clustering"
)

// AnalysisModes lists every supported mode.
var AnalysisModes = []AnalysisMode{ModeRegression, ModeClassification, ModeClustering}

// ParseAnalysisMode accepts a mode name case-insensitively.
func ParseAnalysisMode(s string) (AnalysisMode, error) {
	switch AnalysisMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRegression:
		return ModeRegression, nil
	case ModeClassification:
		return ModeClassification, nil
	case ModeClustering:
		return ModeClustering, nil
	}
	return "", NewError(KindFormat, "parse mode", fmt.Errorf("%w: %q", ErrInvalidMode, s))
}

// Supervised reports whether the mode needs a target vector.
func (m AnalysisMode) Supervised() bool {
	return m == ModeRegression || m == ModeClassification
}

// Movement is the discrete direction label used by classification.
type Movement int

const (
	MovementDown   Movement = 0
	MovementStable Movement = 1
	MovementUp     Movement = 2
)

func (m Movement) String() string {
	switch m {
	case MovementDown:
		return "down"
	case MovementUp:
		return "up"
	default:
		return "stable"
	}
}

// MLDataset is a model-ready feature matrix with its aligned target and dates.
// Y is nil in clustering mode.
type MLDataset struct {
	X        [][]float64
	Y        []float64
	Dates    []time.Time
	Features []string
	Target   string
	Mode     AnalysisMode
	Horizon  int
}

// Rows returns the number of samples.
func (d *MLDataset) Rows() int { return len(d.X) }

// Metrics is the evaluation result of a model, keyed by metric name.
type Metrics struct {
	Mode   AnalysisMode       `json:"mode"`
	Values map[string]float64 `json:"values"`
}

// Metric names produced by the model adapters.
const (
	MetricMSE        = "mse"
	MetricR2         = "r2"
	MetricAccuracy   = "accuracy"
	MetricSilhouette = "silhouette"
)

// Get returns a metric value and whether it was present.
func (m Metrics) Get(name string) (float64, bool) {
	v, ok := m.Values[name]
	return v, ok
}

// MarshalJSON writes non-finite metric values as null.
func (m Metrics) MarshalJSON() ([]byte, error) {
	values := make(map[string]*float64, len(m.Values))
	for k, v := range m.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[k] = nil
			continue
		}
		values[k] = &v
	}
	return json.Marshal(struct {
		Mode   AnalysisMode        `json:"mode"`
		Values map[string]*float64 `json:"values"`
	}{m.Mode, values})
}

// View names of a visualization bundle.
const (
	ViewPrice       = "price_data"
	ViewVolume      = "volume_data"
	ViewReturns     = "returns_data"
	ViewVolatility  = "volatility_data"
	ViewMomentum    = "momentum_data"
	ViewTechnical   = "technical_indicators"
	ViewCorrelation = "correlation_data"
	ViewBollinger   = "bollinger_bands"
)

// CorrelationMatrix is a symmetric Pearson correlation table.
type CorrelationMatrix struct {
	Names  []string    `json:"names"`
	Values [][]float64 `json:"-"`
}

// At returns the correlation between two named columns.
func (c *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, n := range c.Names {
		if n == a {
			i = k
		}
		if n == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return c.Values[i][j], true
}

// MarshalJSON encodes the matrix with NaN cells as null.
func (c *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	rows := make([]NullableFloats, len(c.Values))
	for i, r := range c.Values {
		rows[i] = NullableFloats(r)
	}
	return json.Marshal(struct {
		Names  []string         `json:"names"`
		Values []NullableFloats `json:"values"`
	}{c.Names, rows})
}

// VisualizationBundle holds display-ready slices of an indicator frame.
type VisualizationBundle struct {
	Views       map[string]*Frame
	Correlation *CorrelationMatrix
}

// View returns a named sub-frame.
func (b *VisualizationBundle) View(name string) (*Frame, bool) {
	f, ok := b.Views[name]
	return f, ok
}

// MarshalJSON flattens views and the correlation matrix into one object.
func (b *VisualizationBundle) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Views)+1)
	for name, f := range b.Views {
		out[name] = f
	}
	out[ViewCorrelation] = b.Correlation
	return json.Marshal(out)
}
