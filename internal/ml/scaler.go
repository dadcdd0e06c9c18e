package ml

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"StockLens/internal/model"
)

// StandardScaler centres each feature on its mean and divides by its population
// standard deviation. A constant feature keeps scale 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Fit learns per-column mean and scale.
func (s *StandardScaler) Fit(X [][]float64) error {
	n, p, err := dims(X)
	if err != nil {
		return err
	}
	s.Mean = make([]float64, p)
	s.Scale = make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		m, sd := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = m
		if sd == 0 {
			sd = 1
		}
		s.Scale[j] = sd
	}
	return nil
}

// Transform standardizes X into a new matrix.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if s.Mean == nil {
		return nil, model.NewError(model.KindInvariant, "scale", model.ErrNotFitted)
	}
	_, p, err := dims(X)
	if err != nil {
		return nil, err
	}
	if p != len(s.Mean) {
		return nil, model.NewError(model.KindFormat, "scale",
			fmt.Errorf("%w: got %d features, fitted on %d", model.ErrShapeMismatch, p, len(s.Mean)))
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, p)
		for j, v := range row {
			r[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = r
	}
	return out, nil
}

// FitTransform fits on X and returns it standardized.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized rows back to the original units.
func (s *StandardScaler) InverseTransform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = v*s.Scale[j] + s.Mean[j]
		}
		out[i] = r
	}
	return out
}

// dims validates a dense, non-empty, rectangular matrix.
func dims(X [][]float64) (n, p int, err error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return 0, 0, model.NewError(model.KindFormat, "matrix", fmt.Errorf("%w: empty feature matrix", model.ErrNoData))
	}
	p = len(X[0])
	for i, row := range X {
		if len(row) != p {
			return 0, 0, model.NewError(model.KindFormat, "matrix",
				fmt.Errorf("%w: row %d has %d values, want %d", model.ErrShapeMismatch, i, len(row), p))
		}
	}
	return len(X), p, nil
}

func checkTarget(X [][]float64, y []float64) error {
	if len(y) != len(X) {
		return model.NewError(model.KindFormat, "target",
			fmt.Errorf("%w: %d rows, %d targets", model.ErrShapeMismatch, len(X), len(y)))
	}
	return nil
}
