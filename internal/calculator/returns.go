package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// PctChange returns values[i]/values[i-periods] - 1. The first periods values are NaN.
func PctChange(values []float64, periods int) ([]float64, error) {
	if periods <= 0 {
		return nil, errors.New("periods must be positive")
	}
	out := NaNs(len(values))
	for i := periods; i < len(values); i++ {
		prev := values[i-periods]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(values[i]) {
			continue
		}
		out[i] = values[i]/prev - 1
	}
	return out, nil
}

// CumulativeReturn compounds daily returns: prod(1+r) - 1. NaN returns are skipped
// and keep NaN in the output.
func CumulativeReturn(returns []float64) []float64 {
	out := NaNs(len(returns))
	growth := 1.0
	for i, r := range returns {
		if math.IsNaN(r) {
			continue
		}
		growth *= 1 + r
		out[i] = growth - 1
	}
	return out
}

// Momentum is the period rate of change as a fraction. The first period values are NaN.
func Momentum(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) <= period || hasNaN(closes) {
		return PctChange(closes, period)
	}
	roc := talib.Roc(closes, period)
	for i := range roc {
		if i < period || closes[i-period] == 0 {
			roc[i] = math.NaN()
			continue
		}
		roc[i] /= 100
	}
	return roc, nil
}
