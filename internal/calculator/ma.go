package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// SMA computes the simple moving average over period. The first period-1 values are NaN.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(values) < period {
		return NaNs(len(values)), nil
	}
	if hasNaN(values) {
		return rolling(values, period, mean), nil
	}
	return maskLeading(talib.Sma(values, period), period-1), nil
}

// RollingStd computes the sample standard deviation over a window of period values.
func RollingStd(values []float64, period int) ([]float64, error) {
	if period <= 1 {
		return nil, errors.New("period must be greater than one")
	}
	return rolling(values, period, sampleStd), nil
}

// EMA computes an exponential moving average with span period and no bias adjustment:
// alpha = 2/(period+1), seeded with the first defined value. NaN inputs carry the previous value.
func EMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	alpha := 2.0 / float64(period+1)
	out := NaNs(len(values))
	prev := math.NaN()
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = prev
			continue
		case math.IsNaN(prev):
			prev = v
		default:
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out, nil
}
