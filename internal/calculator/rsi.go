package calculator

import (
	"errors"
	"math"
)

// RSI computes the relative strength index from the simple rolling mean of gains and
// losses over period day-over-day changes. The first change is counted as zero, so the
// first defined value sits at index period-1. A zero average loss yields 100.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		switch {
		case math.IsNaN(change):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case change > 0:
			gains[i] = change
		default:
			losses[i] = -change
		}
	}
	avgGain := rolling(gains, period, mean)
	avgLoss := rolling(losses, period, mean)

	out := NaNs(len(closes))
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			out[i] = 100
			continue
		}
		rs := g / l
		out[i] = 100 - 100/(1+rs)
	}
	return out, nil
}
