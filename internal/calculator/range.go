package calculator

import (
	"errors"
	"math"
)

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|) per row.
// The first row has no previous close and uses high-low.
func TrueRange(high, low, closes []float64) ([]float64, error) {
	if len(high) != len(low) || len(high) != len(closes) {
		return nil, errors.New("high, low and close must have equal length")
	}
	out := make([]float64, len(high))
	for i := range high {
		tr := high[i] - low[i]
		if i > 0 {
			prev := closes[i-1]
			tr = math.Max(tr, math.Abs(high[i]-prev))
			tr = math.Max(tr, math.Abs(low[i]-prev))
		}
		out[i] = tr
	}
	return out, nil
}

// ATR computes the average true range as a simple rolling mean over period.
func ATR(high, low, closes []float64, period int) ([]float64, error) {
	tr, err := TrueRange(high, low, closes)
	if err != nil {
		return nil, err
	}
	return SMA(tr, period)
}

// DailyRange returns (high-low)/close per row. A zero close yields NaN.
func DailyRange(high, low, closes []float64) ([]float64, error) {
	if len(high) != len(low) || len(high) != len(closes) {
		return nil, errors.New("high, low and close must have equal length")
	}
	out := make([]float64, len(high))
	for i := range high {
		if closes[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (high[i] - low[i]) / closes[i]
	}
	return out, nil
}
