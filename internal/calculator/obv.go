package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// OBV computes on-balance volume: the running sum of volume signed by the close change.
// The first row and unchanged closes contribute nothing.
func OBV(closes, volume []float64) ([]float64, error) {
	if len(closes) != len(volume) {
		return nil, errors.New("close and volume must have equal length")
	}
	if len(closes) == 0 {
		return []float64{}, nil
	}
	if hasNaN(closes) || hasNaN(volume) {
		return obvNaN(closes, volume), nil
	}
	// go-talib seeds the running total with the first volume.
	out := talib.Obv(closes, volume)
	base := volume[0]
	for i := range out {
		out[i] -= base
	}
	return out, nil
}

// obvNaN treats rows with an undefined change or volume as zero contribution.
func obvNaN(closes, volume []float64) []float64 {
	out := make([]float64, len(closes))
	total := 0.0
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if !math.IsNaN(volume[i]) {
			switch {
			case change > 0:
				total += volume[i]
			case change < 0:
				total -= volume[i]
			}
		}
		out[i] = total
	}
	return out
}
