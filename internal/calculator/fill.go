package calculator

import "math"

// FillGaps back-fills then forward-fills NaN values in place. An all-NaN slice is left untouched.
func FillGaps(values []float64) {
	next := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if math.IsNaN(values[i]) {
			values[i] = next
		} else {
			next = values[i]
		}
	}
	prev := math.NaN()
	for i := range values {
		if math.IsNaN(values[i]) {
			values[i] = prev
		} else {
			prev = values[i]
		}
	}
}

// ReducePrecision rounds every value through float32 in place.
func ReducePrecision(values []float64) {
	for i, v := range values {
		values[i] = float64(float32(v))
	}
}
