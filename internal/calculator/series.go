package calculator

import "math"

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// maskLeading overwrites the first n values with NaN. go-talib reports warm-up rows as zero.
func maskLeading(values []float64, n int) []float64 {
	for i := 0; i < n && i < len(values); i++ {
		values[i] = math.NaN()
	}
	return values
}

// rolling applies fn to every full window of size period. A window holding a NaN yields NaN.
func rolling(values []float64, period int, fn func(window []float64) float64) []float64 {
	out := NaNs(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		if hasNaN(window) {
			continue
		}
		out[i] = fn(window)
	}
	return out
}

func mean(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

// sampleStd is the ddof=1 standard deviation; a single value has none.
func sampleStd(window []float64) float64 {
	if len(window) < 2 {
		return math.NaN()
	}
	m := mean(window)
	ss := 0.0
	for _, v := range window {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(window)-1))
}
