package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlation returns the Pearson correlation of two series over the rows where both
// are defined. Fewer than two such rows or a constant series yields NaN.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// CorrelationMatrix computes pairwise correlations. The diagonal of a non-constant column is 1.
func CorrelationMatrix(columns [][]float64) [][]float64 {
	out := make([][]float64, len(columns))
	for i := range out {
		out[i] = make([]float64, len(columns))
	}
	for i := range columns {
		for j := i; j < len(columns); j++ {
			c := Correlation(columns[i], columns[j])
			out[i][j] = c
			out[j][i] = c
		}
	}
	return out
}
