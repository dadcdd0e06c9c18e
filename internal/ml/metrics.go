package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"StockLens/internal/model"
)

// MSE is the mean squared error of pred against truth.
func MSE(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range truth {
		d := truth[i] - pred[i]
		sum += d * d
	}
	return sum / float64(len(truth))
}

// R2 is the coefficient of determination of pred against truth.
func R2(truth, pred []float64) float64 {
	return stat.RSquaredFrom(pred, truth, nil)
}

// Accuracy is the share of exact label matches.
func Accuracy(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return math.NaN()
	}
	hits := 0
	for i := range truth {
		if truth[i] == pred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

// Silhouette is the mean silhouette coefficient of a labelling. It needs between 2
// and n-1 distinct labels. Points alone in their cluster score 0.
func Silhouette(xs [][]float64, labels []int) (float64, error) {
	n := len(xs)
	clusters := make(map[int]int)
	for _, l := range labels {
		clusters[l]++
	}
	if len(clusters) < 2 || len(clusters) > n-1 {
		return 0, model.NewError(model.KindFormat, "silhouette",
			fmt.Errorf("%w: %d distinct labels for %d samples", model.ErrInvalidInput, len(clusters), n))
	}

	total := 0.0
	sums := make(map[int]float64, len(clusters))
	for i := range xs {
		for l := range sums {
			delete(sums, l)
		}
		for j := range xs {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(xs[i], xs[j], 2)
		}
		own := clusters[labels[i]]
		if own == 1 {
			continue
		}
		a := sums[labels[i]] / float64(own-1)
		b := math.Inf(1)
		for l, cnt := range clusters {
			if l == labels[i] {
				continue
			}
			if m := sums[l] / float64(cnt); m < b {
				b = m
			}
		}
		if s := math.Max(a, b); s > 0 {
			total += (b - a) / s
		}
	}
	return total / float64(n), nil
}
