package ml

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"StockLens/internal/model"
)

// KMeans is Lloyd's algorithm on standardized features with k-means++ seeding.
// The best of NInit runs by inertia is kept.
type KMeans struct {
	K       int
	MaxIter int
	NInit   int
	Tol     float64
	Seed    int64

	scaler  StandardScaler
	centers [][]float64 // standardized space
	inertia float64
	fitted  bool
}

// NewKMeans creates an untrained model with k clusters.
func NewKMeans(k, maxIter int, seed int64) *KMeans {
	if k <= 0 {
		k = 3
	}
	if maxIter <= 0 {
		maxIter = 300
	}
	return &KMeans{K: k, MaxIter: maxIter, NInit: 10, Tol: 1e-4, Seed: seed}
}

func (m *KMeans) Name() string             { return "K-Means Clustering" }
func (m *KMeans) Mode() model.AnalysisMode { return model.ModeClustering }

// Train clusters X. y is ignored.
func (m *KMeans) Train(X [][]float64, _ []float64) error {
	xs, err := m.scaler.FitTransform(X)
	if err != nil {
		return err
	}
	if len(xs) < m.K {
		return model.NewError(model.KindFormat, "train kmeans",
			fmt.Errorf("%w: %d samples for %d clusters", model.ErrInvalidInput, len(xs), m.K))
	}
	centers, inertia := fitKMeans(xs, m.K, m.MaxIter, max(m.NInit, 1), m.Tol, rand.New(rand.NewSource(m.Seed)))
	m.centers = centers
	m.inertia = inertia
	m.fitted = true
	return nil
}

// Predict assigns each row of X to its nearest center.
func (m *KMeans) Predict(X [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, model.NewError(model.KindInvariant, "predict", model.ErrNotFitted)
	}
	xs, err := m.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	labels := assign(xs, m.centers)
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = float64(l)
	}
	return out, nil
}

// Evaluate reports the silhouette score of the predicted clusters. y is ignored.
func (m *KMeans) Evaluate(X [][]float64, _ []float64) (model.Metrics, error) {
	if !m.fitted {
		return model.Metrics{}, model.NewError(model.KindInvariant, "evaluate", model.ErrNotFitted)
	}
	xs, err := m.scaler.Transform(X)
	if err != nil {
		return model.Metrics{}, err
	}
	score, err := Silhouette(xs, assign(xs, m.centers))
	if err != nil {
		return model.Metrics{}, err
	}
	return model.Metrics{
		Mode:   model.ModeClustering,
		Values: map[string]float64{model.MetricSilhouette: score},
	}, nil
}

// Centers returns cluster centers in the original feature units.
func (m *KMeans) Centers() [][]float64 { return m.scaler.InverseTransform(m.centers) }

// Inertia returns the within-cluster sum of squared distances in standardized space.
func (m *KMeans) Inertia() float64 { return m.inertia }

// Criterion picks the score OptimalClusters maximizes or minimizes.
type Criterion string

const (
	CriterionSilhouette Criterion = "silhouette"
	CriterionInertia    Criterion = "inertia"
)

// OptimalClusters fits k = 2..maxK and returns the k with the best score: highest
// silhouette, or lowest inertia.
func OptimalClusters(X [][]float64, maxK int, criterion Criterion, seed int64) (int, float64, error) {
	var scaler StandardScaler
	xs, err := scaler.FitTransform(X)
	if err != nil {
		return 0, 0, err
	}
	if maxK > len(xs)-1 {
		maxK = len(xs) - 1
	}
	if maxK < 2 {
		return 0, 0, model.NewError(model.KindFormat, "optimal clusters",
			fmt.Errorf("%w: need at least 3 samples", model.ErrInvalidInput))
	}

	bestK := 2
	best := math.Inf(-1)
	if criterion == CriterionInertia {
		best = math.Inf(1)
	}
	for k := 2; k <= maxK; k++ {
		centers, inertia := fitKMeans(xs, k, 300, 10, 1e-4, rand.New(rand.NewSource(seed)))
		switch criterion {
		case CriterionInertia:
			if inertia < best {
				best, bestK = inertia, k
			}
		default:
			score, err := Silhouette(xs, assign(xs, centers))
			if err != nil {
				continue
			}
			if score > best {
				best, bestK = score, k
			}
		}
	}
	return bestK, best, nil
}

func fitKMeans(xs [][]float64, k, maxIter, nInit int, tol float64, rng *rand.Rand) ([][]float64, float64) {
	threshold := tol * meanVariance(xs)
	var bestCenters [][]float64
	bestInertia := math.Inf(1)
	for run := 0; run < nInit; run++ {
		centers := seedPlusPlus(xs, k, rng)
		for iter := 0; iter < maxIter; iter++ {
			labels := assign(xs, centers)
			next := recenter(xs, labels, centers)
			shift := 0.0
			for c := range centers {
				d := floats.Distance(centers[c], next[c], 2)
				shift += d * d
			}
			centers = next
			if shift <= threshold {
				break
			}
		}
		if in := inertiaOf(xs, assign(xs, centers), centers); in < bestInertia {
			bestInertia = in
			bestCenters = centers
		}
	}
	return bestCenters, bestInertia
}

// seedPlusPlus picks the first center uniformly, then each next one with probability
// proportional to its squared distance from the nearest chosen center.
func seedPlusPlus(xs [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), xs[rng.Intn(len(xs))]...))
	d2 := make([]float64, len(xs))
	for len(centers) < k {
		total := 0.0
		for i, x := range xs {
			d2[i] = nearestSq(x, centers)
			total += d2[i]
		}
		pick := rng.Intn(len(xs))
		if total > 0 {
			r := rng.Float64() * total
			for i, d := range d2 {
				r -= d
				if r <= 0 {
					pick = i
					break
				}
			}
		}
		centers = append(centers, append([]float64(nil), xs[pick]...))
	}
	return centers
}

func assign(xs, centers [][]float64) []int {
	labels := make([]int, len(xs))
	for i, x := range xs {
		best := math.Inf(1)
		for c, center := range centers {
			if d := floats.Distance(x, center, 2); d < best {
				best = d
				labels[i] = c
			}
		}
	}
	return labels
}

// recenter averages each cluster. An empty cluster takes the point farthest from its center.
func recenter(xs [][]float64, labels []int, prev [][]float64) [][]float64 {
	p := len(xs[0])
	next := make([][]float64, len(prev))
	counts := make([]int, len(prev))
	for c := range next {
		next[c] = make([]float64, p)
	}
	for i, x := range xs {
		floats.Add(next[labels[i]], x)
		counts[labels[i]]++
	}
	for c := range next {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), next[c])
			continue
		}
		far, farDist := 0, -1.0
		for i, x := range xs {
			if d := floats.Distance(x, prev[labels[i]], 2); d > farDist {
				far, farDist = i, d
			}
		}
		copy(next[c], xs[far])
	}
	return next
}

func inertiaOf(xs [][]float64, labels []int, centers [][]float64) float64 {
	total := 0.0
	for i, x := range xs {
		d := floats.Distance(x, centers[labels[i]], 2)
		total += d * d
	}
	return total
}

func nearestSq(x []float64, centers [][]float64) float64 {
	best := math.Inf(1)
	for _, c := range centers {
		d := floats.Distance(x, c, 2)
		if d*d < best {
			best = d * d
		}
	}
	return best
}

func meanVariance(xs [][]float64) float64 {
	p := len(xs[0])
	col := make([]float64, len(xs))
	total := 0.0
	for j := 0; j < p; j++ {
		for i := range xs {
			col[i] = xs[i][j]
		}
		_, sd := stat.PopMeanStdDev(col, nil)
		total += sd * sd
	}
	return total / float64(p)
}
