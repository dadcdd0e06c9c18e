package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

// blobs returns three tight, well separated groups of 2-D points.
func blobs() [][]float64 {
	centers := [][]float64{{0, 0}, {10, 10}, {0, 10}}
	offsets := [][]float64{{0.1, 0}, {-0.1, 0.05}, {0, 0.1}, {0.05, -0.1}, {-0.05, -0.05}, {0.08, 0.08}}
	var X [][]float64
	for _, c := range centers {
		for _, o := range offsets {
			X = append(X, []float64{c[0] + o[0], c[1] + o[1]})
		}
	}
	return X
}

func TestStandardScaler(t *testing.T) {
	X := [][]float64{{1, 5}, {2, 5}, {3, 5}}
	var s StandardScaler
	xs, err := s.FitTransform(X)
	require.NoError(t, err)

	assert.InDelta(t, 2, s.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3), s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "constant column keeps unit scale")
	assert.InDelta(t, 0, xs[1][0], 1e-12)
	assert.InDelta(t, 0, xs[2][1], 1e-12)

	back := s.InverseTransform(xs)
	for i := range X {
		for j := range X[i] {
			assert.InDelta(t, X[i][j], back[i][j], 1e-12)
		}
	}

	_, err = s.Transform([][]float64{{1}})
	assert.ErrorIs(t, err, model.ErrShapeMismatch)

	var empty StandardScaler
	_, err = empty.Transform(X)
	assert.ErrorIs(t, err, model.ErrNotFitted)
}

func TestLinearRegression(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 30; i++ {
		a, b := float64(i), math.Sin(float64(i))
		X = append(X, []float64{a, b})
		y = append(y, 3*a-2*b+5)
	}

	m := NewLinearRegression()
	_, err := m.Predict(X)
	assert.ErrorIs(t, err, model.ErrNotFitted)

	require.NoError(t, m.Train(X, y))
	pred, err := m.Predict(X)
	require.NoError(t, err)
	for i := range y {
		assert.InDelta(t, y[i], pred[i], 1e-6)
	}

	metrics, err := m.Evaluate(X, y)
	require.NoError(t, err)
	assert.Equal(t, model.ModeRegression, metrics.Mode)
	r2, ok := metrics.Get(model.MetricR2)
	require.True(t, ok)
	assert.InDelta(t, 1, r2, 1e-9)
	mse, _ := metrics.Get(model.MetricMSE)
	assert.InDelta(t, 0, mse, 1e-9)
	assert.Len(t, m.Coefficients(), 2)
}

func TestLinearRegression_CollinearFeatures(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		a := float64(i)
		X = append(X, []float64{a, 2 * a, 7})
		y = append(y, 4*a+1)
	}
	m := NewLinearRegression()
	require.NoError(t, m.Train(X, y))
	metrics, err := m.Evaluate(X, y)
	require.NoError(t, err)
	r2, _ := metrics.Get(model.MetricR2)
	assert.InDelta(t, 1, r2, 1e-9)

	coef := m.Coefficients()
	assert.InDelta(t, coef[0], coef[1], 1e-9, "minimum-norm solution splits weight evenly")
	assert.InDelta(t, 0, coef[2], 1e-9)
}

func TestLinearRegression_ShapeErrors(t *testing.T) {
	m := NewLinearRegression()
	err := m.Train([][]float64{{1}, {2}}, []float64{1})
	assert.ErrorIs(t, err, model.ErrShapeMismatch)
	assert.Equal(t, model.KindFormat, model.KindOf(err))

	err = m.Train(nil, nil)
	assert.ErrorIs(t, err, model.ErrNoData)
}

func TestLogisticRegression_Binary(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := -10; i <= 10; i++ {
		if i == 0 {
			continue
		}
		X = append(X, []float64{float64(i), float64(i % 3)})
		if i > 0 {
			y = append(y, 2)
		} else {
			y = append(y, 0)
		}
	}
	m := NewLogisticRegression(1, 1000)
	require.NoError(t, m.Train(X, y))
	assert.Equal(t, []float64{0, 2}, m.Classes())

	metrics, err := m.Evaluate(X, y)
	require.NoError(t, err)
	acc, _ := metrics.Get(model.MetricAccuracy)
	assert.Equal(t, 1.0, acc)

	proba, err := m.PredictProba(X)
	require.NoError(t, err)
	for _, row := range proba {
		assert.InDelta(t, 1, row[0]+row[1], 1e-9)
	}
}

func TestLogisticRegression_ThreeClasses(t *testing.T) {
	var X [][]float64
	var y []float64
	for c, center := range []float64{-6, 0, 6} {
		for _, o := range []float64{-0.5, -0.2, 0, 0.3, 0.5} {
			X = append(X, []float64{center + o})
			y = append(y, float64(c))
		}
	}
	m := NewLogisticRegression(1, 1000)
	require.NoError(t, m.Train(X, y))
	metrics, err := m.Evaluate(X, y)
	require.NoError(t, err)
	acc, _ := metrics.Get(model.MetricAccuracy)
	assert.GreaterOrEqual(t, acc, 0.9)
	assert.Len(t, m.Coefficients(), 3)
	assert.Len(t, m.Intercepts(), 3)
}

func TestLogisticRegression_SingleClass(t *testing.T) {
	m := NewLogisticRegression(1, 100)
	err := m.Train([][]float64{{1}, {2}, {3}}, []float64{1, 1, 1})
	require.Error(t, err)
	assert.Equal(t, model.KindFormat, model.KindOf(err))
}

func TestKMeans(t *testing.T) {
	X := blobs()
	m := NewKMeans(3, 300, 7)
	require.NoError(t, m.Train(X, nil))

	labels, err := m.Predict(X)
	require.NoError(t, err)
	for g := 0; g < 3; g++ {
		first := labels[g*6]
		for i := 1; i < 6; i++ {
			assert.Equal(t, first, labels[g*6+i], "group %d split", g)
		}
	}
	assert.NotEqual(t, labels[0], labels[6])
	assert.NotEqual(t, labels[6], labels[12])
	assert.NotEqual(t, labels[0], labels[12])

	metrics, err := m.Evaluate(X, nil)
	require.NoError(t, err)
	s, _ := metrics.Get(model.MetricSilhouette)
	assert.Greater(t, s, 0.9)
	assert.Greater(t, m.Inertia(), 0.0)

	for _, want := range [][]float64{{0, 0}, {10, 10}, {0, 10}} {
		found := false
		for _, c := range m.Centers() {
			if math.Abs(c[0]-want[0]) < 0.5 && math.Abs(c[1]-want[1]) < 0.5 {
				found = true
			}
		}
		assert.True(t, found, "no center near %v", want)
	}
}

func TestKMeans_TooFewSamples(t *testing.T) {
	m := NewKMeans(3, 10, 1)
	err := m.Train([][]float64{{1}, {2}}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestOptimalClusters(t *testing.T) {
	k, score, err := OptimalClusters(blobs(), 6, CriterionSilhouette, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, k)
	assert.Greater(t, score, 0.9)

	k, _, err = OptimalClusters(blobs(), 5, CriterionInertia, 3)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, k, 3, "inertia keeps falling past the true cluster count")

	_, _, err = OptimalClusters([][]float64{{1}, {2}}, 4, CriterionSilhouette, 1)
	assert.Error(t, err)
}

func TestSilhouette(t *testing.T) {
	xs := [][]float64{{0}, {0.1}, {10}, {10.1}}
	s, err := Silhouette(xs, []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.Greater(t, s, 0.95)

	_, err = Silhouette(xs, []int{0, 0, 0, 0})
	assert.Error(t, err)
	_, err = Silhouette(xs, []int{0, 1, 2, 3})
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	assert.InDelta(t, 0.5, MSE([]float64{1, 2}, []float64{2, 2}), 1e-12)
	assert.InDelta(t, 2.0/3, Accuracy([]float64{0, 1, 2}, []float64{0, 1, 1}), 1e-12)
	assert.InDelta(t, 1, R2([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
}

func TestNew(t *testing.T) {
	opts := DefaultOptions()
	for _, mode := range model.AnalysisModes {
		m, err := New(mode, opts)
		require.NoError(t, err)
		assert.Equal(t, mode, m.Mode())
	}
	_, err := New("forecast", opts)
	assert.ErrorIs(t, err, model.ErrInvalidMode)
}

func TestNew_IterationCapsAreIndependent(t *testing.T) {
	opts := DefaultOptions()
	opts.LogisticMaxIter = 50

	m, err := New(model.ModeClassification, opts)
	require.NoError(t, err)
	assert.Equal(t, 50, m.(*LogisticRegression).MaxIter)

	m, err = New(model.ModeClustering, opts)
	require.NoError(t, err)
	assert.Equal(t, 300, m.(*KMeans).MaxIter, "k-means keeps its own cap")

	opts = DefaultOptions()
	opts.KMeansMaxIter = 20
	m, err = New(model.ModeClassification, opts)
	require.NoError(t, err)
	assert.Equal(t, 1000, m.(*LogisticRegression).MaxIter, "logistic keeps its own cap")
	m, err = New(model.ModeClustering, opts)
	require.NoError(t, err)
	assert.Equal(t, 20, m.(*KMeans).MaxIter)
}
