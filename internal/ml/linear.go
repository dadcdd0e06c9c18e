package ml

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"StockLens/internal/model"
)

// LinearRegression is ordinary least squares on standardized features. Collinear
// features get the minimum-norm solution.
type LinearRegression struct {
	scaler    StandardScaler
	coef      []float64
	intercept float64
	fitted    bool
}

// NewLinearRegression creates an untrained model.
func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

func (m *LinearRegression) Name() string             { return "Linear Regression" }
func (m *LinearRegression) Mode() model.AnalysisMode { return model.ModeRegression }

// Train fits the model on X and y.
func (m *LinearRegression) Train(X [][]float64, y []float64) error {
	if err := checkTarget(X, y); err != nil {
		return err
	}
	xs, err := m.scaler.FitTransform(X)
	if err != nil {
		return err
	}
	n, p := len(xs), len(xs[0])

	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)
	b := make([]float64, n)
	for i, v := range y {
		b[i] = v - yMean
	}

	coef, err := leastSquares(xs, b)
	if err != nil {
		return model.NewError(model.KindInvariant, "train linear regression", err)
	}
	// standardized columns have zero mean, so the intercept reduces to the target mean
	intercept := yMean
	for j := 0; j < p; j++ {
		colMean := 0.0
		for i := range xs {
			colMean += xs[i][j]
		}
		intercept -= coef[j] * colMean / float64(n)
	}

	m.coef = coef
	m.intercept = intercept
	m.fitted = true
	return nil
}

// Predict returns the fitted values for X.
func (m *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, model.NewError(model.KindInvariant, "predict", model.ErrNotFitted)
	}
	xs, err := m.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, row := range xs {
		v := m.intercept
		for j, x := range row {
			v += m.coef[j] * x
		}
		out[i] = v
	}
	return out, nil
}

// Evaluate reports mse and r2 of the predictions on X against y.
func (m *LinearRegression) Evaluate(X [][]float64, y []float64) (model.Metrics, error) {
	if err := checkTarget(X, y); err != nil {
		return model.Metrics{}, err
	}
	pred, err := m.Predict(X)
	if err != nil {
		return model.Metrics{}, err
	}
	return model.Metrics{
		Mode: model.ModeRegression,
		Values: map[string]float64{
			model.MetricMSE: MSE(y, pred),
			model.MetricR2:  R2(y, pred),
		},
	}, nil
}

// Coefficients returns one weight per standardized feature.
func (m *LinearRegression) Coefficients() []float64 { return append([]float64(nil), m.coef...) }

// Intercept returns the fitted bias.
func (m *LinearRegression) Intercept() float64 { return m.intercept }

// leastSquares solves min ||A x - b|| through the SVD pseudo-inverse, discarding
// singular values below the machine-precision cutoff.
func leastSquares(a [][]float64, b []float64) ([]float64, error) {
	n, p := len(a), len(a[0])
	flat := make([]float64, 0, n*p)
	for _, row := range a {
		flat = append(flat, row...)
	}
	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(n, p, flat), mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := 0.0
	if len(s) > 0 {
		eps := math.Nextafter(1, 2) - 1
		cutoff = s[0] * float64(max(n, p)) * eps
	}
	x := make([]float64, p)
	for k, sv := range s {
		if sv <= cutoff {
			continue
		}
		dot := 0.0
		for i := 0; i < n; i++ {
			dot += u.At(i, k) * b[i]
		}
		c := dot / sv
		for j := 0; j < p; j++ {
			x[j] += c * v.At(j, k)
		}
	}
	return x, nil
}
