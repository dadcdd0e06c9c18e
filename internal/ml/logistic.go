package ml

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"StockLens/internal/model"
)

// LogisticRegression is an L2-regularized multinomial (softmax) classifier on
// standardized features, fitted with L-BFGS. The intercepts are not penalized.
type LogisticRegression struct {
	C       float64
	MaxIter int

	scaler  StandardScaler
	classes []float64
	weights [][]float64 // one row per class
	bias    []float64
	fitted  bool
}

// NewLogisticRegression creates an untrained model with inverse regularization strength c.
func NewLogisticRegression(c float64, maxIter int) *LogisticRegression {
	if c <= 0 {
		c = 1
	}
	if maxIter <= 0 {
		maxIter = 1000
	}
	return &LogisticRegression{C: c, MaxIter: maxIter}
}

func (m *LogisticRegression) Name() string             { return "Logistic Regression" }
func (m *LogisticRegression) Mode() model.AnalysisMode { return model.ModeClassification }

// Train fits the model on X and integer class labels y.
func (m *LogisticRegression) Train(X [][]float64, y []float64) error {
	if err := checkTarget(X, y); err != nil {
		return err
	}
	xs, err := m.scaler.FitTransform(X)
	if err != nil {
		return err
	}
	classes := uniqueSorted(y)
	if len(classes) < 2 {
		return model.NewError(model.KindFormat, "train logistic regression",
			fmt.Errorf("%w: need at least 2 classes, got %d", model.ErrInvalidInput, len(classes)))
	}
	index := make(map[float64]int, len(classes))
	for k, c := range classes {
		index[c] = k
	}
	labels := make([]int, len(y))
	for i, v := range y {
		labels[i] = index[v]
	}

	n, p, k := len(xs), len(xs[0]), len(classes)
	penalty := 1 / (m.C * float64(n))
	probs := make([]float64, k)

	unpack := func(x []float64) (w [][]float64, b []float64) {
		w = make([][]float64, k)
		for c := 0; c < k; c++ {
			w[c] = x[c*p : (c+1)*p]
		}
		return w, x[k*p:]
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w, b := unpack(x)
			loss := 0.0
			for i, row := range xs {
				scores(row, w, b, probs)
				loss += logSumExp(probs) - probs[labels[i]]
			}
			reg := 0.0
			for c := 0; c < k; c++ {
				reg += floats.Dot(w[c], w[c])
			}
			return loss/float64(n) + 0.5*penalty*reg
		},
		Grad: func(grad, x []float64) {
			w, b := unpack(x)
			for i := range grad {
				grad[i] = 0
			}
			gw, gb := unpack(grad)
			for i, row := range xs {
				scores(row, w, b, probs)
				softmax(probs)
				for c := 0; c < k; c++ {
					d := probs[c]
					if c == labels[i] {
						d--
					}
					d /= float64(n)
					floats.AddScaled(gw[c], d, row)
					gb[c] += d
				}
			}
			for c := 0; c < k; c++ {
				floats.AddScaled(gw[c], penalty, w[c])
			}
		},
	}

	x0 := make([]float64, k*(p+1))
	settings := &optimize.Settings{
		MajorIterations:   m.MaxIter,
		GradientThreshold: 1e-6,
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if result == nil || hasNaN(result.X) {
		return model.NewError(model.KindInvariant, "train logistic regression", fmt.Errorf("l-bfgs: %v", err))
	}

	w, b := unpack(result.X)
	m.weights = make([][]float64, k)
	for c := range w {
		m.weights[c] = append([]float64(nil), w[c]...)
	}
	m.bias = append([]float64(nil), b...)
	m.classes = classes
	m.fitted = true
	return nil
}

// PredictProba returns one probability row per sample, columns ordered as Classes().
func (m *LogisticRegression) PredictProba(X [][]float64) ([][]float64, error) {
	if !m.fitted {
		return nil, model.NewError(model.KindInvariant, "predict", model.ErrNotFitted)
	}
	xs, err := m.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(xs))
	for i, row := range xs {
		p := make([]float64, len(m.classes))
		scores(row, m.weights, m.bias, p)
		softmax(p)
		out[i] = p
	}
	return out, nil
}

// Predict returns the most probable class label per sample.
func (m *LogisticRegression) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(proba))
	for i, p := range proba {
		out[i] = m.classes[floats.MaxIdx(p)]
	}
	return out, nil
}

// Evaluate reports the accuracy of predictions on X against y.
func (m *LogisticRegression) Evaluate(X [][]float64, y []float64) (model.Metrics, error) {
	if err := checkTarget(X, y); err != nil {
		return model.Metrics{}, err
	}
	pred, err := m.Predict(X)
	if err != nil {
		return model.Metrics{}, err
	}
	return model.Metrics{
		Mode:   model.ModeClassification,
		Values: map[string]float64{model.MetricAccuracy: Accuracy(y, pred)},
	}, nil
}

// Classes returns the sorted class labels seen in training.
func (m *LogisticRegression) Classes() []float64 { return append([]float64(nil), m.classes...) }

// Coefficients returns one weight row per class over the standardized features.
func (m *LogisticRegression) Coefficients() [][]float64 {
	out := make([][]float64, len(m.weights))
	for i, w := range m.weights {
		out[i] = append([]float64(nil), w...)
	}
	return out
}

// Intercepts returns the per-class bias.
func (m *LogisticRegression) Intercepts() []float64 { return append([]float64(nil), m.bias...) }

func scores(row []float64, w [][]float64, b []float64, dst []float64) {
	for c := range w {
		dst[c] = floats.Dot(w[c], row) + b[c]
	}
}

func logSumExp(z []float64) float64 {
	mx := floats.Max(z)
	sum := 0.0
	for _, v := range z {
		sum += math.Exp(v - mx)
	}
	return mx + math.Log(sum)
}

func softmax(z []float64) {
	lse := logSumExp(z)
	for i, v := range z {
		z[i] = math.Exp(v - lse)
	}
}

func uniqueSorted(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	out := make([]float64, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
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
