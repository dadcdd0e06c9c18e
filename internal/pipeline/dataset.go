package pipeline

import (
	"fmt"
	"math"
	"time"

	"StockLens/internal/model"
)

// DatasetRequest describes how to turn a frame into an MLDataset.
type DatasetRequest struct {
	Mode model.AnalysisMode
	// Target defaults to the pipeline's DefaultTarget.
	Target string
	// Features defaults to every column except the target, in frame order.
	Features []string
	// Horizon is how many rows ahead the label is taken from.
	Horizon int
	// Threshold overrides the pipeline's class threshold when positive.
	Threshold float64
}

// PrepareML builds the feature matrix and the horizon-shifted target. Rows with a NaN
// in any feature or in the shifted target are dropped, in every mode. Classification
// labels are derived from the surviving targets; clustering returns no target.
func (p *Pipeline) PrepareML(f *model.Frame, req DatasetRequest) (*model.MLDataset, error) {
	const op = "prepare ml data"
	if f.Len() == 0 {
		return nil, model.NewError(model.KindAcquisition, op, model.ErrNoData)
	}
	switch req.Mode {
	case model.ModeRegression, model.ModeClassification, model.ModeClustering:
	default:
		return nil, model.NewError(model.KindFormat, op, fmt.Errorf("%w: %q", model.ErrInvalidMode, req.Mode))
	}
	if req.Horizon < 0 {
		return nil, model.NewError(model.KindFormat, op, fmt.Errorf("%w: horizon %d is negative", model.ErrInvalidInput, req.Horizon))
	}

	sorted := f.SortByDate()
	target := req.Target
	if target == "" {
		target = p.opts.DefaultTarget
	}
	targetCol, err := sorted.MustColumn(target)
	if err != nil {
		return nil, wrapOp(op, err)
	}

	features := req.Features
	if len(features) == 0 {
		for _, name := range sorted.Names() {
			if name != target {
				features = append(features, name)
			}
		}
	}
	if len(features) == 0 {
		return nil, model.NewError(model.KindFormat, op, fmt.Errorf("%w: no feature columns besides %s", model.ErrMissingColumn, target))
	}
	featCols := make([][]float64, len(features))
	for i, name := range features {
		col, err := sorted.MustColumn(name)
		if err != nil {
			return nil, wrapOp(op, err)
		}
		featCols[i] = col
	}

	n := sorted.Len()
	X := make([][]float64, 0, n)
	y := make([]float64, 0, n)
	dates := make([]time.Time, 0, n)
	for r := 0; r < n; r++ {
		if r+req.Horizon >= n {
			break
		}
		label := targetCol[r+req.Horizon]
		if math.IsNaN(label) {
			continue
		}
		row := make([]float64, len(featCols))
		valid := true
		for c, col := range featCols {
			if math.IsNaN(col[r]) {
				valid = false
				break
			}
			row[c] = col[r]
		}
		if !valid {
			continue
		}
		X = append(X, row)
		y = append(y, label)
		dates = append(dates, sorted.Dates[r])
	}
	if len(X) == 0 {
		return nil, model.NewError(model.KindAcquisition, op,
			fmt.Errorf("%w: no complete rows for horizon %d", model.ErrNoData, req.Horizon))
	}

	ds := &model.MLDataset{
		X:        X,
		Dates:    dates,
		Features: append([]string(nil), features...),
		Target:   target,
		Mode:     req.Mode,
		Horizon:  req.Horizon,
	}
	switch req.Mode {
	case model.ModeRegression:
		ds.Y = y
	case model.ModeClassification:
		threshold := req.Threshold
		if threshold <= 0 {
			threshold = p.opts.ClassThreshold
		}
		classes := MovementClasses(y, threshold)
		ds.Y = make([]float64, len(classes))
		for i, c := range classes {
			ds.Y[i] = float64(c)
		}
	case model.ModeClustering:
		ds.Y = nil
	}

	if err := checkAligned(ds); err != nil {
		p.log.Error().Err(err).
			Str("mode", string(ds.Mode)).
			Str("target", target).
			Strs("features", features).
			Int("horizon", req.Horizon).
			Int("x_rows", len(ds.X)).
			Int("y_rows", len(ds.Y)).
			Int("dates", len(ds.Dates)).
			Msg("dataset alignment violated")
		return nil, err
	}
	return ds, nil
}

func checkAligned(ds *model.MLDataset) error {
	if len(ds.X) != len(ds.Dates) {
		return model.NewError(model.KindInvariant, "prepare ml data",
			fmt.Errorf("%w: %d feature rows, %d dates", model.ErrShapeMismatch, len(ds.X), len(ds.Dates)))
	}
	if ds.Mode.Supervised() && len(ds.Y) != len(ds.X) {
		return model.NewError(model.KindInvariant, "prepare ml data",
			fmt.Errorf("%w: %d feature rows, %d targets", model.ErrShapeMismatch, len(ds.X), len(ds.Y)))
	}
	for i, row := range ds.X {
		if len(row) != len(ds.Features) {
			return model.NewError(model.KindInvariant, "prepare ml data",
				fmt.Errorf("%w: row %d has %d features, want %d", model.ErrShapeMismatch, i, len(row), len(ds.Features)))
		}
	}
	return nil
}

// MovementClasses labels each value by its relative change from the previous one:
// up when the change exceeds threshold, down when it is below -threshold, stable
// otherwise. Both comparisons are strict. The first value has no predecessor and is stable.
func MovementClasses(values []float64, threshold float64) []model.Movement {
	out := make([]model.Movement, len(values))
	for i := range values {
		out[i] = model.MovementStable
		if i == 0 || values[i-1] == 0 {
			continue
		}
		change := (values[i] - values[i-1]) / values[i-1]
		switch {
		case change > threshold:
			out[i] = model.MovementUp
		case change < -threshold:
			out[i] = model.MovementDown
		}
	}
	return out
}
