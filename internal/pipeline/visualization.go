package pipeline

import (
	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

var viewColumns = map[string][]string{
	model.ViewPrice:      {model.ColClose, model.ColHigh, model.ColLow},
	model.ViewVolume:     {model.ColVolume, model.ColVolumeMA},
	model.ViewReturns:    {model.ColDailyReturn, model.ColCumulativeReturn},
	model.ViewVolatility: {model.ColVolatility, model.ColDailyRange},
	model.ViewMomentum:   {model.ColMomentum, model.ColRSI},
	model.ViewTechnical: {
		model.ColSMA20, model.ColSMA50, model.ColEMA20, model.ColEMA50, model.ColMACD, model.ColSignalLine,
	},
	model.ViewBollinger: {model.ColClose, model.ColBBUpper, model.ColBBMiddle, model.ColBBLower},
}

// ViewNames lists every view of a bundle, correlation included.
var ViewNames = []string{
	model.ViewPrice, model.ViewVolume, model.ViewReturns, model.ViewVolatility,
	model.ViewMomentum, model.ViewTechnical, model.ViewCorrelation, model.ViewBollinger,
}

// Visualization adds return statistics and indicators to a copy of f and slices it
// into the named views, plus a correlation matrix over every column.
func (p *Pipeline) Visualization(f *model.Frame) (*model.VisualizationBundle, error) {
	const op = "build visualization"
	if f.Len() == 0 {
		return nil, model.NewError(model.KindAcquisition, op, model.ErrNoData)
	}
	full := f.SortByDate()
	if err := addReturnStats(full); err != nil {
		return nil, wrapOp(op, err)
	}
	if err := addIndicators(full); err != nil {
		return nil, wrapOp(op, err)
	}
	p.finish(full)

	bundle := &model.VisualizationBundle{Views: make(map[string]*model.Frame, len(viewColumns))}
	for name, cols := range viewColumns {
		view, err := full.Select(cols...)
		if err != nil {
			return nil, wrapOp(op, err)
		}
		bundle.Views[name] = view
	}

	names := full.Names()
	cols := make([][]float64, len(names))
	for i, name := range names {
		cols[i], _ = full.Column(name)
	}
	bundle.Correlation = &model.CorrelationMatrix{
		Names:  names,
		Values: calculator.CorrelationMatrix(cols),
	}
	p.log.Debug().Int("rows", full.Len()).Int("views", len(ViewNames)).Msg("visualization bundle built")
	return bundle, nil
}
