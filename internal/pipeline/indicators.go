package pipeline

import (
	"fmt"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

// Indicators returns a copy of f with every technical indicator column appended and
// all gaps filled backward then forward. f must hold High, Low, Close and Volume.
func (p *Pipeline) Indicators(f *model.Frame) (*model.Frame, error) {
	const op = "compute indicators"
	if f.Len() == 0 {
		return nil, model.NewError(model.KindAcquisition, op, model.ErrNoData)
	}
	out := f.Copy()
	if err := addIndicators(out); err != nil {
		return nil, wrapOp(op, err)
	}
	p.finish(out)
	p.log.Debug().Int("rows", out.Len()).Int("columns", len(out.Names())).Msg("indicators computed")
	return out, nil
}

// finish applies the missing-value and precision policies to every column.
func (p *Pipeline) finish(f *model.Frame) {
	for _, name := range f.Names() {
		col, _ := f.Column(name)
		calculator.FillGaps(col)
		if p.opts.ReducedPrecision {
			calculator.ReducePrecision(col)
		}
	}
}

func addIndicators(f *model.Frame) error {
	closes, err := f.MustColumn(model.ColClose)
	if err != nil {
		return err
	}
	high, err := f.MustColumn(model.ColHigh)
	if err != nil {
		return err
	}
	low, err := f.MustColumn(model.ColLow)
	if err != nil {
		return err
	}
	volume, err := f.MustColumn(model.ColVolume)
	if err != nil {
		return err
	}

	sma20, err := calculator.SMA(closes, ShortWindow)
	if err != nil {
		return err
	}
	sma50, err := calculator.SMA(closes, LongWindow)
	if err != nil {
		return err
	}
	ema20, err := calculator.EMA(closes, ShortWindow)
	if err != nil {
		return err
	}
	ema50, err := calculator.EMA(closes, LongWindow)
	if err != nil {
		return err
	}
	rsi, err := calculator.RSI(closes, RSIPeriod)
	if err != nil {
		return err
	}
	macd, signal, err := calculator.MACD(closes, MACDFast, MACDSlow, MACDSignal)
	if err != nil {
		return err
	}
	upper, middle, lower, err := calculator.BollingerBands(closes, BollingerWindow, BollingerK)
	if err != nil {
		return err
	}
	atr, err := calculator.ATR(high, low, closes, ATRPeriod)
	if err != nil {
		return err
	}
	obv, err := calculator.OBV(closes, volume)
	if err != nil {
		return err
	}

	return setAll(f, map[string][]float64{
		model.ColSMA20:      sma20,
		model.ColSMA50:      sma50,
		model.ColEMA20:      ema20,
		model.ColEMA50:      ema50,
		model.ColRSI:        rsi,
		model.ColMACD:       macd,
		model.ColSignalLine: signal,
		model.ColBBUpper:    upper,
		model.ColBBMiddle:   middle,
		model.ColBBLower:    lower,
		model.ColATR:        atr,
		model.ColOBV:        obv,
	}, model.IndicatorColumns)
}

func addReturnStats(f *model.Frame) error {
	closes, err := f.MustColumn(model.ColClose)
	if err != nil {
		return err
	}
	high, err := f.MustColumn(model.ColHigh)
	if err != nil {
		return err
	}
	low, err := f.MustColumn(model.ColLow)
	if err != nil {
		return err
	}
	volume, err := f.MustColumn(model.ColVolume)
	if err != nil {
		return err
	}

	daily, err := calculator.PctChange(closes, 1)
	if err != nil {
		return err
	}
	volatility, err := calculator.RollingStd(daily, VolatilityWin)
	if err != nil {
		return err
	}
	volumeMA, err := calculator.SMA(volume, VolatilityWin)
	if err != nil {
		return err
	}
	momentum, err := calculator.Momentum(closes, MomentumPeriod)
	if err != nil {
		return err
	}
	dailyRange, err := calculator.DailyRange(high, low, closes)
	if err != nil {
		return err
	}

	return setAll(f, map[string][]float64{
		model.ColDailyReturn:      daily,
		model.ColCumulativeReturn: calculator.CumulativeReturn(daily),
		model.ColVolatility:       volatility,
		model.ColVolumeMA:         volumeMA,
		model.ColMomentum:         momentum,
		model.ColDailyRange:       dailyRange,
	}, model.ReturnColumns)
}

// setAll stores columns in the given order so the frame layout is deterministic.
func setAll(f *model.Frame, cols map[string][]float64, order []string) error {
	for _, name := range order {
		if err := f.Set(name, cols[name]); err != nil {
			return err
		}
	}
	return nil
}

// wrapOp keeps classified errors and marks anything else as a format failure.
func wrapOp(op string, err error) error {
	if model.KindOf(err) != model.KindUnknown {
		return fmt.Errorf("%s: %w", op, err)
	}
	return model.NewError(model.KindFormat, op, err)
}
