package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// risingBars returns n bars whose close climbs by one each day.
func risingBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = model.OHLCV{
			Time:   day0.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + float64(i*10),
		}
	}
	return bars
}

func wavyBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + 8*math.Sin(float64(i)/5) + float64(i)*0.05
		bars[i] = model.OHLCV{
			Time:   day0.AddDate(0, 0, i),
			Open:   c - 0.3,
			High:   c + 1.2,
			Low:    c - 1.1,
			Close:  c,
			Volume: 5000 + 300*math.Cos(float64(i)/3),
		}
	}
	return bars
}

func closesFrame(closes ...float64) *model.Frame {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: day0.AddDate(0, 0, i), Open: c + 1, High: c + 2, Low: c - 2, Close: c, Volume: 100}
	}
	return model.FrameFromBars(bars)
}

func newTestPipeline() *Pipeline {
	return New(DefaultOptions(), zerolog.Nop())
}

func TestIndicators_NoNaNAfterFill(t *testing.T) {
	p := newTestPipeline()
	in := model.FrameFromBars(wavyBars(80))

	out, err := p.Indicators(in)
	require.NoError(t, err)

	assert.Len(t, in.Names(), 5, "input must not gain columns")
	for _, name := range append(append([]string{}, model.OHLCVColumns...), model.IndicatorColumns...) {
		col, ok := out.Column(name)
		require.True(t, ok, name)
		for i, v := range col {
			assert.False(t, math.IsNaN(v), "%s[%d] is NaN", name, i)
		}
	}
	rsi, _ := out.Column(model.ColRSI)
	for _, v := range rsi {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestIndicators_RisingSeries(t *testing.T) {
	p := newTestPipeline()
	out, err := p.Indicators(model.FrameFromBars(risingBars(60)))
	require.NoError(t, err)

	closes, _ := out.Column(model.ColClose)
	sma20, _ := out.Column(model.ColSMA20)
	want := 0.0
	for _, c := range closes[40:60] {
		want += c
	}
	assert.InDelta(t, want/20, sma20[59], 1e-9)

	obv, _ := out.Column(model.ColOBV)
	for i := 1; i < len(obv); i++ {
		assert.GreaterOrEqual(t, obv[i], obv[i-1])
	}

	rsi, _ := out.Column(model.ColRSI)
	assert.Equal(t, 100.0, rsi[59])
}

func TestIndicators_SignalLineIsEMA9OfMACD(t *testing.T) {
	p := newTestPipeline()
	out, err := p.Indicators(model.FrameFromBars(wavyBars(100)))
	require.NoError(t, err)

	macd, _ := out.Column(model.ColMACD)
	signal, _ := out.Column(model.ColSignalLine)
	ref, err := calculator.EMA(macd, 9)
	require.NoError(t, err)
	for i := range ref {
		assert.InDelta(t, ref[i], signal[i], 1e-4*math.Max(1, math.Abs(ref[i])))
	}
}

func TestIndicators_ReducedPrecision(t *testing.T) {
	p := New(Options{ReducedPrecision: true}, zerolog.Nop())
	out, err := p.Indicators(model.FrameFromBars(wavyBars(60)))
	require.NoError(t, err)

	ema, _ := out.Column(model.ColEMA20)
	for _, v := range ema {
		assert.Equal(t, float64(float32(v)), v)
	}
}

func TestIndicators_Errors(t *testing.T) {
	p := newTestPipeline()

	_, err := p.Indicators(model.NewFrame(nil))
	require.Error(t, err)
	assert.Equal(t, model.KindAcquisition, model.KindOf(err))
	assert.ErrorIs(t, err, model.ErrNoData)

	f := model.NewFrame([]time.Time{day0})
	require.NoError(t, f.Set(model.ColClose, []float64{1}))
	_, err = p.Indicators(f)
	require.Error(t, err)
	assert.Equal(t, model.KindFormat, model.KindOf(err))
	assert.ErrorIs(t, err, model.ErrMissingColumn)
}

func TestMovementClasses(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		threshold float64
		want      []model.Movement
	}{
		{
			name:      "reference sequence",
			values:    []float64{100, 102, 100, 95},
			threshold: 0.01,
			want:      []model.Movement{model.MovementStable, model.MovementUp, model.MovementDown, model.MovementDown},
		},
		{
			name:      "exact threshold is stable",
			values:    []float64{100, 101, 100},
			threshold: 0.01,
			want:      []model.Movement{model.MovementStable, model.MovementStable, model.MovementStable},
		},
		{
			name:      "wider threshold",
			values:    []float64{100, 102, 100, 95},
			threshold: 0.03,
			want:      []model.Movement{model.MovementStable, model.MovementStable, model.MovementStable, model.MovementDown},
		},
		{
			name:   "empty",
			values: nil,
			want:   []model.Movement{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MovementClasses(tt.values, tt.threshold))
		})
	}
}

func TestPrepareML_Regression(t *testing.T) {
	p := newTestPipeline()
	f := closesFrame(10, 11, 12, 13, 14)

	ds, err := p.PrepareML(f, DatasetRequest{Mode: model.ModeRegression, Horizon: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{model.ColOpen, model.ColHigh, model.ColLow, model.ColVolume}, ds.Features)
	assert.Equal(t, model.ColClose, ds.Target)
	require.Len(t, ds.X, 3)
	assert.Len(t, ds.Dates, 3)
	assert.Equal(t, []float64{12, 13, 14}, ds.Y)
	assert.Equal(t, []float64{11, 12, 8, 100}, ds.X[0])
	assert.Equal(t, day0, ds.Dates[0])
}

func TestPrepareML_Classification(t *testing.T) {
	p := newTestPipeline()
	f := closesFrame(98, 100, 102, 100, 95)

	ds, err := p.PrepareML(f, DatasetRequest{Mode: model.ModeClassification, Horizon: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 0, 0}, ds.Y)
	assert.Len(t, ds.X, len(ds.Y))
	assert.Len(t, ds.Dates, len(ds.Y))
}

func TestPrepareML_Clustering(t *testing.T) {
	p := newTestPipeline()
	ds, err := p.PrepareML(closesFrame(1, 2, 3, 4), DatasetRequest{Mode: model.ModeClustering, Horizon: 1})
	require.NoError(t, err)
	assert.Nil(t, ds.Y)
	assert.Len(t, ds.X, 3)
	assert.Len(t, ds.Dates, 3)
}

func TestPrepareML_DropsNaNRowsAndSorts(t *testing.T) {
	p := newTestPipeline()
	dates := []time.Time{day0.AddDate(0, 0, 3), day0, day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2)}
	f := model.NewFrame(dates)
	require.NoError(t, f.Set("Feature", []float64{4, 1, math.NaN(), 3}))
	require.NoError(t, f.Set(model.ColClose, []float64{40, 10, 20, 30}))

	ds, err := p.PrepareML(f, DatasetRequest{Mode: model.ModeRegression, Horizon: 0})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}, {3}, {4}}, ds.X)
	assert.Equal(t, []float64{10, 30, 40}, ds.Y)
	assert.Equal(t, []time.Time{day0, day0.AddDate(0, 0, 2), day0.AddDate(0, 0, 3)}, ds.Dates)
}

func TestPrepareML_Errors(t *testing.T) {
	p := newTestPipeline()
	f := closesFrame(1, 2, 3)

	tests := []struct {
		name string
		in   *model.Frame
		req  DatasetRequest
		kind model.ErrorKind
	}{
		{"empty frame", model.NewFrame(nil), DatasetRequest{Mode: model.ModeRegression}, model.KindAcquisition},
		{"unknown feature", f, DatasetRequest{Mode: model.ModeRegression, Features: []string{"Nope"}}, model.KindFormat},
		{"unknown target", f, DatasetRequest{Mode: model.ModeRegression, Target: "Nope"}, model.KindFormat},
		{"negative horizon", f, DatasetRequest{Mode: model.ModeRegression, Horizon: -1}, model.KindFormat},
		{"bad mode", f, DatasetRequest{Mode: "forecast"}, model.KindFormat},
		{"horizon past end", f, DatasetRequest{Mode: model.ModeRegression, Horizon: 5}, model.KindAcquisition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.PrepareML(tt.in, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, model.KindOf(err))
		})
	}
}

func TestVisualization(t *testing.T) {
	p := newTestPipeline()
	in := model.FrameFromBars(wavyBars(70))

	bundle, err := p.Visualization(in)
	require.NoError(t, err)

	for name, cols := range viewColumns {
		view, ok := bundle.View(name)
		require.True(t, ok, name)
		assert.Equal(t, cols, view.Names())
		assert.Equal(t, 70, view.Len())
	}

	price, _ := bundle.View(model.ViewPrice)
	got, _ := price.Column(model.ColClose)
	want, _ := in.Column(model.ColClose)
	assert.Equal(t, want, got)

	require.NotNil(t, bundle.Correlation)
	c, ok := bundle.Correlation.At(model.ColClose, model.ColClose)
	require.True(t, ok)
	assert.InDelta(t, 1, c, 1e-9)
	assert.Contains(t, bundle.Correlation.Names, model.ColVolatility)

	assert.Len(t, in.Names(), 5, "input must not gain columns")
}
