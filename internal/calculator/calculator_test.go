package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestSMA(t *testing.T) {
	closes := ramp(60, 1)
	sma, err := SMA(closes, 20)
	require.NoError(t, err)
	require.Len(t, sma, 60)

	for i := 0; i < 19; i++ {
		assert.True(t, math.IsNaN(sma[i]), "index %d should be warm-up", i)
	}
	assert.InDelta(t, 10.5, sma[19], 1e-9)
	// days 41..60 average to 50.5
	assert.InDelta(t, 50.5, sma[59], 1e-9)
}

func TestSMA_ShortInputAndBadPeriod(t *testing.T) {
	sma, err := SMA([]float64{1, 2, 3}, 5)
	require.NoError(t, err)
	for _, v := range sma {
		assert.True(t, math.IsNaN(v))
	}

	_, err = SMA([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestSMA_WithNaNFallsBackToRolling(t *testing.T) {
	sma, err := SMA([]float64{math.NaN(), 2, 4, 6}, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(sma[0]))
	assert.True(t, math.IsNaN(sma[1]))
	assert.InDelta(t, 3, sma[2], 1e-12)
	assert.InDelta(t, 5, sma[3], 1e-12)
}

func TestEMA(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		period int
		want   []float64
	}{
		{"span one tracks input", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		{"span three halves", []float64{1, 2, 3}, 3, []float64{1, 1.5, 2.25}},
		{"constant stays constant", []float64{5, 5, 5, 5}, 10, []float64{5, 5, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EMA(tt.values, tt.period)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestRSI(t *testing.T) {
	t.Run("strictly rising closes resolve to 100", func(t *testing.T) {
		rsi, err := RSI(ramp(30, 100), 14)
		require.NoError(t, err)
		for i := 0; i < 13; i++ {
			assert.True(t, math.IsNaN(rsi[i]))
		}
		for i := 13; i < 30; i++ {
			assert.Equal(t, 100.0, rsi[i])
		}
	})

	t.Run("flat closes resolve to 100", func(t *testing.T) {
		flat := []float64{10, 10, 10, 10, 10}
		rsi, err := RSI(flat, 3)
		require.NoError(t, err)
		assert.Equal(t, 100.0, rsi[4])
	})

	t.Run("bounded for mixed moves", func(t *testing.T) {
		closes := make([]float64, 100)
		for i := range closes {
			closes[i] = 100 + 10*math.Sin(float64(i)/3)
		}
		rsi, err := RSI(closes, 14)
		require.NoError(t, err)
		for i := 13; i < len(rsi); i++ {
			assert.GreaterOrEqual(t, rsi[i], 0.0)
			assert.LessOrEqual(t, rsi[i], 100.0)
		}
	})

	t.Run("known value", func(t *testing.T) {
		// gains 2, losses 1 over the window: RS 2, RSI 66.67
		rsi, err := RSI([]float64{10, 12, 11}, 3)
		require.NoError(t, err)
		assert.InDelta(t, 100-100/3.0, rsi[2], 1e-9)
	})
}

func TestMACD_SignalIsEMA9OfMACD(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 50 + 5*math.Sin(float64(i)/7) + float64(i)*0.1
	}
	macd, signal, err := MACD(closes, 12, 26, 9)
	require.NoError(t, err)

	ema12, _ := EMA(closes, 12)
	ema26, _ := EMA(closes, 26)
	alpha := 2.0 / 10
	ref := macd[0]
	for i := range closes {
		assert.InDelta(t, ema12[i]-ema26[i], macd[i], 1e-12)
		if i > 0 {
			ref = alpha*macd[i] + (1-alpha)*ref
		}
		assert.InEpsilon(t, ref+1, signal[i]+1, 1e-4)
	}
}

func TestBollingerBands(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	upper, middle, lower, err := BollingerBands(closes, 5, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(upper[3]))
	assert.InDelta(t, 3, middle[4], 1e-12)
	std := math.Sqrt(2.5)
	assert.InDelta(t, 3+2*std, upper[4], 1e-12)
	assert.InDelta(t, 3-2*std, lower[4], 1e-12)
}

func TestTrueRangeAndATR(t *testing.T) {
	high := []float64{10, 12, 11}
	low := []float64{8, 9, 7}
	closes := []float64{9, 11, 8}

	tr, err := TrueRange(high, low, closes)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, tr)

	atr, err := ATR(high, low, closes, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(atr[0]))
	assert.InDelta(t, 2.5, atr[1], 1e-12)
	assert.InDelta(t, 3.5, atr[2], 1e-12)

	_, err = TrueRange(high, low[:2], closes)
	assert.Error(t, err)
}

func TestOBV(t *testing.T) {
	obv, err := OBV([]float64{1, 2, 2, 1}, []float64{10, 20, 30, 40})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 20, 20, -20}, obv)

	rising, err := OBV(ramp(60, 1), ramp(60, 1000))
	require.NoError(t, err)
	for i := 1; i < len(rising); i++ {
		assert.GreaterOrEqual(t, rising[i], rising[i-1])
	}
}

func TestReturns(t *testing.T) {
	r, err := PctChange([]float64{100, 110, 99}, 1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(r[0]))
	assert.InDelta(t, 0.1, r[1], 1e-12)
	assert.InDelta(t, -0.1, r[2], 1e-12)

	cum := CumulativeReturn(r)
	assert.True(t, math.IsNaN(cum[0]))
	assert.InDelta(t, 0.1, cum[1], 1e-12)
	assert.InDelta(t, -0.01, cum[2], 1e-12)
}

func TestMomentum(t *testing.T) {
	m, err := Momentum(ramp(14, 100), 12)
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		assert.True(t, math.IsNaN(m[i]))
	}
	assert.InDelta(t, 0.12, m[12], 1e-9)
	assert.InDelta(t, 12.0/101, m[13], 1e-9)
}

func TestFillGaps(t *testing.T) {
	nan := math.NaN()
	values := []float64{nan, 1, nan, 3, nan}
	FillGaps(values)
	assert.Equal(t, []float64{1, 1, 3, 3, 3}, values)

	empty := []float64{nan, nan}
	FillGaps(empty)
	assert.True(t, math.IsNaN(empty[0]))
}

func TestReducePrecision(t *testing.T) {
	values := []float64{0.1}
	ReducePrecision(values)
	assert.Equal(t, float64(float32(0.1)), values[0])
}

func TestCorrelation(t *testing.T) {
	a := ramp(10, 0)
	b := make([]float64, 10)
	c := make([]float64, 10)
	for i := range a {
		b[i] = 3*a[i] + 1
		c[i] = 7
	}
	assert.InDelta(t, 1, Correlation(a, b), 1e-12)
	assert.True(t, math.IsNaN(Correlation(a, c)))

	m := CorrelationMatrix([][]float64{a, b})
	assert.InDelta(t, 1, m[0][0], 1e-12)
	assert.InDelta(t, m[0][1], m[1][0], 1e-12)
}
