package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// SourceUpload marks a series read from a user-supplied file rather than a provider.
const SourceUpload = "upload"

// PriceSeries holds raw daily bars for one symbol, oldest first.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Bars      []OHLCV   `json:"bars"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CopyBars returns a copy of bars that shares no memory with the input.
func CopyBars(bars []OHLCV) []OHLCV {
	if bars == nil {
		return nil
	}
	out := make([]OHLCV, len(bars))
	copy(out, bars)
	return out
}

// Frame converts the series into a columnar frame of the five OHLCV columns.
func (s *PriceSeries) Frame() *Frame {
	return FrameFromBars(s.Bars)
}

// FrameFromBars builds an OHLCV frame from bars in the given order.
func FrameFromBars(bars []OHLCV) *Frame {
	dates := make([]time.Time, len(bars))
	open := make([]float64, len(bars))
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	volume := make([]float64, len(bars))
	for i, b := range bars {
		dates[i] = b.Time
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
		volume[i] = b.Volume
	}
	f := NewFrame(dates)
	f.put(ColOpen, open)
	f.put(ColHigh, high)
	f.put(ColLow, low)
	f.put(ColClose, closes)
	f.put(ColVolume, volume)
	return f
}
