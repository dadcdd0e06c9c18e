// Package pipeline turns OHLCV frames into indicator frames, model-ready datasets
// and visualization bundles.
package pipeline

import (
	"github.com/rs/zerolog"

	"StockLens/internal/model"
)

// Indicator windows.
const (
	ShortWindow     = 20
	LongWindow      = 50
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	BollingerWindow = 20
	BollingerK      = 2.0
	ATRPeriod       = 14
	VolatilityWin   = 20
	MomentumPeriod  = 12
)

// Options tunes the pipeline.
type Options struct {
	// ReducedPrecision rounds every computed value through float32.
	ReducedPrecision bool
	// DefaultTarget is used when a dataset request names no target.
	DefaultTarget string
	// ClassThreshold is the relative move beyond which a day counts as up or down.
	ClassThreshold float64
}

// DefaultOptions returns full precision, Close as target and a 1% class threshold.
func DefaultOptions() Options {
	return Options{
		DefaultTarget:  model.ColClose,
		ClassThreshold: 0.01,
	}
}

// Pipeline is stateless apart from its options; it is safe for concurrent use.
type Pipeline struct {
	opts Options
	log  zerolog.Logger
}

// New creates a pipeline. Zero option fields fall back to DefaultOptions.
func New(opts Options, log zerolog.Logger) *Pipeline {
	def := DefaultOptions()
	if opts.DefaultTarget == "" {
		opts.DefaultTarget = def.DefaultTarget
	}
	if opts.ClassThreshold <= 0 {
		opts.ClassThreshold = def.ClassThreshold
	}
	return &Pipeline{opts: opts, log: log}
}

// Options returns the effective options.
func (p *Pipeline) Options() Options { return p.opts }
