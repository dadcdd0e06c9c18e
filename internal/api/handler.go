package api

import (
	"time"

	"github.com/rs/zerolog"

	"StockLens/internal/analyzer"
)

const dateLayout = "2006-01-02"

// HandlerConfig carries request defaults taken from the application config.
type HandlerConfig struct {
	LookbackDays   int
	DefaultHorizon int
	MaxUploadBytes int64
}

// Handlers serves every StockLens route.
type Handlers struct {
	svc *analyzer.Service
	cfg HandlerConfig
	log zerolog.Logger
	now func() time.Time
}

// NewHandlers creates the route handlers around an analysis service.
func NewHandlers(svc *analyzer.Service, cfg HandlerConfig, log zerolog.Logger) *Handlers {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &Handlers{
		svc: svc,
		cfg: cfg,
		log: log.With().Str("component", "api").Logger(),
		now: time.Now,
	}
}

// dateRange resolves optional YYYY-MM-DD bounds. end is inclusive on the wire and
// exclusive in the returned range; a missing start reaches back LookbackDays.
func (h *Handlers) dateRange(start, end string) (time.Time, time.Time, *AppError) {
	to := h.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, BadRequestErrorf("end", "end must be formatted as %s", dateLayout)
		}
		to = t.AddDate(0, 0, 1)
	}
	from := to.AddDate(0, 0, -h.cfg.LookbackDays)
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, BadRequestErrorf("start", "start must be formatted as %s", dateLayout)
		}
		from = t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, BadRequestErrorf("start", "start must not be after end")
	}
	return from, to, nil
}
