package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes service metrics on its own registry. A nil *Recorder is a no-op.
type Recorder struct {
	registry     *prometheus.Registry
	fetchesTotal *prometheus.CounterVec
	cacheTotal   *prometheus.CounterVec
	runsTotal    *prometheus.CounterVec
	lastScore    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a recorder with a fresh registry that also carries Go runtime collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_fetches_total",
				Help: "Upstream price downloads by source and outcome",
			},
			[]string{"source", "status"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_cache_lookups_total",
				Help: "Raw download cache lookups by result",
			},
			[]string{"result"},
		),
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_analysis_runs_total",
				Help: "Analysis runs by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		lastScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocklens_last_metric",
				Help: "Last evaluation metric per symbol, mode and metric name",
			},
			[]string{"symbol", "mode", "metric"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocklens_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordFetch counts an upstream download.
func (r *Recorder) RecordFetch(source string, err error) {
	if r == nil {
		return
	}
	r.fetchesTotal.WithLabelValues(source, status(err)).Inc()
}

// RecordCache counts a cache lookup.
func (r *Recorder) RecordCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheTotal.WithLabelValues(result).Inc()
}

// RecordRun counts an analysis run.
func (r *Recorder) RecordRun(mode string, err error) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(mode, status(err)).Inc()
}

// RecordScore stores the latest value of an evaluation metric.
func (r *Recorder) RecordScore(symbol, mode, metric string, value float64) {
	if r == nil {
		return
	}
	r.lastScore.WithLabelValues(symbol, mode, metric).Set(value)
}

// RecordLatency observes how long an operation took.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordRequest observes one HTTP request on a templated route.
func (r *Recorder) RecordRequest(route, method, code string, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, code).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
