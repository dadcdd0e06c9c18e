package recorder

import "time"

// Run is one finished analysis request.
type Run struct {
	ID         string             `json:"id"`
	Symbol     string             `json:"symbol"`
	Source     string             `json:"source"`
	Mode       string             `json:"mode"`
	Target     string             `json:"target,omitempty"`
	Horizon    int                `json:"horizon"`
	Rows       int                `json:"rows"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Status     string             `json:"status"` // "ok" or "error"
	Error      string             `json:"error,omitempty"`
	DurationMS int64              `json:"duration_ms"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Load records one price download or cache hit.
type Load struct {
	Symbol string
	Source string
	Start  time.Time
	End    time.Time
	Rows   int
	Cached bool
}

// Recorder persists run history.
type Recorder interface {
	RecordRun(run *Run) error
	RecordLoad(load *Load) error
	RecentRuns(limit int) ([]Run, error)
	Close() error
}
