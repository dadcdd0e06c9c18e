package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the server writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT,
			source      TEXT,
			mode        TEXT,
			target      TEXT,
			horizon     INTEGER,
			rows        INTEGER,
			metrics     TEXT,
			status      TEXT,
			error       TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON analysis_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS data_loads (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT,
			source     TEXT,
			start_date TEXT,
			end_date   TEXT,
			rows       INTEGER,
			cached     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loads_symbol ON data_loads(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = r.db.Exec(`INSERT INTO analysis_runs
		(id, timestamp, symbol, source, mode, target, horizon, rows, metrics, status, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, created.Unix(), run.Symbol, run.Source, run.Mode, run.Target,
		run.Horizon, run.Rows, string(metrics), run.Status, run.Error, run.DurationMS,
	)
	return err
}

func (r *SQLiteRecorder) RecordLoad(load *Load) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cached := 0
	if load.Cached {
		cached = 1
	}
	_, err := r.db.Exec(`INSERT INTO data_loads
		(timestamp, symbol, source, start_date, end_date, rows, cached)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), load.Symbol, load.Source,
		load.Start.Format(time.DateOnly), load.End.Format(time.DateOnly),
		load.Rows, cached,
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, symbol, source, mode, target, horizon, rows,
		metrics, status, error, duration_ms
		FROM analysis_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			ts      int64
			metrics string
		)
		if err := rows.Scan(&run.ID, &ts, &run.Symbol, &run.Source, &run.Mode, &run.Target,
			&run.Horizon, &run.Rows, &metrics, &run.Status, &run.Error, &run.DurationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(ts, 0)
		if metrics != "" && metrics != "null" {
			if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
				return nil, fmt.Errorf("decode metrics for run %s: %w", run.ID, err)
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
