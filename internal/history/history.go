// Package history persists completed load test runs to a local SQLite
// database so past results can be listed and compared.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/loadcli/internal/loadtest"
	"github.com/studiowebux/loadcli/internal/migrations"
)

// Run is one persisted load test run. Percentile fields are nil when the run
// recorded no successful responses.
type Run struct {
	ID            int64
	StartedAt     time.Time
	URL           string
	Method        string
	Concurrency   int
	DurationSec   float64
	TotalRequests int
	ElapsedSec    float64
	Completed     int
	Errored       int
	OK            int
	RPS           float64
	P50Ms         *float64
	P90Ms         *float64
	P95Ms         *float64
	P99Ms         *float64
	MinMs         *float64
	MaxMs         *float64
	AvgMs         *float64
	Statuses      map[int]int
	Errors        map[string]int
}

// FromReport builds a Run record from a finished report.
func FromReport(opts *loadtest.Options, r *loadtest.Report, startedAt time.Time) *Run {
	run := &Run{
		StartedAt:     startedAt,
		URL:           opts.URL,
		Method:        opts.NormalizedMethod(),
		Concurrency:   opts.Concurrency,
		DurationSec:   opts.DurationSec,
		TotalRequests: opts.Requests,
		ElapsedSec:    r.Elapsed.Seconds(),
		Completed:     r.TotalCompleted,
		Errored:       r.TotalErrored,
		OK:            r.OK,
		RPS:           r.RPS,
		Statuses:      r.Statuses,
		Errors:        make(map[string]int, len(r.Errors)),
	}
	for kind, count := range r.Errors {
		run.Errors[string(kind)] = count
	}

	if r.HasLatencies() {
		run.P50Ms = ptr(r.P50())
		run.P90Ms = ptr(r.P90())
		run.P95Ms = ptr(r.P95())
		run.P99Ms = ptr(r.P99())
		run.MinMs = ptr(r.Min())
		run.MaxMs = ptr(r.Max())
		run.AvgMs = ptr(r.Avg())
	}
	return run
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// Manager handles run history persistence
type Manager struct {
	db *sql.DB
}

// NewManager opens (or creates) the history database at dbPath and applies
// pending migrations. Use ":memory:" for an ephemeral database.
func NewManager(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}

// SaveRun inserts a run record and fills in its assigned ID.
func (m *Manager) SaveRun(run *Run) error {
	statusesJSON, err := json.Marshal(run.Statuses)
	if err != nil {
		return fmt.Errorf("failed to marshal statuses: %w", err)
	}
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}

	result, err := m.db.Exec(`
		INSERT INTO runs (
			started_at, url, method, concurrency, duration_sec, total_requests,
			elapsed_sec, completed, errored, ok, rps,
			p50_ms, p90_ms, p95_ms, p99_ms, min_ms, max_ms, avg_ms,
			statuses, errors
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		run.URL, run.Method, run.Concurrency, run.DurationSec, run.TotalRequests,
		run.ElapsedSec, run.Completed, run.Errored, run.OK, run.RPS,
		nullable(run.P50Ms), nullable(run.P90Ms), nullable(run.P95Ms), nullable(run.P99Ms),
		nullable(run.MinMs), nullable(run.MaxMs), nullable(run.AvgMs),
		string(statusesJSON), string(errorsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	run.ID = id
	return nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

const runColumns = `
	id, started_at, url, method, concurrency, duration_sec, total_requests,
	elapsed_sec, completed, errored, ok, rps,
	p50_ms, p90_ms, p95_ms, p99_ms, min_ms, max_ms, avg_ms,
	statuses, errors
`

// ListRuns returns the most recent runs, newest first.
func (m *Manager) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := m.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun retrieves a single run by ID.
func (m *Manager) GetRun(id int64) (*Run, error) {
	row := m.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ClearRuns deletes all persisted runs.
func (m *Manager) ClearRuns() error {
	if _, err := m.db.Exec(`DELETE FROM runs`); err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*Run, error) {
	run := &Run{}
	var startedAt string
	var statusesJSON, errorsJSON string

	err := s.Scan(
		&run.ID, &startedAt, &run.URL, &run.Method, &run.Concurrency,
		&run.DurationSec, &run.TotalRequests,
		&run.ElapsedSec, &run.Completed, &run.Errored, &run.OK, &run.RPS,
		&run.P50Ms, &run.P90Ms, &run.P95Ms, &run.P99Ms,
		&run.MinMs, &run.MaxMs, &run.AvgMs,
		&statusesJSON, &errorsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if t, err := time.ParseInLocation("2006-01-02 15:04:05", startedAt, time.Local); err == nil {
		run.StartedAt = t
	}

	run.Statuses = make(map[int]int)
	if err := json.Unmarshal([]byte(statusesJSON), &run.Statuses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statuses: %w", err)
	}
	run.Errors = make(map[string]int)
	if err := json.Unmarshal([]byte(errorsJSON), &run.Errors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal errors: %w", err)
	}
	return run, nil
}
