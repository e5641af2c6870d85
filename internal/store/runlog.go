// Package store persists run history in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/apkt-tools/apkt-agent/internal/model"
)

// RunLog records extraction runs so operators can see what was pulled
// for which period, and when a dataset last succeeded.
type RunLog struct {
	db *sql.DB
}

// Open opens (creating if needed) the run log at the given path and
// configures WAL mode.
func Open(dsn string) (*RunLog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	s := &RunLog{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	dataset      TEXT NOT NULL,
	period_ym    TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	rows         INTEGER NOT NULL DEFAULT 0,
	warnings     INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset);
CREATE INDEX IF NOT EXISTS idx_runs_period ON runs(period_ym);
`

func (s *RunLog) migrate() error {
	_, err := s.db.Exec(migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the underlying database.
func (s *RunLog) Close() error {
	return s.db.Close()
}

// Entry is one recorded run.
type Entry struct {
	ID          string
	RunID       string
	Dataset     string
	PeriodYM    string
	Status      string
	Rows        int
	Warnings    int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Start records the beginning of a run and returns the row id.
func (s *RunLog) Start(ctx context.Context, runID, dataset, periodYM string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, run_id, dataset, period_ym, status, started_at) VALUES (?, ?, ?, ?, 'running', ?)`,
		id, runID, dataset, periodYM, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "store: insert run")
	}
	return id, nil
}

// Complete marks a run finished with its final report.
func (s *RunLog) Complete(ctx context.Context, id string, report *model.RunReport) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, rows = ?, warnings = ?, completed_at = ? WHERE id = ?`,
		string(report.Status), report.Rows, len(report.Warnings), time.Now().UTC(), id,
	)
	return eris.Wrap(err, "store: complete run")
}

// Fail marks a run failed with the given error message.
func (s *RunLog) Fail(ctx context.Context, id string, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = 'failed', error = ?, completed_at = ? WHERE id = ?`,
		errMsg, time.Now().UTC(), id,
	)
	return eris.Wrap(err, "store: fail run")
}

// LastSuccess returns the completion time of the most recent
// successful run for a dataset, or nil if none.
func (s *RunLog) LastSuccess(ctx context.Context, dataset string) (*time.Time, error) {
	var t sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT completed_at FROM runs WHERE dataset = ? AND status = 'success' ORDER BY completed_at DESC LIMIT 1`,
		dataset,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: last success")
	}
	if !t.Valid {
		return nil, nil
	}
	return &t.Time, nil
}

// List returns the most recent runs, newest first.
func (s *RunLog) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, dataset, period_ym, status, rows, warnings, COALESCE(error, ''), started_at, completed_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var out []Entry
	for rows.Next() {
		var e Entry
		var completed sql.NullTime
		if err := rows.Scan(&e.ID, &e.RunID, &e.Dataset, &e.PeriodYM, &e.Status, &e.Rows, &e.Warnings, &e.Error, &e.StartedAt, &completed); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		if completed.Valid {
			e.CompletedAt = &completed.Time
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate runs")
}
