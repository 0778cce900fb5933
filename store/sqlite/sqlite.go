/*
Package sqlite persists the redistribution audit trail.

PURPOSE:
  Every engine run produces a Summary and possibly data-quality warnings.
  Operators want to answer "what did last month's run do, and did any
  cell fail to balance?" after the fact, so runs and their warnings are
  recorded here.

KEY TABLES:
  runs:          one record per engine invocation (window, row counts,
                 cells repaired)
  run_warnings:  the unresolved rounding residuals of a run

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the writer. A sync.RWMutex guards the connection; with PostgreSQL the
  database's own concurrency control would take over.

USAGE:
  store, err := sqlite.New("./data/runs.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/tidewater/timesheet-engine/prorate"
)

// Store records engine runs and their warnings.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the audit database at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		window_start TEXT NOT NULL,
		window_end TEXT NOT NULL,
		virtual_rows INTEGER NOT NULL,
		target_rows INTEGER NOT NULL,
		retained_rows INTEGER NOT NULL,
		excepted_rows INTEGER NOT NULL,
		synthesized_rows INTEGER NOT NULL,
		cells_repaired INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_warnings (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		earning TEXT NOT NULL,
		date TEXT NOT NULL,
		residual TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_warnings_run ON run_warnings(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN RECORDS
// =============================================================================

// RunRecord is one audited engine invocation.
type RunRecord struct {
	ID        int64
	Window    prorate.Window
	Summary   prorate.Summary
	Warnings  []prorate.Warning
	CreatedAt time.Time
}

// SaveRun records a completed run and its warnings atomically.
func (s *Store) SaveRun(ctx context.Context, window prorate.Window, summary prorate.Summary, warnings []prorate.Warning) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (window_start, window_end, virtual_rows, target_rows,
			retained_rows, excepted_rows, synthesized_rows, cells_repaired,
			warning_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		window.Start.String(), window.End.String(),
		summary.VirtualRows, summary.TargetRows, summary.RetainedRows,
		summary.ExceptedRows, summary.SynthesizedRows, summary.CellsRepaired,
		len(warnings), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, w := range warnings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_warnings (run_id, earning, date, residual)
			VALUES (?, ?, ?, ?)`,
			id, string(w.Earning), w.Date.String(), w.Residual.String(),
		); err != nil {
			return 0, fmt.Errorf("inserting run warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first, with their warnings.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, window_start, window_end, virtual_rows, target_rows,
			retained_rows, excepted_rows, synthesized_rows, cells_repaired,
			created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var start, end, createdAt string
		if err := rows.Scan(&rec.ID, &start, &end,
			&rec.Summary.VirtualRows, &rec.Summary.TargetRows,
			&rec.Summary.RetainedRows, &rec.Summary.ExceptedRows,
			&rec.Summary.SynthesizedRows, &rec.Summary.CellsRepaired,
			&createdAt,
		); err != nil {
			return nil, err
		}
		if rec.Window.Start, err = prorate.ParseDate(start); err != nil {
			return nil, err
		}
		if rec.Window.End, err = prorate.ParseDate(end); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].Warnings, err = s.warningsOf(ctx, records[i].ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) warningsOf(ctx context.Context, runID int64) ([]prorate.Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT earning, date, residual FROM run_warnings WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []prorate.Warning
	for rows.Next() {
		var earning, date, residual string
		if err := rows.Scan(&earning, &date, &residual); err != nil {
			return nil, err
		}
		w := prorate.Warning{Earning: prorate.EarningCategory(earning)}
		if w.Date, err = prorate.ParseDate(date); err != nil {
			return nil, err
		}
		if w.Residual, err = decimal.NewFromString(residual); err != nil {
			return nil, err
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}
