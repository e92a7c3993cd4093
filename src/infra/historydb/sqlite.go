package historydb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"waxwing/src/features/history"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore is a SQLite implementation of history.Repository.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore creates a new SqliteStore.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			total INTEGER DEFAULT 0,
			changed INTEGER DEFAULT 0,
			failed INTEGER DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS run_outcomes (
			run_id TEXT NOT NULL,
			album_id TEXT NOT NULL,
			title TEXT,
			artist TEXT,
			outcome TEXT NOT NULL,
			provider TEXT,
			detail TEXT,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_run_outcomes_run_id ON run_outcomes(run_id);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`)
	return err
}

// Close closes the underlying database.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists the run and its per-album outcomes in one transaction.
func (s *SqliteStore) SaveRun(ctx context.Context, run *history.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, kind, status, message, started_at, finished_at, total, changed, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Status, run.Message,
		run.StartedAt.Format(time.RFC3339), run.FinishedAt.Format(time.RFC3339),
		run.Total, run.Changed, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, o := range run.Outcomes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_outcomes (run_id, album_id, title, artist, outcome, provider, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, o.AlbumID, o.Title, o.Artist, o.Outcome, o.Provider, o.Detail,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run outcome: %w", err)
		}
	}

	return tx.Commit()
}

// GetRuns returns the latest runs without their outcomes, newest first.
func (s *SqliteStore) GetRuns(ctx context.Context, limit int) ([]*history.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, status, message, started_at, finished_at, total, changed, failed
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*history.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its outcomes, or nil when unknown.
func (s *SqliteStore) GetRun(ctx context.Context, id string) (*history.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, status, message, started_at, finished_at, total, changed, failed
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT album_id, title, artist, outcome, provider, detail
		FROM run_outcomes WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o history.Outcome
		if err := rows.Scan(&o.AlbumID, &o.Title, &o.Artist, &o.Outcome, &o.Provider, &o.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan run outcome: %w", err)
		}
		run.Outcomes = append(run.Outcomes, o)
	}
	return run, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*history.Run, error) {
	var run history.Run
	var startedAt, finishedAt string
	err := row.Scan(&run.ID, &run.Kind, &run.Status, &run.Message,
		&startedAt, &finishedAt, &run.Total, &run.Changed, &run.Failed)
	if err != nil {
		return nil, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
	return &run, nil
}
