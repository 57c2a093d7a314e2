package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/internal"
)

const (
	DBFileName = "runs.db"

	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunRecord is one agent run as kept in the ledger.
type RunRecord struct {
	RunID      string
	Task       string
	Root       string
	Model      string
	Thread     string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time

	OK      int
	Failed  int
	Skipped int

	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CachedTokens     int
	Cost             *float64

	Error   string
	Entries []types.LogEntry
}

type SQLiteStore struct {
	db *sql.DB
}

// Open creates <data home>/runs.db if needed and prepares the schema.
func Open(ctx context.Context) (*SQLiteStore, error) {
	dataHome, err := internal.GetDataHome()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataHome, 0o755); err != nil {
		return nil, err
	}

	s, err := NewSQLite(filepath.Join(dataHome, DBFileName))
	if err != nil {
		return nil, err
	}
	if err := s.Init(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("init run ledger: %w", err)
	}
	return s, nil
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	ddl := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA foreign_keys=ON;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			task TEXT NOT NULL,
			root TEXT NOT NULL,
			model TEXT NOT NULL,
			thread TEXT,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			ok_count INTEGER NOT NULL,
			error_count INTEGER NOT NULL,
			skipped_count INTEGER NOT NULL,
			prompt_tokens INTEGER NOT NULL,
			completion_tokens INTEGER NOT NULL,
			total_tokens INTEGER NOT NULL,
			cached_tokens INTEGER NOT NULL,
			cost REAL,
			error TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
		`CREATE TABLE IF NOT EXISTS log_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			status TEXT NOT NULL,
			description TEXT NOT NULL,
			output TEXT,
			error TEXT,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_log_entries_run_id ON log_entries(run_id);`,
	}

	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores a run and its execution log in one transaction.
func (s *SQLiteStore) RecordRun(ctx context.Context, run RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var cost sql.NullFloat64
	if run.Cost != nil {
		cost = sql.NullFloat64{Float64: *run.Cost, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, task, root, model, thread, status, started_at, finished_at,
			ok_count, error_count, skipped_count,
			prompt_tokens, completion_tokens, total_tokens, cached_tokens, cost, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Task,
		run.Root,
		run.Model,
		run.Thread,
		run.Status,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.OK,
		run.Failed,
		run.Skipped,
		run.PromptTokens,
		run.CompletionTokens,
		run.TotalTokens,
		run.CachedTokens,
		cost,
		run.Error,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(run.Entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO log_entries (run_id, position, status, description, output, error)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, entry := range run.Entries {
			if _, err := stmt.ExecContext(ctx, run.RunID, i+1, string(entry.Status), entry.Description, entry.Output, entry.Error); err != nil {
				return fmt.Errorf("insert log entry %d: %w", i+1, err)
			}
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first, without their log entries.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, task, root, model, thread, status, started_at, finished_at,
			ok_count, error_count, skipped_count,
			prompt_tokens, completion_tokens, total_tokens, cached_tokens, cost, error
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			run                 RunRecord
			thread, runErr      sql.NullString
			startedAt, finished string
			cost                sql.NullFloat64
		)
		if err := rows.Scan(
			&run.RunID, &run.Task, &run.Root, &run.Model, &thread, &run.Status, &startedAt, &finished,
			&run.OK, &run.Failed, &run.Skipped,
			&run.PromptTokens, &run.CompletionTokens, &run.TotalTokens, &run.CachedTokens, &cost, &runErr,
		); err != nil {
			return nil, err
		}

		run.Thread = thread.String
		run.Error = runErr.String
		run.StartedAt = parseTime(startedAt)
		run.FinishedAt = parseTime(finished)
		if cost.Valid {
			c := cost.Float64
			run.Cost = &c
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Entries returns the execution log of a run in order.
func (s *SQLiteStore) Entries(ctx context.Context, runID string) ([]types.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, description, output, error
		FROM log_entries
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.LogEntry
	for rows.Next() {
		var (
			status, description string
			output, entryErr    sql.NullString
		)
		if err := rows.Scan(&status, &description, &output, &entryErr); err != nil {
			return nil, err
		}
		entries = append(entries, types.LogEntry{
			Status:      types.Status(status),
			Description: description,
			Output:      output.String,
			Error:       entryErr.String,
		})
	}

	return entries, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
