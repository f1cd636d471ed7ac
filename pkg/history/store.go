package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"entraops/capolicy/pkg/deploy"
)

// Run is a recorded deployment run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Prefix     string
	DryRun     bool
	Summary    deploy.Summary
}

// RunResult is one template's recorded outcome within a run.
type RunResult struct {
	RunID        string
	Sequence     string
	TemplateFile string
	DisplayName  string
	MatchName    string
	Action       deploy.Action
	PolicyID     string
	Error        string
}

// Store persists runs to a SQLite database file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "history"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("history database opened", "path", path)
	return s, nil
}

func (s *Store) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, schemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("history schema version mismatch: expected %d, got %d", schemaVersion, version)
	}
	return nil
}

// RecordRun stores a finished run with its per-template results and
// returns the run identifier.
func (s *Store) RecordRun(ctx context.Context, run Run, results []deploy.Result) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, prefix, dry_run, created, updated, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Prefix, run.DryRun,
		run.Summary.Created, run.Summary.Updated, run.Summary.Skipped, run.Summary.Failed)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for i, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_results (run_id, position, sequence, template_file, display_name, match_name, action, policy_id, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, r.Sequence, r.TemplateFile, r.DisplayName, r.MatchName, string(r.Action), r.PolicyID, errText)
		if err != nil {
			return "", fmt.Errorf("failed to insert run result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit history transaction: %w", err)
	}

	s.logger.Debug("run recorded", "run_id", run.ID, "results", len(results))
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, prefix, dry_run, created, updated, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Prefix, &r.DryRun,
			&r.Summary.Created, &r.Summary.Updated, &r.Summary.Skipped, &r.Summary.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListResults returns the per-template outcomes of one run, in deployment
// order.
func (s *Store) ListResults(ctx context.Context, runID string) ([]RunResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, sequence, template_file, display_name, match_name, action, policy_id, error
		 FROM run_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		var action string
		if err := rows.Scan(&r.RunID, &r.Sequence, &r.TemplateFile, &r.DisplayName,
			&r.MatchName, &action, &r.PolicyID, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		r.Action = deploy.Action(action)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
