// Package history records completed polish runs in a SQLite database so
// results can be compared across revisions of a document.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded polish run.
type Run struct {
	ID               int64
	RunID            string
	DocumentPath     string
	Strategy         string
	JudgeModel       string
	Models           []string
	SectionsTested   int
	AmbiguitiesFound int
	SeverityCounts   map[string]int
	DurationSecs     int64
	CreatedAt        time.Time
}

// Store manages the run history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// ":memory:" is accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of failing.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts a run record and sets run.ID.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	modelsJSON, err := json.Marshal(run.Models)
	if err != nil {
		return fmt.Errorf("marshal models: %w", err)
	}
	countsJSON, err := json.Marshal(run.SeverityCounts)
	if err != nil {
		return fmt.Errorf("marshal severity counts: %w", err)
	}

	query := `INSERT INTO runs
		(run_id, document_path, strategy, judge_model, models, sections_tested, ambiguities_found, severity_counts, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.DocumentPath,
		run.Strategy,
		run.JudgeModel,
		string(modelsJSON),
		run.SectionsTested,
		run.AmbiguitiesFound,
		string(countsJSON),
		run.DurationSecs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	run.ID = id
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-empty
// documentPath filters to that document; limit <= 0 means 20.
func (s *Store) ListRuns(ctx context.Context, documentPath string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, run_id, document_path, strategy, judge_model, models,
		sections_tested, ambiguities_found, severity_counts, duration_seconds, created_at
		FROM runs`
	args := []interface{}{}
	if documentPath != "" {
		query += ` WHERE document_path = ?`
		args = append(args, documentPath)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			modelsJSON string
			countsJSON string
		)
		if err := rows.Scan(
			&run.ID, &run.RunID, &run.DocumentPath, &run.Strategy, &run.JudgeModel,
			&modelsJSON, &run.SectionsTested, &run.AmbiguitiesFound, &countsJSON,
			&run.DurationSecs, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(modelsJSON), &run.Models); err != nil {
			return nil, fmt.Errorf("parse models for run %s: %w", run.RunID, err)
		}
		if err := json.Unmarshal([]byte(countsJSON), &run.SeverityCounts); err != nil {
			return nil, fmt.Errorf("parse severity counts for run %s: %w", run.RunID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
