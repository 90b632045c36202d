// Package store persists manual test verdicts in a local SQLite journal.
// The journal is an audit trail: every run records who decided what, when,
// and where the failure evidence was saved.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Verdict outcomes.
const (
	OutcomePass  = "pass"
	OutcomeFail  = "fail"
	OutcomeError = "error"
)

// Verdict is one recorded manual test outcome.
type Verdict struct {
	ID          string
	Suite       string
	Test        string
	Outcome     string
	Reason      string
	CapturePath string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Journal is the SQLite-backed verdict log.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	id TEXT PRIMARY KEY,
	suite TEXT NOT NULL,
	test TEXT NOT NULL,
	outcome TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	capture_path TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verdicts_test ON verdicts(test);
CREATE INDEX IF NOT EXISTS idx_verdicts_finished ON verdicts(finished_at);
`

// Open initializes the journal database at the given path.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record inserts a verdict, assigning an ID when the caller left it empty,
// and returns the ID.
func (j *Journal) Record(v Verdict) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	switch v.Outcome {
	case OutcomePass, OutcomeFail, OutcomeError:
	default:
		return "", fmt.Errorf("unknown outcome %q", v.Outcome)
	}

	_, err := j.db.Exec(
		`INSERT INTO verdicts (id, suite, test, outcome, reason, capture_path, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Suite, v.Test, v.Outcome, v.Reason, v.CapturePath,
		v.StartedAt.UTC(), v.FinishedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record verdict: %w", err)
	}
	return v.ID, nil
}

// Recent returns up to limit verdicts, newest first.
func (j *Journal) Recent(limit int) ([]Verdict, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.Query(
		`SELECT id, suite, test, outcome, reason, capture_path, started_at, finished_at
		 FROM verdicts ORDER BY finished_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []Verdict
	for rows.Next() {
		var v Verdict
		if err := rows.Scan(&v.ID, &v.Suite, &v.Test, &v.Outcome, &v.Reason,
			&v.CapturePath, &v.StartedAt, &v.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
