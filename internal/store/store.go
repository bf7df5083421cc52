// Package store is the SQLite archive of gathered provenance reports.
// Each stamped run keeps the full report JSON plus a per-module
// projection so runs can be queried by component version.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the run archive.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the archive tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id          INTEGER PRIMARY KEY,
  created_at  TIMESTAMP NOT NULL,
  mode        TEXT NOT NULL,
  report      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
  id          INTEGER PRIMARY KEY,
  run_id      INTEGER NOT NULL REFERENCES runs(id),
  name        TEXT NOT NULL,
  value       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_modules_run ON modules(run_id);
CREATE INDEX IF NOT EXISTS idx_modules_name ON modules(name, value);
`

// Run is one archived report.
type Run struct {
	ID        int64
	CreatedAt time.Time
	Mode      string
	Report    []byte
}

// RecordRun archives a report and its module projection, transactionally.
// Returns the new run id.
func (s *Store) RecordRun(createdAt time.Time, mode string, report []byte, modules map[string]string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO runs (created_at, mode, report) VALUES (?, ?, ?)",
		createdAt, mode, string(report),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for name, value := range modules {
		if _, err := tx.Exec(
			"INSERT INTO modules (run_id, name, value) VALUES (?, ?, ?)",
			id, name, value,
		); err != nil {
			return 0, fmt.Errorf("insert module %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// RunByID returns the archived run, or nil when no such run exists.
func (s *Store) RunByID(id int64) (*Run, error) {
	row := s.db.QueryRow("SELECT id, created_at, mode, report FROM runs WHERE id = ?", id)
	var r Run
	var report string
	err := row.Scan(&r.ID, &r.CreatedAt, &r.Mode, &report)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query run %d: %w", id, err)
	}
	r.Report = []byte(report)
	return &r, nil
}

// ListRuns returns archived runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	q := "SELECT id, created_at, mode, report FROM runs ORDER BY id DESC"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var report string
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Mode, &report); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Report = []byte(report)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ModulesForRun returns the module projection recorded for a run.
func (s *Store) ModulesForRun(runID int64) (map[string]string, error) {
	rows, err := s.db.Query("SELECT name, value FROM modules WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("modules for run %d: %w", runID, err)
	}
	defer rows.Close()

	modules := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules[name] = value
	}
	return modules, rows.Err()
}

// RunsWithModule returns ids of runs that recorded the named module,
// newest first. An empty value matches any recorded value.
func (s *Store) RunsWithModule(name, value string) ([]int64, error) {
	q := "SELECT DISTINCT run_id FROM modules WHERE name = ?"
	args := []any{name}
	if value != "" {
		q += " AND value = ?"
		args = append(args, value)
	}
	q += " ORDER BY run_id DESC"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("runs with module %s: %w", name, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
