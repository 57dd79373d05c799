// SPDX-License-Identifier: MPL-2.0

// Package history records the input fingerprints of finished build tasks in
// a SQLite database so that unchanged tasks can be reported up to date.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type (
	// Store is a task history database.
	Store struct {
		db *sql.DB
	}

	// Record is the last successful run of a task.
	Record struct {
		Task        string
		Fingerprint string
		// Outputs are the paths the task produced.
		Outputs    []string
		FinishedAt time.Time
		Duration   time.Duration
	}
)

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database. It is safe on a nil Store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the record of task.
func (s *Store) Get(ctx context.Context, task string) (Record, bool, error) {
	var (
		r        Record
		outputs  string
		finished string
		ms       int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT task, fingerprint, outputs, finished_at, duration_ms FROM tasks WHERE task = ?`, task,
	).Scan(&r.Task, &r.Fingerprint, &outputs, &finished, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read history of %s: %w", task, err)
	}
	if err := json.Unmarshal([]byte(outputs), &r.Outputs); err != nil {
		return Record{}, false, fmt.Errorf("decode outputs of %s: %w", task, err)
	}
	if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return Record{}, false, fmt.Errorf("decode finish time of %s: %w", task, err)
	}
	r.Duration = time.Duration(ms) * time.Millisecond
	return r, true, nil
}

// Put stores r, replacing the previous record of the same task.
func (s *Store) Put(ctx context.Context, r Record) error {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	if r.Outputs == nil {
		r.Outputs = []string{}
	}
	outputs, err := json.Marshal(r.Outputs)
	if err != nil {
		return fmt.Errorf("encode outputs of %s: %w", r.Task, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks(task, fingerprint, outputs, finished_at, duration_ms) VALUES(?,?,?,?,?)
		 ON CONFLICT(task) DO UPDATE SET
		   fingerprint=excluded.fingerprint, outputs=excluded.outputs,
		   finished_at=excluded.finished_at, duration_ms=excluded.duration_ms`,
		r.Task, r.Fingerprint, string(outputs), r.FinishedAt.UTC().Format(time.RFC3339Nano), r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("write history of %s: %w", r.Task, err)
	}
	return nil
}

// Forget drops the record of task.
func (s *Store) Forget(ctx context.Context, task string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE task = ?`, task); err != nil {
		return fmt.Errorf("forget %s: %w", task, err)
	}
	return nil
}

// Records returns every record ordered by task name.
func (s *Store) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task FROM tasks ORDER BY task`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	var tasks []string
	for rows.Next() {
		var task string
		if err := rows.Scan(&task); err != nil {
			_ = rows.Close()
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(tasks))
	for _, task := range tasks {
		r, ok, err := s.Get(ctx, task)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// UpToDate reports whether task last ran with fingerprint and all of its
// recorded outputs still exist.
func (s *Store) UpToDate(ctx context.Context, task, fingerprint string) (bool, error) {
	r, ok, err := s.Get(ctx, task)
	if err != nil || !ok || r.Fingerprint != fingerprint {
		return false, err
	}
	for _, out := range r.Outputs {
		if _, err := os.Stat(out); errors.Is(err, fs.ErrNotExist) {
			return false, nil
		} else if err != nil {
			return false, err
		}
	}
	return true, nil
}
