package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aweisser/plog/internal/timelog"

	_ "modernc.org/sqlite"
)

// CorruptStateError reports a state file that cannot be trusted: rows
// that fail to parse, or a record sequence that violates the
// single-running-timer invariant. The only remedy is `plog reset`.
type CorruptStateError struct {
	Reason string
	Err    error
}

func (e *CorruptStateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt timer state: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt timer state: %s", e.Reason)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err is (or wraps) a CorruptStateError.
func IsCorrupt(err error) bool {
	var ce *CorruptStateError
	return errors.As(err, &ce)
}

// Store persists the ordered sequence of timer records in a single
// SQLite file. Row order (autoincrement id) is insertion order, which is
// chronological order. A NULL stopped_at marks the running timer.
type Store struct {
	db *sql.DB
}

// Open opens or creates the state file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS timers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		stopped_at TEXT
	)
	`
	_, err := s.db.Exec(query)
	return err
}

// Load returns all timer records in chronological order. An empty slice
// means no timer has been started yet.
func (s *Store) Load() ([]timelog.Record, error) {
	rows, err := s.db.Query("SELECT id, started_at, stopped_at FROM timers ORDER BY id")
	if err != nil {
		return nil, &CorruptStateError{Reason: "cannot read timer rows", Err: err}
	}
	defer rows.Close()

	var records []timelog.Record
	for rows.Next() {
		var r timelog.Record
		var startedAt string
		var stoppedAt sql.NullString
		if err := rows.Scan(&r.ID, &startedAt, &stoppedAt); err != nil {
			return nil, &CorruptStateError{Reason: "cannot scan timer row", Err: err}
		}
		r.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, &CorruptStateError{Reason: fmt.Sprintf("bad start time %q", startedAt), Err: err}
		}
		if stoppedAt.Valid {
			t, err := time.Parse(time.RFC3339, stoppedAt.String)
			if err != nil {
				return nil, &CorruptStateError{Reason: fmt.Sprintf("bad stop time %q", stoppedAt.String), Err: err}
			}
			r.StoppedAt = &t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &CorruptStateError{Reason: "cannot read timer rows", Err: err}
	}

	if err := validate(records); err != nil {
		return nil, err
	}
	return records, nil
}

// validate enforces the invariant that at most one record is running and
// that a running record is the most recent one. Anything else means two
// invocations raced on the state file; no record is authoritative then,
// so the whole state is rejected instead of guessing.
func validate(records []timelog.Record) error {
	running := 0
	for _, r := range records {
		if r.Running() {
			running++
		}
	}
	if running > 1 {
		return &CorruptStateError{Reason: "more than one running timer"}
	}
	if running == 1 && !records[len(records)-1].Running() {
		return &CorruptStateError{Reason: "running timer is not the most recent record"}
	}
	return nil
}

// Save overwrites the persisted state with records, preserving their
// order.
func (s *Store) Save(records []timelog.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM timers"); err != nil {
		return err
	}
	for _, r := range records {
		var stoppedAt sql.NullString
		if r.StoppedAt != nil {
			stoppedAt = sql.NullString{String: r.StoppedAt.Format(time.RFC3339), Valid: true}
		}
		if _, err := tx.Exec(
			"INSERT INTO timers (started_at, stopped_at) VALUES (?, ?)",
			r.StartedAt.Format(time.RFC3339), stoppedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Clear removes all records. Clearing an already empty store is not an
// error.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM timers")
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
