package engine

import (
	"time"

	"github.com/aweisser/plog/internal/timelog"
)

// Store is the persistence the engine drives. Satisfied by *store.Store;
// tests swap in an in-memory implementation.
type Store interface {
	Load() ([]timelog.Record, error)
	Save([]timelog.Record) error
	Clear() error
}

// Engine is the start/stop/reset/status state machine over a Store. The
// store is either Stopped (no records, or every record closed) or
// Running (the last record is still open).
type Engine struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Start begins a new timer. If one is already running nothing changes
// and started is false.
func (e *Engine) Start() (started bool, err error) {
	records, err := e.store.Load()
	if err != nil {
		return false, err
	}
	if running(records) {
		return false, nil
	}
	records = append(records, timelog.Record{StartedAt: e.now()})
	if err := e.store.Save(records); err != nil {
		return false, err
	}
	return true, nil
}

// Stop closes the running timer. If none is running nothing changes and
// stopped is false.
func (e *Engine) Stop() (stopped bool, err error) {
	records, err := e.store.Load()
	if err != nil {
		return false, err
	}
	if !running(records) {
		return false, nil
	}
	now := e.now()
	records[len(records)-1].StoppedAt = &now
	if err := e.store.Save(records); err != nil {
		return false, err
	}
	return true, nil
}

// Reset discards all timer state unconditionally.
func (e *Engine) Reset() error {
	return e.store.Clear()
}

// Entry is one record with its computed duration.
type Entry struct {
	Record   timelog.Record
	Duration time.Duration
	Running  bool
}

// Report holds the entries a status call selected and the sum of their
// durations.
type Report struct {
	Entries []Entry
	Total   time.Duration
}

// Status reports the last record, or every record when all is set.
// Running records contribute their elapsed time up to now.
func (e *Engine) Status(all bool) (Report, error) {
	records, err := e.store.Load()
	if err != nil {
		return Report{}, err
	}
	if !all && len(records) > 1 {
		records = records[len(records)-1:]
	}

	now := e.now()
	var report Report
	for _, r := range records {
		d := r.Duration(now)
		report.Entries = append(report.Entries, Entry{Record: r, Duration: d, Running: r.Running()})
		report.Total += d
	}
	return report, nil
}

func running(records []timelog.Record) bool {
	return len(records) > 0 && records[len(records)-1].Running()
}
