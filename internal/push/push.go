package push

import (
	"context"
	"errors"
	"time"

	"github.com/aweisser/plog/internal/timelog"
)

// ErrNoTimerData means push was asked to derive hours from the timer but
// no records exist and no manual hours were given.
var ErrNoTimerData = errors.New("no timer data to push")

// Request is the attendance submitted to the remote timekeeping API.
type Request struct {
	Date          string  `json:"date"`
	DurationHours float64 `json:"duration_hours"`
	Comment       string  `json:"comment"`
}

// Submitter sends an attendance to the remote system.
type Submitter interface {
	Submit(ctx context.Context, req Request) error
}

// Store is the read side of the timer store push needs.
type Store interface {
	Load() ([]timelog.Record, error)
}

// Service builds attendance requests and hands them to a Submitter.
type Service struct {
	store     Store
	submitter Submitter
	now       func() time.Time
}

func NewService(store Store, submitter Submitter) *Service {
	return &Service{store: store, submitter: submitter, now: time.Now}
}

// Push submits hours to the remote system and returns the request it
// sent. With manualHours set the timer state is bypassed entirely and
// the date is today; otherwise the hours come from the last record,
// snapshotting a still-running timer at now, and the date is the
// record's start date.
//
// Push never mutates the store. Stopping or resetting stays an explicit
// separate command, and a failed submission can simply be retried.
func (s *Service) Push(ctx context.Context, description string, manualHours *float64) (Request, error) {
	now := s.now()

	var req Request
	if manualHours != nil {
		if *manualHours < 0 {
			return Request{}, errors.New("manual hours must not be negative")
		}
		req = Request{
			Date:          now.Format(time.DateOnly),
			DurationHours: *manualHours,
			Comment:       description,
		}
	} else {
		records, err := s.store.Load()
		if err != nil {
			return Request{}, err
		}
		if len(records) == 0 {
			return Request{}, ErrNoTimerData
		}
		last := records[len(records)-1]
		req = Request{
			Date:          last.StartedAt.Format(time.DateOnly),
			DurationHours: last.Duration(now).Hours(),
			Comment:       description,
		}
	}

	if err := s.submitter.Submit(ctx, req); err != nil {
		return Request{}, err
	}
	return req, nil
}
