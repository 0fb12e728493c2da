package timelog

import (
	"fmt"
	"time"
)

// Record represents a single work interval. A nil StoppedAt means the
// timer is still running.
type Record struct {
	ID        int64
	StartedAt time.Time
	StoppedAt *time.Time
}

// Running reports whether the record is still open.
func (r Record) Running() bool {
	return r.StoppedAt == nil
}

// End returns the effective end of the interval: the stop time for a
// closed record, now for a running one.
func (r Record) End(now time.Time) time.Time {
	if r.StoppedAt != nil {
		return *r.StoppedAt
	}
	return now
}

// Duration computes (end or now) - start, truncated to whole seconds.
// Status, push and the watch view all go through here so the commands
// can never disagree about how long a timer ran.
func (r Record) Duration(now time.Time) time.Duration {
	return r.End(now).Sub(r.StartedAt).Truncate(time.Second)
}

// Total sums the durations of all records. Running records contribute
// their elapsed time up to now.
func Total(records []Record, now time.Time) time.Duration {
	var total time.Duration
	for _, r := range records {
		total += r.Duration(now)
	}
	return total
}

// FormatDuration renders a duration as H:MM:SS.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
