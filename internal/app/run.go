package app

import "time"

// Run identifies one CLI invocation in the log. Every record written during
// the run carries its ID.
type Run struct {
	ID      string
	Command string
	Started time.Time
	Status  string // "success" or "error"
}

// NewRun creates a run for command starting at now.
func NewRun(command string, now time.Time) *Run {
	now = now.UTC()
	return &Run{
		ID:      now.Format("20060102T150405Z"),
		Command: command,
		Started: now,
		Status:  "success",
	}
}

// Fail marks the run as failed if err is non-nil.
func (r *Run) Fail(err error) {
	if err != nil {
		r.Status = "error"
	}
}

// Elapsed returns the time since the run started.
func (r *Run) Elapsed(now time.Time) time.Duration {
	return now.Sub(r.Started)
}
