package models

import (
	"time"

	"github.com/google/uuid"
)

// RunResult summarises one collector run.
type RunResult struct {
	RunID      uuid.UUID
	Collector  string
	StartedAt  time.Time
	FinishedAt time.Time
	Collected  int
	Written    int
	// StartRow is the first sheet row of the written block, 0 when nothing was written.
	StartRow int
	// Err is the fatal error that aborted the run.
	Err error
	// WriteErr is a sink write failure. The run still counts as finished.
	WriteErr error
}

// Duration is the wall time of the run.
func (r RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
