package dto

import (
	"time"

	"forum-harvest/models"
)

// RunDTO exposes a finished or failed collector run to API consumers.
// Errors are flattened to strings; an empty string means no error.
type RunDTO struct {
	RunID      string    `json:"run_id"`
	Collector  string    `json:"collector"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
	Collected  int       `json:"collected"`
	Written    int       `json:"written"`
	StartRow   int       `json:"start_row,omitempty"`
	Error      string    `json:"error,omitempty"`
	WriteError string    `json:"write_error,omitempty"`
}

func NewRunDTO(r models.RunResult) RunDTO {
	d := RunDTO{
		RunID:      r.RunID.String(),
		Collector:  r.Collector,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMS: r.Duration().Milliseconds(),
		Collected:  r.Collected,
		Written:    r.Written,
		StartRow:   r.StartRow,
	}
	if r.Err != nil {
		d.Error = r.Err.Error()
	}
	if r.WriteErr != nil {
		d.WriteError = r.WriteErr.Error()
	}
	return d
}

// RunsResponseDTO lists the last result of every collector that has run.
type RunsResponseDTO struct {
	Collectors []string `json:"collectors"`
	Running    string   `json:"running,omitempty"`
	Runs       []RunDTO `json:"runs"`
}
