package collector

import (
	"context"
	"time"

	"github.com/google/uuid"

	"forum-harvest/logger"
	"forum-harvest/models"
	"forum-harvest/sink"
	"forum-harvest/trace"
)

// Collector gathers posts from one source and appends them to the sink in one batch.
type Collector interface {
	Name() string
	// Run performs one collection. Fatal failures are returned; a failed sink write is
	// logged and reported in RunResult.WriteErr only.
	Run(ctx context.Context) (models.RunResult, error)
}

// Collector names, as used by the scheduler and the ops API.
const (
	RenderCollectorName = "render"
	PollCollectorName   = "poll"
)

// Target names the destination sheet.
type Target struct {
	Workbook string
	Sheet    string
}

// beginRun stamps ctx with a fresh run id and returns the result being filled in.
func beginRun(ctx context.Context, name string, now time.Time) (context.Context, models.RunResult) {
	id := uuid.New()
	ctx = trace.WithRun(ctx, id, name)
	logger.InfoCtx(ctx, "collection started", nil)
	return ctx, models.RunResult{RunID: id, Collector: name, StartedAt: now}
}

// writeBatch appends records and records the outcome. Write errors are swallowed.
func writeBatch(ctx context.Context, s *sink.Sink, sheet sink.Sheet, records []models.PostRecord, res *models.RunResult) {
	res.Collected = len(records)
	if len(records) == 0 {
		logger.InfoCtx(ctx, "no new records to store", nil)
		return
	}
	startRow, err := s.AppendRecords(ctx, sheet, records)
	if err != nil {
		res.WriteErr = err
		logger.ErrorCtx(ctx, "error storing data in sheet", logger.Fields{"error": err.Error()})
		return
	}
	res.Written = len(records)
	res.StartRow = startRow
}

// finishRun closes out the result and logs it.
func finishRun(ctx context.Context, res *models.RunResult, err error, now time.Time) {
	res.FinishedAt = now
	res.Err = err
	fields := logger.Fields{
		"collected": res.Collected,
		"written":   res.Written,
		"duration":  res.Duration().String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorCtx(ctx, "collection aborted", fields)
		return
	}
	logger.InfoCtx(ctx, "collection completed", fields)
}
