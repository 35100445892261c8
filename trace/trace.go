package trace

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyTrace ctxKey = "trace_info"

// Info identifies one collector run.
// spanSeq numbers the outbound calls made inside the run: 1, 2, 3, ...
type Info struct {
	RunID     uuid.UUID
	Collector string
	spanSeq   int64
}

// WithRun stores a run identity in ctx.
func WithRun(ctx context.Context, runID uuid.UUID, collector string) context.Context {
	return context.WithValue(ctx, ctxKeyTrace, &Info{RunID: runID, Collector: collector})
}

func infoFromContext(ctx context.Context) *Info {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(ctxKeyTrace).(*Info)
	return v
}

// RunIDFromContext returns the run id, or "" outside a run.
func RunIDFromContext(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return ""
	}
	return info.RunID.String()
}

// CollectorFromContext returns the collector name, or "" outside a run.
func CollectorFromContext(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return ""
	}
	return info.Collector
}

// NextSpanID increments the run's span sequence and returns (runID, spanID).
// Outside a run it returns a fresh id and span "1".
func NextSpanID(ctx context.Context) (string, string) {
	info := infoFromContext(ctx)
	if info == nil {
		return uuid.NewString(), "1"
	}
	val := atomic.AddInt64(&info.spanSeq, 1)
	return info.RunID.String(), strconv.FormatInt(val, 10)
}
