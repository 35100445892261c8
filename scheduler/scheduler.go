package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/robfig/cron/v3"

	"forum-harvest/logger"
	"forum-harvest/models"
	"forum-harvest/services"
)

// Runner executes one named collector run.
type Runner interface {
	Run(ctx context.Context, name string) (models.RunResult, error)
}

// Scheduler fires collector runs on cron specs.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	ctx    context.Context
	cancel context.CancelFunc
	names  []string
}

// New registers one job per non-empty spec, keyed by collector name. Jobs run
// under a child of ctx that Stop cancels.
func New(ctx context.Context, runner Runner, specs map[string]string) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger{}), cron.WithChain(cron.Recover(cronLogger{}))),
		runner: runner,
		ctx:    ctx,
		cancel: cancel,
	}
	for name, spec := range specs {
		if spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(spec, s.job(name)); err != nil {
			cancel()
			return nil, fmt.Errorf("schedule %s %q: %w", name, spec, err)
		}
		s.names = append(s.names, name)
	}
	slices.Sort(s.names)
	return s, nil
}

// Names returns the scheduled collectors in sorted order.
func (s *Scheduler) Names() []string { return s.names }

func (s *Scheduler) job(name string) func() {
	return func() {
		logger.Log.Infof("scheduled run of %s collector", name)
		res, err := s.runner.Run(s.ctx, name)
		switch {
		case errors.Is(err, services.ErrRunInProgress):
			logger.Log.Warnf("skipping scheduled %s run: %v", name, err)
		case err != nil:
			logger.Log.Errorf("scheduled %s run failed: %v", name, err)
		default:
			logger.Log.Infof("scheduled %s run wrote %d records", name, res.Written)
		}
	}
}

// RunNow runs every scheduled collector once, one after another.
func (s *Scheduler) RunNow() {
	for _, name := range s.names {
		s.job(name)()
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Infof("scheduler started with %d jobs", len(s.names))
}

// Stop cancels in-flight jobs, stops firing new ones and waits for a running one
// to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	logger.Log.Info("scheduler stopped")
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.DebugWithFields("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	logger.ErrorWithFields("cron: "+msg, fields)
}

func kvFields(kv []any) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
