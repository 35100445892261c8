package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-harvest/models"
	"forum-harvest/services"
)

type recordingRunner struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, name string) (models.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	return models.RunResult{Collector: name}, r.err
}

func TestNewRegistersNonEmptySpecs(t *testing.T) {
	s, err := New(context.Background(), &recordingRunner{}, map[string]string{
		"render": "0 */6 * * *",
		"poll":   "@daily",
		"other":  "",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"poll", "render"}, s.Names())
	assert.Len(t, s.cron.Entries(), 2)
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New(context.Background(), &recordingRunner{}, map[string]string{"poll": "every tuesday"})
	assert.ErrorContains(t, err, "poll")
}

func TestRunNowRunsEachCollectorInOrder(t *testing.T) {
	runner := &recordingRunner{}
	s, err := New(context.Background(), runner, map[string]string{"render": "@hourly", "poll": "@hourly"})
	require.NoError(t, err)

	s.RunNow()
	assert.Equal(t, []string{"poll", "render"}, runner.calls)
}

func TestJobToleratesErrors(t *testing.T) {
	for _, runErr := range []error{services.ErrRunInProgress, errors.New("boom")} {
		runner := &recordingRunner{err: runErr}
		s, err := New(context.Background(), runner, map[string]string{"poll": "@hourly"})
		require.NoError(t, err)

		assert.NotPanics(t, s.job("poll"))
		assert.Equal(t, []string{"poll"}, runner.calls)
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(context.Background(), &recordingRunner{}, map[string]string{"poll": "@yearly"})
	require.NoError(t, err)
	s.Start()
	s.Stop()
}

// blockingRunner holds a run open until its context ends.
type blockingRunner struct {
	once    sync.Once
	started chan struct{}
	ended   chan error
}

func (r *blockingRunner) Run(ctx context.Context, name string) (models.RunResult, error) {
	r.once.Do(func() { close(r.started) })
	<-ctx.Done()
	r.ended <- ctx.Err()
	return models.RunResult{Collector: name}, ctx.Err()
}

func TestStopCancelsRunningJob(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}), ended: make(chan error, 4)}
	s, err := New(context.Background(), runner, map[string]string{"poll": "@every 1s"})
	require.NoError(t, err)
	s.Start()

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled job never started")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a job was blocked")
	}
	assert.ErrorIs(t, <-runner.ended, context.Canceled)
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]any{"entry", 1, "next", "soon", "dangling"})
	assert.Equal(t, 1, fields["entry"])
	assert.Equal(t, "soon", fields["next"])
	assert.Len(t, fields, 2)
}
