package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotNetwork = errors.New("permission denied")

func dialError() error {
	return fmt.Errorf("open workbook: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
}

func TestDoRetriesConnectionErrorsThenGivesUp(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{Attempts: 3, Delay: time.Millisecond}, "open", func(context.Context) (string, error) {
		calls++
		return "", dialError()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, calls)
}

func TestDoSucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), Policy{Attempts: 3, Delay: time.Millisecond}, "open", func(context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, dialError()
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestDoDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{Attempts: 3, Delay: time.Millisecond}, "open", func(context.Context) (int, error) {
		calls++
		return 0, errNotNetwork
	})

	assert.ErrorIs(t, err, errNotNetwork)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 1, calls)
}

func TestDoStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Policy{Attempts: 5, Delay: time.Hour}, "open", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, dialError()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, IsConnectionError(dialError()))
	assert.True(t, IsConnectionError(&net.DNSError{Name: "sheets.googleapis.com"}))
	assert.False(t, IsConnectionError(nil))
	assert.False(t, IsConnectionError(errNotNetwork))
	assert.False(t, IsConnectionError(context.DeadlineExceeded))
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func nextN(b backoff.BackOff, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = b.NextBackOff()
	}
	return out
}

func TestBackoffExponentialSchedule(t *testing.T) {
	tests := []struct {
		name string
		b    Backoff
		want []time.Duration
	}{
		{
			name: "doubles up to the cap",
			b:    Backoff{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2},
			want: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second},
		},
		{
			name: "no multiplier means constant",
			b:    Backoff{Initial: 600 * time.Second},
			want: []time.Duration{600 * time.Second, 600 * time.Second, 600 * time.Second},
		},
		{
			name: "uncapped growth",
			b:    Backoff{Initial: time.Second, Multiplier: 3},
			want: []time.Duration{time.Second, 3 * time.Second, 9 * time.Second, 27 * time.Second},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nextN(tc.b.Exponential(0), len(tc.want)))
		})
	}
}

func TestBackoffExponentialStopsAtBudget(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.January, 15, 6, 0, 0, 0, time.UTC)}
	eb := Backoff{Initial: 30 * time.Second, Max: 10 * time.Minute, Multiplier: 2}.Exponential(time.Hour)
	eb.Clock = clock
	eb.Reset()

	assert.Equal(t, 30*time.Second, eb.NextBackOff())
	clock.now = clock.now.Add(50 * time.Minute)
	assert.Equal(t, time.Minute, eb.NextBackOff())
	clock.now = clock.now.Add(9 * time.Minute)
	assert.Equal(t, backoff.Stop, eb.NextBackOff(), "59m elapsed plus a 2m wait exceeds the hour")
}
