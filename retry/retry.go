package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"forum-harvest/logger"
)

// ErrMaxRetriesExceeded is returned once every attempt failed with a connection error.
var ErrMaxRetriesExceeded = errors.New("retry: max retries exceeded")

// Policy is a fixed-delay retry policy for connection-level failures.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy retries three times, five seconds apart.
var DefaultPolicy = Policy{Attempts: 3, Delay: 5 * time.Second}

// Do calls fn until it succeeds, fails with a non-connection error, or the attempts run out.
// Connection errors are retried Delay apart; anything else is returned as is.
func Do[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(attempts-1)), ctx)

	attempt := 0
	v, err := backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err != nil && !IsConnectionError(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, b, func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "connection error, retrying", logger.Fields{
			"op":      op,
			"attempt": attempt,
			"delay":   next.String(),
			"error":   err.Error(),
		})
	})
	if err == nil {
		return v, nil
	}
	var zero T
	if IsConnectionError(err) {
		return zero, fmt.Errorf("%w: %s: %w", ErrMaxRetriesExceeded, op, err)
	}
	return zero, err
}

// IsConnectionError reports network-layer failures: dial/read errors, DNS failures,
// refused or reset connections, and connections closed mid-response.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}

// Sleep waits for d or until ctx ends.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
