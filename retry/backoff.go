package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backoff describes a capped exponential wait: Initial, then Initial*Multiplier, and so
// on up to Max. A Multiplier below 1 means no growth; Max of 0 means uncapped.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// Exponential builds the schedule without jitter. Once maxElapsed has passed since
// the schedule was created or Reset, NextBackOff returns backoff.Stop; 0 never stops.
func (b Backoff) Exponential(maxElapsed time.Duration) *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.Initial
	eb.RandomizationFactor = 0
	eb.Multiplier = max(b.Multiplier, 1)
	eb.MaxInterval = b.Max
	if eb.MaxInterval <= 0 {
		eb.MaxInterval = time.Duration(math.MaxInt64)
	}
	eb.MaxElapsedTime = maxElapsed
	eb.Reset()
	return eb
}
