package generation

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the status polling loop.
//
// The wait after attempt i (0-based) is BaseDelay + i*Step, so delays grow
// linearly rather than exponentially.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Step        time.Duration
}

// DefaultRetryPolicy polls up to 20 times, waiting 1s, 1.5s, 2s, ...
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 20,
		BaseDelay:   time.Second,
		Step:        500 * time.Millisecond,
	}
}

// Delay returns the wait after the given 0-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return p.BaseDelay + time.Duration(attempt)*p.Step
}

// Total returns the longest time the waits of one poll loop can add up to.
func (p RetryPolicy) Total() time.Duration {
	var d time.Duration
	for i := 0; i < p.MaxAttempts-1; i++ {
		d += p.Delay(i)
	}
	return d
}

// BackOff returns a fresh backoff.BackOff that allows exactly MaxAttempts
// operations. Policies with MaxAttempts below 1 still run once.
func (p RetryPolicy) BackOff() backoff.BackOff {
	return &linearBackOff{policy: p}
}

type linearBackOff struct {
	policy  RetryPolicy
	attempt int
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

func (b *linearBackOff) NextBackOff() time.Duration {
	i := b.attempt
	b.attempt++
	if b.attempt >= b.policy.MaxAttempts {
		return backoff.Stop
	}
	return b.policy.Delay(i)
}
