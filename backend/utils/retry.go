package utils

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryPolicy bounds the attempts made for an idempotent remote call.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  3,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  2 * time.Second,
	}
}

// ErrPermanent marks an error that must not be retried.
var ErrPermanent = errors.New("permanent failure")

// Backoff returns the full-jitter delay before the given 1-based attempt.
func (p RetryPolicy) Backoff(attempt int, rng *rand.Rand) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay << (attempt - 1)
	if delay <= 0 || delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if rng == nil || delay <= 0 {
		return delay
	}
	return time.Duration(rng.Int63n(int64(delay) + 1))
}

// Retry runs fn until it succeeds, returns an error wrapping ErrPermanent,
// the attempts are exhausted, or ctx is done.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err = fn(ctx)
		if err == nil || errors.Is(err, ErrPermanent) {
			return err
		}
		if attempt == p.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(p.Backoff(attempt, rng)):
		}
	}
	return err
}
