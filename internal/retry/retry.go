package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried: how many attempts, how long
// to wait between them, and which errors are worth another try.
type Policy struct {
	MaxAttempts int
	// Backoff returns the delay before the next attempt. Attempt numbers
	// are 1-based.
	Backoff func(attempt int) time.Duration
	// Retryable decides whether an error justifies another attempt.
	// A nil predicate retries everything.
	Retryable func(err error) bool
	// Sleep is swapped out in tests. Defaults to time.Sleep.
	Sleep func(d time.Duration)
}

// Linear returns a backoff of base times the attempt number.
func Linear(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// Do runs fn until it succeeds, the attempt budget is exhausted, a
// non-retryable error occurs, or the context is cancelled. The last
// observed error is returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if p.Backoff != nil {
			sleep(p.Backoff(attempt))
		}
	}
	return err
}
