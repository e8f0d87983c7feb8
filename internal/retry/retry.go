package retry

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy handles retry logic with exponential backoff
type RetryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewRetryPolicy creates a new retry policy
func NewRetryPolicy(maxAttempts int, initialDelay time.Duration) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryPolicy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     30 * time.Second,
	}
}

// MaxAttempts returns the configured attempt count
func (r *RetryPolicy) MaxAttempts() int {
	return r.maxAttempts
}

// Execute runs fn until it succeeds, returns a permanent error, the attempts
// run out, or ctx is cancelled
func (r *RetryPolicy) Execute(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := r.initialDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if pe, ok := err.(*permanentError); ok {
			return pe.err
		}

		lastErr = err

		if attempt < r.maxAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * 1.5)
			if delay > r.maxDelay {
				delay = r.maxDelay
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", r.maxAttempts, lastErr)
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error that retrying cannot fix (e.g. a 404)
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
