package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/agentflow/core"
)

// Policy describes a bounded exponential backoff contract for transient
// failures: how many attempts are allowed, how long the first backoff lasts,
// how fast it grows and which failure classes are worth another attempt.
// Policies are immutable after construction and safely shared by reference.
type Policy struct {
	MaxAttempts  int                 // Total attempts including the first (>= 1)
	InitialDelay time.Duration       // Backoff before the second attempt
	Base         float64             // Exponential multiplier between backoffs
	Retryable    []core.FailureClass // Failure classes allowed another attempt
}

// DefaultRetryable is the transient failure set retried by default.
var DefaultRetryable = []core.FailureClass{
	core.FailureRateLimited,
	core.FailureServerError,
	core.FailureServiceUnavailable,
	core.FailureGatewayTimeout,
}

// DefaultPolicy is the backoff contract applied to external calls unless an
// agent configures its own: five attempts spaced 1s, 7s, 49s and 343s apart.
var DefaultPolicy = &Policy{
	MaxAttempts:  5,
	InitialDelay: time.Second,
	Base:         7,
	Retryable:    DefaultRetryable,
}

// Delay returns the backoff preceding the retry of the given attempt,
// counted from 1: InitialDelay * Base^(attempt-1).
func (p *Policy) Delay(attempt int) time.Duration {
	return time.Duration(float64(p.InitialDelay) * math.Pow(p.Base, float64(attempt-1)))
}

// ShouldRetry reports whether the error's classification is in the policy's
// retryable set. Unclassified errors are never retried.
func (p *Policy) ShouldRetry(err error) bool {
	class, ok := core.FailureClassOf(err)
	if !ok {
		return false
	}
	for _, c := range p.Retryable {
		if c == class {
			return true
		}
	}
	return false
}

// Do executes fn under the policy. The first success returns nil. A failure
// outside the retryable set propagates immediately after the attempt that
// produced it. When every allowed attempt fails the last cause is wrapped in
// *ExhaustedError. The backoff sleep aborts on context cancellation.
//
// A nil policy falls back to DefaultPolicy.
func (p *Policy) Do(ctx context.Context, fn func() error) error {
	if p == nil {
		p = DefaultPolicy
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(p.Delay(attempt - 1)):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !p.ShouldRetry(lastErr) {
			return lastErr
		}
	}

	return &ExhaustedError{Attempts: p.MaxAttempts, Err: lastErr}
}

// ExhaustedError reports that every allowed attempt of a retryable call
// failed. It wraps the last underlying failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last underlying failure.
func (e *ExhaustedError) Unwrap() error { return e.Err }
