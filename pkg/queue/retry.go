package queue

import (
	"errors"
	"math"
	"time"
)

type transientError struct {
	err error
}

func (t *transientError) Error() string {
	return t.err.Error()
}

func (t *transientError) Unwrap() error {
	return t.err
}

// Transient marks an error as temporary; the job may be retried if a RetryPolicy is set.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient returns true if the error (or something it wraps) was marked Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Backoff computes the delay before a retry attempt.
type Backoff interface {
	// Delay returns how long to wait before retry attempt n (1 indexed).
	Delay(attempt int) time.Duration
}

// Constant always waits the same interval.
type Constant struct {
	Interval time.Duration
}

func (c *Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// Exponential doubles the delay each attempt.
// Delay = min(Initial * 2^(attempt-1), Max).
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

func (e *Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Max > 0 && d > float64(e.Max) {
		return e.Max
	}
	return time.Duration(d)
}

// RetryPolicy decides if & when a job that failed transiently runs again.
type RetryPolicy struct {
	// MaxRetries is the most times a job is requeued. Zero disables retries.
	MaxRetries int
	Backoff    Backoff
}

// NewRetryPolicy returns an exponential policy, or nil if maxRetries is not positive.
func NewRetryPolicy(maxRetries int, base, max time.Duration) *RetryPolicy {
	if maxRetries <= 0 {
		return nil
	}
	return &RetryPolicy{
		MaxRetries: maxRetries,
		Backoff:    &Exponential{Initial: base, Max: max},
	}
}

// Next returns the delay before the given retry, or false if the job has used up its retries.
func (r *RetryPolicy) Next(attempt int) (time.Duration, bool) {
	if r == nil || attempt > r.MaxRetries {
		return 0, false
	}
	if r.Backoff == nil {
		return 0, true
	}
	return r.Backoff.Delay(attempt), true
}
