package yalealarm

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig configures exponential-backoff retries of network-level
// failures. Only transport errors are retried; responses with error
// statuses go through the auth-refresh path instead.
type RetryConfig struct {
	// MaxTries is the total number of attempts, including the first
	// (default: 5).
	MaxTries uint64
	// InitialInterval is the first backoff wait (default: 500ms).
	InitialInterval time.Duration
	// MaxElapsedTime caps the total time spent retrying (default: 30s).
	MaxElapsedTime time.Duration
}

// DefaultRetryConfig returns the retry defaults used by NewClient.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxTries:        5,
		InitialInterval: 500 * time.Millisecond,
		MaxElapsedTime:  30 * time.Second,
	}
}

// backOff builds the backoff policy for one logical request.
func (rc *RetryConfig) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if rc.InitialInterval > 0 {
		b.InitialInterval = rc.InitialInterval
	}
	b.MaxElapsedTime = rc.MaxElapsedTime

	if rc.MaxTries > 0 {
		return backoff.WithMaxRetries(b, rc.MaxTries-1)
	}
	return b
}
