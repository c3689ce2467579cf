package engine

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"net"
	"syscall"
	"time"
)

// RetryDecision is the policy's answer for one failed attempt.
type RetryDecision struct {
	Retry bool
	Delay time.Duration
}

// RetryPolicy classifies failures and computes exponential backoff delays.
type RetryPolicy struct {
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// NewRetryPolicy builds a policy, filling zero values with defaults.
func NewRetryPolicy(maxRetries int, base, maxDelay time.Duration) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	return RetryPolicy{
		MaxRetries:  maxRetries,
		BackoffBase: base,
		BackoffMax:  maxDelay,
	}
}

// Classify maps a fetch error to a failure class.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 429:
			return FailureRateLimit
		case httpErr.StatusCode >= 500:
			return FailureServer
		case httpErr.StatusCode >= 400:
			return FailureClient
		}
	}
	if errors.Is(err, context.Canceled) {
		return FailureCanceled
	}
	// An attempt deadline reads as DeadlineExceeded; treat it as a timeout.
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTransient
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return FailureTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTransient
	}
	return FailureTransient
}

// Decide returns whether the attempt (0-based index) should be retried and,
// if so, how long to wait first.
func (p RetryPolicy) Decide(kind FailureKind, attempt int) RetryDecision {
	if !kind.Retryable() || attempt >= p.MaxRetries {
		return RetryDecision{}
	}
	return RetryDecision{Retry: true, Delay: p.Backoff(attempt)}
}

// Backoff computes base * 2^attempt capped at BackoffMax, plus additive
// jitter of up to 20% so workers do not retry in lockstep.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.BackoffBase) * math.Pow(2, float64(attempt))
	if delay > float64(p.BackoffMax) {
		delay = float64(p.BackoffMax)
	}
	return time.Duration(delay) + randomJitter(time.Duration(delay)/5)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
