// Package engine implements the concurrent fetch orchestration core: chunked
// scheduling, bounded concurrency, retry with backoff, request caching, and
// deterministic reassembly of results in submission order.
package engine

import (
	"context"
	"fmt"
	"time"
)

// TargetKind distinguishes listing pages from per-item detail pages.
type TargetKind string

// Target kinds accepted by the engine.
const (
	KindListing TargetKind = "listing"
	KindDetail  TargetKind = "detail"
)

// FetchTarget is one unit of fetch work. Immutable once created.
type FetchTarget struct {
	Key      string
	Kind     TargetKind
	Position int
}

// FailureKind classifies how a fetch ended when it did not succeed.
type FailureKind string

// Failure classifications. Transient, rate-limited and server failures are
// retryable; client, exhausted and canceled failures are terminal.
const (
	FailureNone      FailureKind = ""
	FailureTransient FailureKind = "transient_network"
	FailureRateLimit FailureKind = "rate_limited"
	FailureServer    FailureKind = "server_error"
	FailureClient    FailureKind = "client_error"
	FailureExhausted FailureKind = "exhausted_retries"
	FailureCanceled  FailureKind = "canceled"
)

// Retryable reports whether the failure class may be retried.
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureTransient, FailureRateLimit, FailureServer:
		return true
	default:
		return false
	}
}

// Terminal reports whether the failure ends the target's fetch for good.
func (k FailureKind) Terminal() bool {
	return k != FailureNone && !k.Retryable()
}

// FetchResult is the outcome of resolving one target. It is owned by the
// worker that produced it until handed back to the orchestrator.
type FetchResult struct {
	Key        string
	Kind       TargetKind
	Position   int
	StatusCode int
	Body       []byte
	FetchedAt  time.Time
	Attempts   int
	CacheHit   bool
	Failure    FailureKind
	Err        error
}

// OK reports whether the target resolved with a payload.
func (r FetchResult) OK() bool {
	return r.Failure == FailureNone
}

// RankedRecord is one entry of the final dense-ranked output set.
type RankedRecord struct {
	Rank   int
	Key    string
	Kind   TargetKind
	Failed bool
	Result FetchResult
}

// Response is what a Fetcher returns for a single successful attempt.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher performs one network fetch for a target. Implementations must
// honor the context deadline; non-2xx statuses are reported as *HTTPError.
type Fetcher interface {
	Fetch(ctx context.Context, target FetchTarget) (Response, error)
}

// HTTPError carries the status code of a non-2xx response so the retry
// policy can classify it.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d for %s", e.StatusCode, e.URL)
}
