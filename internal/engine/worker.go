package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/R41CY/movie-scraper/internal/cache"
	"github.com/R41CY/movie-scraper/internal/clock"
)

// Worker resolves one target at a time: cache lookup, network fetch with a
// per-attempt timeout, and a bounded retry state machine. A retry delay
// suspends only the worker that scheduled it.
type Worker struct {
	fetcher Fetcher
	cache   cache.Cache
	policy  RetryPolicy
	metrics *Metrics
	clock   clock.Clock
	timeout time.Duration
	logger  *zap.Logger
}

// NewWorker constructs a Worker.
func NewWorker(
	fetcher Fetcher,
	c cache.Cache,
	policy RetryPolicy,
	metrics *Metrics,
	clk clock.Clock,
	timeout time.Duration,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Worker{
		fetcher: fetcher,
		cache:   c,
		policy:  policy,
		metrics: metrics,
		clock:   clk,
		timeout: timeout,
		logger:  logger,
	}
}

// Resolve produces a FetchResult for the target. Transient failures are
// retried locally; only terminal outcomes surface. Resolve never returns a
// partial error: the result is either a payload or a typed failure.
func (w *Worker) Resolve(ctx context.Context, target FetchTarget) FetchResult {
	if payload, ok := w.cache.Get(ctx, target.Key); ok {
		w.metrics.RecordCacheHit()
		return FetchResult{
			Key:       target.Key,
			Kind:      target.Kind,
			Position:  target.Position,
			Body:      payload,
			FetchedAt: w.clock.Now(),
			CacheHit:  true,
		}
	}

	attempts := 0
	var lastErr error
	for {
		// Cancellation gates new attempts; the attempt in flight below is
		// allowed to run to its own deadline.
		if err := ctx.Err(); err != nil {
			w.metrics.RecordError(FailureCanceled)
			return w.failure(target, attempts, FailureCanceled, err)
		}

		attempts++
		start := w.clock.Now()
		resp, err := w.fetchOnce(ctx, target)
		w.metrics.RecordRequest(w.clock.Now().Sub(start))
		if err == nil {
			w.cache.Put(ctx, target.Key, resp.Body)
			return FetchResult{
				Key:        target.Key,
				Kind:       target.Kind,
				Position:   target.Position,
				StatusCode: resp.StatusCode,
				Body:       resp.Body,
				FetchedAt:  w.clock.Now(),
				Attempts:   attempts,
			}
		}
		lastErr = err

		kind := Classify(err)
		if kind.Terminal() {
			w.metrics.RecordError(kind)
			return w.failure(target, attempts, kind, err)
		}

		decision := w.policy.Decide(kind, attempts-1)
		if !decision.Retry {
			w.metrics.RecordError(FailureExhausted)
			return w.failure(target, attempts, FailureExhausted, lastErr)
		}
		w.metrics.RecordRetry()
		w.logger.Debug("retrying fetch",
			zap.String("key", target.Key),
			zap.String("class", string(kind)),
			zap.Int("attempt", attempts),
			zap.Duration("delay", decision.Delay),
		)
		if !sleep(ctx, decision.Delay) {
			w.metrics.RecordError(FailureCanceled)
			return w.failure(target, attempts, FailureCanceled, ctx.Err())
		}
	}
}

// fetchOnce runs one attempt under its own deadline. The deadline context is
// detached from the run context so cancellation lets the current network
// call finish instead of tearing it down mid-flight.
func (w *Worker) fetchOnce(ctx context.Context, target FetchTarget) (Response, error) {
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()
	return w.fetcher.Fetch(attemptCtx, target)
}

func (w *Worker) failure(target FetchTarget, attempts int, kind FailureKind, err error) FetchResult {
	return FetchResult{
		Key:       target.Key,
		Kind:      target.Kind,
		Position:  target.Position,
		FetchedAt: w.clock.Now(),
		Attempts:  attempts,
		Failure:   kind,
		Err:       err,
	}
}

// sleep waits for d, returning false if the context ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
