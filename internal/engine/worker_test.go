package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/R41CY/movie-scraper/internal/cache"
	"github.com/R41CY/movie-scraper/internal/clock"
)

// scriptedFetcher fails a fixed number of times before succeeding, counting
// every network attempt.
type scriptedFetcher struct {
	mu       sync.Mutex
	attempts int
	failWith func(attempt int) error
	body     []byte
	delay    time.Duration
}

func (f *scriptedFetcher) Fetch(ctx context.Context, target FetchTarget) (Response, error) {
	f.mu.Lock()
	f.attempts++
	attempt := f.attempts
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.failWith != nil {
		if err := f.failWith(attempt); err != nil {
			return Response{}, err
		}
	}
	body := f.body
	if body == nil {
		body = []byte("payload for " + target.Key)
	}
	return Response{StatusCode: 200, Body: body}, nil
}

func (f *scriptedFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func newTestWorker(f Fetcher, c cache.Cache, maxRetries int, base time.Duration) (*Worker, *Metrics) {
	m := NewMetrics()
	w := NewWorker(f, c, NewRetryPolicy(maxRetries, base, time.Second), m, clock.NewSystem(), time.Second, nil)
	return w, m
}

func TestWorker_ResolveSuccess(t *testing.T) {
	t.Parallel()
	fetcher := &scriptedFetcher{body: []byte("ok")}
	w, m := newTestWorker(fetcher, cache.NewMemory(time.Minute), 3, time.Millisecond)

	res := w.Resolve(context.Background(), FetchTarget{Key: "https://example.com/a", Kind: KindDetail})
	require.True(t, res.OK())
	require.Equal(t, 1, res.Attempts)
	require.Equal(t, []byte("ok"), res.Body)
	require.EqualValues(t, 1, m.Snapshot().Requests)
}

func TestWorker_CacheHitSkipsNetwork(t *testing.T) {
	t.Parallel()
	fetcher := &scriptedFetcher{}
	w, m := newTestWorker(fetcher, cache.NewMemory(100*time.Millisecond), 3, time.Millisecond)
	target := FetchTarget{Key: "https://example.com/cached", Kind: KindDetail}

	first := w.Resolve(context.Background(), target)
	require.True(t, first.OK())
	require.False(t, first.CacheHit)

	second := w.Resolve(context.Background(), target)
	require.True(t, second.OK())
	require.True(t, second.CacheHit)
	require.Equal(t, first.Body, second.Body)
	require.Equal(t, 1, fetcher.count())

	// Past the TTL the entry reads as absent and the network is hit again.
	time.Sleep(150 * time.Millisecond)
	third := w.Resolve(context.Background(), target)
	require.True(t, third.OK())
	require.False(t, third.CacheHit)
	require.Equal(t, 2, fetcher.count())

	snap := m.Snapshot()
	require.EqualValues(t, 2, snap.Requests)
	require.EqualValues(t, 1, snap.CacheHits)
}

func TestWorker_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()
	base := 10 * time.Millisecond
	fetcher := &scriptedFetcher{failWith: func(attempt int) error {
		if attempt <= 2 {
			return &HTTPError{StatusCode: 503, URL: "u"}
		}
		return nil
	}}
	w, m := newTestWorker(fetcher, cache.NewMemory(time.Minute), 3, base)

	start := time.Now()
	res := w.Resolve(context.Background(), FetchTarget{Key: "https://example.com/flaky", Kind: KindDetail})
	elapsed := time.Since(start)

	require.True(t, res.OK())
	require.Equal(t, 3, res.Attempts)
	// Two backoff waits: base + base*2 at minimum (jitter only adds).
	require.GreaterOrEqual(t, elapsed, base+2*base)
	require.EqualValues(t, 2, m.Snapshot().Retries)
}

func TestWorker_ClientErrorIsNeverRetried(t *testing.T) {
	t.Parallel()
	fetcher := &scriptedFetcher{failWith: func(int) error {
		return &HTTPError{StatusCode: 404, URL: "u"}
	}}
	w, m := newTestWorker(fetcher, cache.NewMemory(time.Minute), 5, time.Millisecond)

	res := w.Resolve(context.Background(), FetchTarget{Key: "https://example.com/missing", Kind: KindDetail})
	require.False(t, res.OK())
	require.Equal(t, FailureClient, res.Failure)
	require.Equal(t, 1, res.Attempts)
	require.Equal(t, 1, fetcher.count())
	require.EqualValues(t, 1, m.Snapshot().Errors[FailureClient])
}

func TestWorker_ExhaustsRetryBudget(t *testing.T) {
	t.Parallel()
	fetcher := &scriptedFetcher{failWith: func(int) error {
		return &HTTPError{StatusCode: 500, URL: "u"}
	}}
	w, m := newTestWorker(fetcher, cache.NewMemory(time.Minute), 3, time.Millisecond)

	res := w.Resolve(context.Background(), FetchTarget{Key: "https://example.com/down", Kind: KindDetail})
	require.False(t, res.OK())
	require.Equal(t, FailureExhausted, res.Failure)
	// Initial attempt plus three retries.
	require.Equal(t, 4, res.Attempts)
	require.Error(t, res.Err)

	snap := m.Snapshot()
	require.EqualValues(t, 3, snap.Retries)
	require.EqualValues(t, 1, snap.Errors[FailureExhausted])
}

func TestWorker_CancellationStopsRetries(t *testing.T) {
	t.Parallel()
	fetcher := &scriptedFetcher{failWith: func(int) error {
		return &HTTPError{StatusCode: 500, URL: "u"}
	}}
	w, _ := newTestWorker(fetcher, cache.NewMemory(time.Minute), 10, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	res := w.Resolve(ctx, FetchTarget{Key: "https://example.com/slow", Kind: KindDetail})
	require.False(t, res.OK())
	require.Equal(t, FailureCanceled, res.Failure)
	// The attempt in flight finished; only further retries were cut off.
	require.LessOrEqual(t, fetcher.count(), 2)
}
