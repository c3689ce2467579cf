package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/R41CY/movie-scraper/internal/clock"
)

// Orchestrator drives chunks of targets through the limiter to concurrent
// workers and reassembles results in submission order. A chunk boundary is a
// synchronization point: no target of chunk k+1 starts before every target
// of chunk k has resolved.
type Orchestrator struct {
	worker  *Worker
	limiter *Limiter
	sched   ChunkScheduler
	metrics *Metrics
	clock   clock.Clock
	logger  *zap.Logger
}

// RunResult bundles the ordered results with the frozen metrics snapshot.
// Complete is false when the run was cut short by cancellation.
type RunResult struct {
	Results  []FetchResult
	Metrics  Snapshot
	Complete bool
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(
	worker *Worker,
	limiter *Limiter,
	sched ChunkScheduler,
	metrics *Metrics,
	clk clock.Clock,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		worker:  worker,
		limiter: limiter,
		sched:   sched,
		metrics: metrics,
		clock:   clk,
		logger:  logger,
	}
}

// Run resolves every target and returns results aligned with the input
// order regardless of completion order. Terminal failures of individual
// targets are carried as failed entries, never raised. On cancellation no
// further chunks are scheduled and the partial results are returned with
// Complete=false.
func (o *Orchestrator) Run(ctx context.Context, targets []FetchTarget) RunResult {
	o.metrics.Begin(o.clock.Now())

	results := make([]FetchResult, 0, len(targets))
	complete := true
	chunks := o.sched.Chunks(targets)

	for i, chunk := range chunks {
		if ctx.Err() != nil {
			complete = false
			break
		}
		o.logger.Debug("starting chunk",
			zap.Int("chunk", i+1),
			zap.Int("chunks", len(chunks)),
			zap.Int("size", len(chunk)),
		)
		results = append(results, o.runChunk(ctx, chunk)...)
		if ctx.Err() != nil {
			complete = false
			break
		}
		if i < len(chunks)-1 {
			if err := o.sched.Wait(ctx); err != nil {
				complete = false
				break
			}
		}
	}

	// The end stamp must land before the snapshot is taken, so the
	// returned metrics carry the finalized window.
	o.metrics.Finish(o.clock.Now())
	return RunResult{
		Results:  results,
		Metrics:  o.metrics.Snapshot(),
		Complete: complete,
	}
}

// runChunk resolves every target of one chunk concurrently, gated by the
// limiter, and waits for all of them. Each goroutine writes a distinct slot
// so no synchronization beyond the WaitGroup is needed.
func (o *Orchestrator) runChunk(ctx context.Context, chunk []FetchTarget) []FetchResult {
	out := make([]FetchResult, len(chunk))
	var wg sync.WaitGroup
	for i, target := range chunk {
		wg.Add(1)
		go func(i int, target FetchTarget) {
			defer wg.Done()
			if err := o.limiter.Acquire(ctx); err != nil {
				o.metrics.RecordError(FailureCanceled)
				out[i] = FetchResult{
					Key:      target.Key,
					Kind:     target.Kind,
					Position: target.Position,
					Failure:  FailureCanceled,
					Err:      err,
				}
				return
			}
			defer o.limiter.Release()
			out[i] = o.worker.Resolve(ctx, target)
		}(i, target)
	}
	wg.Wait()
	return out
}
