package engine

import (
	"context"
	"fmt"
	"time"
)

// ChunkScheduler partitions a target sequence into fixed-size chunks,
// preserving order within and across chunks, and enforces a pause between
// the completion of one chunk and the submission of the next.
type ChunkScheduler struct {
	Size  int
	Pause time.Duration
}

// NewChunkScheduler validates and builds a scheduler.
func NewChunkScheduler(size int, pause time.Duration) (ChunkScheduler, error) {
	if size <= 0 {
		return ChunkScheduler{}, fmt.Errorf("chunk size must be > 0, got %d", size)
	}
	if pause < 0 {
		return ChunkScheduler{}, fmt.Errorf("chunk pause must be >= 0, got %s", pause)
	}
	return ChunkScheduler{Size: size, Pause: pause}, nil
}

// Chunks splits targets into successive sub-sequences of at most Size
// elements. The last chunk may be shorter.
func (s ChunkScheduler) Chunks(targets []FetchTarget) [][]FetchTarget {
	if len(targets) == 0 {
		return nil
	}
	chunks := make([][]FetchTarget, 0, (len(targets)+s.Size-1)/s.Size)
	for start := 0; start < len(targets); start += s.Size {
		end := start + s.Size
		if end > len(targets) {
			end = len(targets)
		}
		chunks = append(chunks, targets[start:end])
	}
	return chunks
}

// Wait sleeps for the inter-chunk pause, returning early on cancellation.
func (s ChunkScheduler) Wait(ctx context.Context) error {
	if s.Pause <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.Pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
