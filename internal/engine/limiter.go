package engine

import (
	"context"
	"fmt"
)

// Limiter bounds the number of concurrently executing fetches. Waiters
// suspend on the semaphore channel; no fairness among them is guaranteed,
// only eventual progress.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a Limiter admitting at most n concurrent holders.
func NewLimiter(n int) (*Limiter, error) {
	if n <= 0 {
		return nil, fmt.Errorf("concurrency limit must be > 0, got %d", n)
	}
	return &Limiter{slots: make(chan struct{}, n)}, nil
}

// Acquire blocks until a slot is free or the context ends.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("acquire slot: %w", ctx.Err())
	case l.slots <- struct{}{}:
		return nil
	}
}

// Release frees a slot. Callers must pair every successful Acquire with
// exactly one Release on every exit path.
func (l *Limiter) Release() {
	<-l.slots
}

// Cap returns the configured concurrency bound.
func (l *Limiter) Cap() int {
	return cap(l.slots)
}

// InFlight returns the number of currently held slots.
func (l *Limiter) InFlight() int {
	return len(l.slots)
}
