package core

// limiter.go bounds the number of analyses running at once.
//
// The limiter uses a semaphore pattern. When all slots are occupied, new
// requests wait up to maxWait before failing with ErrTooManyAnalyses.
// WaitForDrain blocks until every running analysis completes and is used
// during graceful shutdown.

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxConcurrentAnalyses is the default limit for parallel analyses.
const DefaultMaxConcurrentAnalyses = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// drainPoll is how often WaitForDrain re-checks the active count.
const drainPoll = 50 * time.Millisecond

// Limiter controls concurrent analyses using a semaphore.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter creates a limiter that allows at most maxConcurrent simultaneous
// analyses. Requests that cannot acquire a slot within maxWait receive
// ErrTooManyAnalyses.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentAnalyses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller MUST call Release when done.
func (l *Limiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		return ErrTooManyAnalyses
	}
}

// TryAcquire attempts to acquire a slot without blocking.
func (l *Limiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of running analyses.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until all active analyses complete or ctx is done.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for health checks.
func (l *Limiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
