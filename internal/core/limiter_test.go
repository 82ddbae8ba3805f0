package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLimiter_AcquireRelease(t *testing.T) {
	limiter := NewLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Status(); got != (LimiterStatus{Active: 0, Available: 2, MaxConcurrent: 2}) {
		t.Errorf("initial Status = %+v", got)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i+1, err)
		}
	}
	if got := limiter.Status(); got != (LimiterStatus{Active: 2, Available: 0, MaxConcurrent: 2}) {
		t.Errorf("full Status = %+v", got)
	}

	limiter.Release()
	limiter.Release()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after Release, ActiveCount = %d, want 0", got)
	}
}

func TestLimiter_Defaults(t *testing.T) {
	limiter := NewLimiter(0, 0)
	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrentAnalyses {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentAnalyses)
	}
	if limiter.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxWaitTime)
	}
}

func TestLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyAnalyses) {
		t.Errorf("expected ErrTooManyAnalyses, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("timeout too fast: %v", elapsed)
	}
}

func TestLimiter_ContextCancellation(t *testing.T) {
	limiter := NewLimiter(1, 5*time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after context cancellation")
	}
}

func TestLimiter_TryAcquire(t *testing.T) {
	limiter := NewLimiter(1, time.Second)

	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire() {
		t.Error("second TryAcquire should fail")
		limiter.Release()
	}

	limiter.Release()
	if !limiter.TryAcquire() {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewLimiter(maxConcurrent, time.Second)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		maxObserved int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			if n := limiter.ActiveCount(); n > maxObserved {
				maxObserved = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("exceeded max concurrent: observed %d, max %d", maxObserved, maxConcurrent)
	}
}

func TestLimiter_WaitForDrain(t *testing.T) {
	limiter := NewLimiter(2, time.Second)

	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("idle limiter should drain immediately: %v", err)
	}

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	go func() {
		time.Sleep(30 * time.Millisecond)
		limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain() error = %v", err)
	}

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer limiter.Release()
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	if err := limiter.WaitForDrain(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain() = %v, want deadline exceeded", err)
	}
}
