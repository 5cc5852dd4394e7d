package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestExportLimiter_AcquireRelease(t *testing.T) {
	limiter := NewExportLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Status().Available; got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	status := limiter.Status()
	if status.Active != 2 || status.Available != 0 {
		t.Errorf("status = %+v, want 2 active, 0 available", status)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.Status().Active; got != 0 {
		t.Errorf("after Release, Active = %d, want 0", got)
	}
}

func TestExportLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewExportLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyExports) {
		t.Fatalf("got %v, want ErrTooManyExports", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("gave up too early: %v", elapsed)
	}
}

func TestExportLimiter_ContextCancelled(t *testing.T) {
	limiter := NewExportLimiter(1, time.Minute)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter failed")
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestExportLimiter_TryAcquire(t *testing.T) {
	limiter := NewExportLimiter(1, time.Second)

	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire() {
		t.Fatal("second TryAcquire should fail")
	}
	limiter.Release()
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestExportLimiter_Defaults(t *testing.T) {
	limiter := NewExportLimiter(0, 0)
	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrentExports {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentExports)
	}
}

func TestExportLimiter_Concurrent(t *testing.T) {
	const limit = 3
	limiter := NewExportLimiter(limit, 5*time.Second)

	var (
		mu      sync.Mutex
		current int
		peak    int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			mu.Lock()
			current++
			peak = max(peak, current)
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			limiter.Release()
		}()
	}
	wg.Wait()

	if peak > limit {
		t.Errorf("peak concurrency %d exceeds limit %d", peak, limit)
	}
}

func TestExportLimiter_Drain(t *testing.T) {
	limiter := NewExportLimiter(2, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := limiter.Drain(ctx); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if got := limiter.Status().Available; got != 2 {
		t.Errorf("after Drain, Available = %d, want 2", got)
	}
}
