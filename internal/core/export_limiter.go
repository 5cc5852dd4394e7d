package core

// export_limiter.go bounds how many export runs execute at once.
//
// Every run buffers the whole sheet in memory, so Service.Export, Preview and
// Rejected each acquire a slot before reading the upload. When all slots are taken a request
// waits up to maxWait and then fails with ErrTooManyExports.
//
// Drain blocks until running exports finish, for graceful shutdown.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyExports is returned when no export slot frees up in time.
// Clients should retry after a short delay.
var ErrTooManyExports = errors.New("too many concurrent exports, please try again later")

// DefaultMaxConcurrentExports is the default limit for parallel runs.
const DefaultMaxConcurrentExports = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ExportLimiter is a weighted semaphore with a bounded wait.
type ExportLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewExportLimiter allows at most maxConcurrent simultaneous runs.
func NewExportLimiter(maxConcurrent int, maxWait time.Duration) *ExportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentExports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ExportLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. The caller MUST call Release when done.
// Returns ctx.Err() if ctx ends first, ErrTooManyExports on timeout.
func (l *ExportLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyExports
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without blocking.
func (l *ExportLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *ExportLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// Drain blocks until every slot is free or ctx ends.
func (l *ExportLimiter) Drain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.max); err != nil {
		return err
	}
	l.sem.Release(l.max)
	return nil
}

// ExportLimiterStatus is a point-in-time view of the limiter.
type ExportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for the health endpoint.
func (l *ExportLimiter) Status() ExportLimiterStatus {
	active := int(l.active.Load())
	return ExportLimiterStatus{
		Active:        active,
		Available:     int(l.max) - active,
		MaxConcurrent: int(l.max),
	}
}
