package core

// limiter.go bounds how many verification runs decode files at once.
//
// Decoding a roster workbook holds every worksheet in memory, so runs take a
// slot from a semaphore first. When all slots are busy a run waits up to
// maxWait and then fails with ErrTooManyVerifications.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyVerifications is returned when no slot frees up within the wait time.
var ErrTooManyVerifications = errors.New("too many verifications in progress, please try again later")

const (
	DefaultMaxConcurrentVerifications = 4
	DefaultMaxWaitTime                = 30 * time.Second
)

// VerifyLimiter is a counting semaphore for verification runs.
type VerifyLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewVerifyLimiter allows at most maxConcurrent runs; non-positive values use the defaults.
func NewVerifyLimiter(maxConcurrent int, maxWait time.Duration) *VerifyLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentVerifications
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &VerifyLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most the limiter's wait time.
// Callers must Release the slot after a nil return.
func (l *VerifyLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyVerifications
	}
}

// Release returns a slot taken by Acquire.
func (l *VerifyLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// ActiveCount returns the number of runs holding a slot.
func (l *VerifyLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no run holds a slot or ctx is done.
func (l *VerifyLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of limiter usage.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current usage for monitoring.
func (l *VerifyLimiter) Status() LimiterStatus {
	active := l.ActiveCount()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
