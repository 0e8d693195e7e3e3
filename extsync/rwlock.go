package extsync

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// maxReaders bounds concurrent read holders. A writer acquires the
// whole weight, readers one unit each.
const maxReaders = 1 << 30

// RWLock is a reader/writer lock offering blocking, non-blocking, and
// timed acquisition. There is no poisoning: a holder that panics and
// releases via defer leaves the lock usable.
type RWLock struct {
	sem *semaphore.Weighted
}

// NewRWLock creates an unlocked RWLock.
func NewRWLock() *RWLock {
	return &RWLock{sem: semaphore.NewWeighted(maxReaders)}
}

// Lock blocks until exclusive access is acquired.
func (l *RWLock) Lock() {
	// Acquire with a background context cannot fail.
	_ = l.sem.Acquire(context.Background(), maxReaders)
}

// TryLock acquires exclusive access without blocking.
func (l *RWLock) TryLock() bool {
	return l.sem.TryAcquire(maxReaders)
}

// LockTimeout acquires exclusive access, giving up after d.
func (l *RWLock) LockTimeout(d time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return l.sem.Acquire(ctx, maxReaders) == nil
}

// LockContext acquires exclusive access, honoring ctx cancellation.
func (l *RWLock) LockContext(ctx context.Context) error {
	return l.sem.Acquire(ctx, maxReaders)
}

// Unlock releases exclusive access.
func (l *RWLock) Unlock() {
	l.sem.Release(maxReaders)
}

// RLock blocks until shared access is acquired.
func (l *RWLock) RLock() {
	_ = l.sem.Acquire(context.Background(), 1)
}

// TryRLock acquires shared access without blocking.
func (l *RWLock) TryRLock() bool {
	return l.sem.TryAcquire(1)
}

// RLockTimeout acquires shared access, giving up after d.
func (l *RWLock) RLockTimeout(d time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return l.sem.Acquire(ctx, 1) == nil
}

// RLockContext acquires shared access, honoring ctx cancellation.
func (l *RWLock) RLockContext(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// RUnlock releases shared access.
func (l *RWLock) RUnlock() {
	l.sem.Release(1)
}
