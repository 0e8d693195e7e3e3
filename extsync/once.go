package extsync

import (
	"sync"
	"sync/atomic"
)

// Once is a run-once initializer. Unlike sync.Once it exposes the
// completion state and a non-blocking attempt, which module loaders
// use when several plugins race to initialize one shared slot.
type Once struct {
	mu   sync.Mutex
	done atomic.Bool
}

// Do runs f if no call has completed yet, blocking while another
// goroutine runs it. If f panics the Once stays incomplete; there is
// no poisoning.
func (o *Once) Do(f func()) {
	if o.done.Load() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done.Load() {
		return
	}
	f()
	o.done.Store(true)
}

// TryDo runs f if no call has completed and no other goroutine is
// initializing right now. It reports whether f ran.
func (o *Once) TryDo(f func()) bool {
	if o.done.Load() {
		return false
	}
	if !o.mu.TryLock() {
		return false
	}
	defer o.mu.Unlock()
	if o.done.Load() {
		return false
	}
	f()
	o.done.Store(true)
	return true
}

// Done reports whether an initialization has completed.
func (o *Once) Done() bool {
	return o.done.Load()
}
