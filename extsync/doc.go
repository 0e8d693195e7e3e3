// Package extsync provides the synchronization primitives mirrored
// across the module boundary: a reader/writer lock with blocking,
// non-blocking, and timed acquisition, and a run-once initializer
// with an observable state.
//
// Neither primitive poisons on panic; a holder that releases via
// defer leaves the primitive usable for the next caller.
package extsync
