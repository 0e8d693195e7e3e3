// Package check compares type layouts for compatibility.
//
// Check(interface, implementation) decides whether a value shaped
// like the implementation layout can safely be used where the
// interface layout is expected, and reports EVERY mismatch it finds
// rather than stopping at the first. The comparison is structural:
// fields match by name, enums may grow variants when the interface is
// declared nonexhaustive, prefix records may grow trailing fields,
// and opaque blobs compare by size and alignment alone.
//
// Cycles in the layout graph are guarded by a per-call set of node
// pairs; re-entering a pair in progress is compatible by definition.
// A user-supplied ExtraChecks implementation that asks the engine to
// re-check the very pair it is checking fails with a distinct
// cyclic-type-checking error instead of overflowing the stack.
//
// A process-wide LRU of already-clean pairs memoizes repeat checks.
// It is an optimization only; correctness never depends on it.
package check
