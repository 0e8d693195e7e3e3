// Package erased hides concrete values behind capability-limited
// operation tables, so a host can drive a plugin's value without
// knowing its type.
//
// A VTable is built once per concrete type and capability set with
// Builder/Build. Erase wraps a value into an owning handle; Reborrow
// and ReborrowExclusive produce non-owning views sharing the same
// vtable. Only the original owning handle runs the destructor, and an
// exclusive view withholds clone, which would alias it.
//
// Calling a capability the vtable was not built with is a programmer
// error and panics with a message naming the capability. Downcast, by
// contrast, is a legitimate runtime question and returns a typed
// error on mismatch.
//
// Each vtable can describe itself as a prefix-record layout
// (VTable.Layout), so the operation tables crossing a module boundary
// are checkable with the same machinery as any other value.
package erased
