// Package layout models the memory shape of describable types.
//
// A TypeLayout is a constant, immutable description of one type:
// its name, size, alignment, generic parameters, attached metadata,
// and a Data union describing its contents (primitive, struct, union,
// enum, extensible prefix record, transparent wrapper, or opaque
// blob). Layout generators emit one TypeLayout per type; the check
// package compares an interface layout against an implementation
// layout before a value is allowed across a module boundary.
//
// Self-referential types stay finite because a Field refers to its
// type's layout through a zero-argument Ref rather than embedding it.
// Mutually-recursive layouts resolve through a Registry of lazily
// initialized entries.
//
// Everything in this package is written once and read concurrently
// without synchronization.
package layout
