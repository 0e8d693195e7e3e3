// Package prefix supports extensible records: structs, vtables, and
// module roots whose trailing fields may grow across minor versions
// without invalidating older callers.
//
// A prefix record splits its fields at a declared boundary. Fields
// below the boundary exist in every version and are unconditionally
// accessible; fields at or above it are suffix fields a given
// implementation may or may not have. After the compatibility checker
// accepts an implementation, AccessibleIn reports exactly which
// suffix fields the loaded record provides.
package prefix
