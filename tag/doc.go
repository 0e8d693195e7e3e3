// Package tag attaches loosely-structured metadata to type layouts.
//
// A Tag is a recursive value of nulls, scalars, arrays, sets, and
// maps. Layout generators use tags to express compatibility
// properties the structural model cannot capture, such as the
// behaviors a type promises to the other side of a module boundary.
//
// Checking is asymmetric: the interface side states requirements, the
// implementation side states what it provides. Null requires nothing;
// sets and maps in the interface must be subsets of the
// implementation's.
package tag
