package prefix

import (
	"fmt"

	"github.com/wippyai/abi-runtime/layout"
)

// Metadata is the prefix-type view of a layout: the boundary between
// required fields and growable suffix fields, plus the field list.
type Metadata struct {
	Layout *layout.TypeLayout

	// PrefixFieldCount is the index of the first suffix field.
	// Fields below it must exist in every version of the record.
	PrefixFieldCount int

	Fields []layout.Field
}

// MetadataOf derives the prefix metadata of a layout. Calling it on a
// layout whose data is not a prefix record is a programmer error and
// panics; the compatibility checker never does this.
func MetadataOf(l *layout.TypeLayout) Metadata {
	data, ok := l.Data.(layout.Prefix)
	if !ok {
		panic(fmt.Sprintf("prefix: %s is a %s, not a prefix record", l.Name, l.Data.Kind()))
	}
	return Metadata{
		Layout:           l,
		PrefixFieldCount: data.FirstSuffixField,
		Fields:           data.Fields,
	}
}

// Max returns the metadata describing more fields; ties keep the
// receiver. Loaders use it to track the richest version of a record
// seen so far across multiple compatible modules.
func (m Metadata) Max(other Metadata) Metadata {
	if len(other.Fields) > len(m.Fields) {
		return other
	}
	return m
}

// AccessibleIn computes which of this metadata's fields an
// implementation with the given field count actually provides.
// Prefix fields are unconditionally accessible; the checker has
// already failed any implementation missing one.
func (m Metadata) AccessibleIn(implFieldCount int) FieldAccessibility {
	var acc FieldAccessibility
	for i := range m.Fields {
		if i < implFieldCount {
			acc = acc.WithField(i)
		}
	}
	return acc
}

// FieldAccessibility records which fields of a prefix record a loaded
// implementation provides, as a bitset indexed by field position.
type FieldAccessibility uint64

// MaxFields is the largest number of fields a prefix record can
// declare; the accessibility bitset is fixed-width.
const MaxFields = 64

// WithField returns the set with field i marked accessible.
func (f FieldAccessibility) WithField(i int) FieldAccessibility {
	if i < 0 || i >= MaxFields {
		panic(fmt.Sprintf("prefix: field index %d out of range", i))
	}
	return f | 1<<uint(i)
}

// IsAccessible reports whether field i is accessible.
func (f FieldAccessibility) IsAccessible(i int) bool {
	if i < 0 || i >= MaxFields {
		return false
	}
	return f&(1<<uint(i)) != 0
}

// Count returns the number of accessible fields.
func (f FieldAccessibility) Count() int {
	n := 0
	for v := f; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// String renders the set as a bit string, lowest field first.
func (f FieldAccessibility) String() string {
	buf := make([]byte, 0, MaxFields)
	for i := 0; i < MaxFields; i++ {
		if f.IsAccessible(i) {
			buf = append(buf, '1')
		} else {
			buf = append(buf, '0')
		}
	}
	// Trim trailing zeroes for readability, keeping at least one bit.
	end := len(buf)
	for end > 1 && buf[end-1] == '0' {
		end--
	}
	return string(buf[:end])
}
