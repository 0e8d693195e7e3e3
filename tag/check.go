package tag

import (
	"fmt"
	"strings"
)

// ErrorKind discriminates the ways a tag check can fail.
type ErrorKind uint8

const (
	// MismatchedDiscriminant: the two tags have different variants.
	MismatchedDiscriminant ErrorKind = iota
	// MismatchedValue: scalar tags of the same variant differ.
	MismatchedValue
	// MismatchedArrayLength: array tags have different lengths.
	MismatchedArrayLength
	// MismatchedAssocLength: the interface set/map is larger than the
	// implementation's.
	MismatchedAssocLength
	// MissingSetValue: an interface set element matches nothing in
	// the implementation set.
	MissingSetValue
	// MismatchedMapEntry: an interface map entry matches nothing in
	// the implementation map.
	MismatchedMapEntry
)

var errorKindNames = [...]string{
	MismatchedDiscriminant: "mismatched discriminant",
	MismatchedValue:        "mismatched value",
	MismatchedArrayLength:  "mismatched array length",
	MismatchedAssocLength:  "mismatched set/map length",
	MissingSetValue:        "missing set value",
	MismatchedMapEntry:     "mismatched map entry",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "unknown"
}

// Variant is one individual tag check failure.
type Variant struct {
	Kind ErrorKind

	// Expected and Found carry the relevant sub-tags. For
	// MissingSetValue and MismatchedMapEntry, Found is the closest
	// non-matching implementation entry, if any.
	Expected Tag
	Found    *Tag
}

// Errors is the result of a failed tag check: the two whole trees,
// the path of sub-tags leading to the failure, and the failures
// themselves.
type Errors struct {
	Expected  Tag
	Found     Tag
	Backtrace []Tag
	Variants  []Variant
}

func (e *Errors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tag: expected %s, found %s", e.Expected, e.Found)
	for _, v := range e.Variants {
		fmt.Fprintf(&b, "; %s (expected %s", v.Kind, v.Expected)
		if v.Found != nil {
			fmt.Fprintf(&b, ", found %s", *v.Found)
		}
		b.WriteByte(')')
	}
	if len(e.Backtrace) > 0 {
		parts := make([]string, len(e.Backtrace))
		for i, t := range e.Backtrace {
			parts[i] = t.String()
		}
		fmt.Fprintf(&b, " at %s", strings.Join(parts, " -> "))
	}
	return b.String()
}

func (e *Errors) context(t Tag) *Errors {
	e.Backtrace = append(e.Backtrace, t)
	return e
}

// Check compares an interface tag against an implementation tag and
// returns nil when compatible. The comparison is asymmetric:
//
//   - Null in the interface matches anything.
//   - Scalars must match exactly.
//   - Arrays must have equal length with pairwise-compatible elements.
//   - Interface sets/maps must be subsets of the implementation's.
func Check(iface, impl Tag) *Errors {
	errWith := func(v Variant) *Errors {
		return &Errors{Expected: iface, Found: impl, Variants: []Variant{v}}
	}

	if iface.kind == KindNull {
		return nil
	}
	if iface.kind != impl.kind {
		return errWith(Variant{Kind: MismatchedDiscriminant, Expected: iface, Found: &impl})
	}

	switch iface.kind {
	case KindBool, KindInt, KindUInt, KindString:
		if !iface.equal(impl) {
			return errWith(Variant{Kind: MismatchedValue, Expected: iface, Found: &impl})
		}
	case KindArray:
		if len(iface.elems) != len(impl.elems) {
			return errWith(Variant{Kind: MismatchedArrayLength, Expected: iface, Found: &impl})
		}
		for i, e := range iface.elems {
			if errs := Check(e, impl.elems[i]); errs != nil {
				return errs.context(e)
			}
		}
	case KindSet, KindMap:
		if len(iface.entries) > len(impl.entries) {
			return errWith(Variant{Kind: MismatchedAssocLength, Expected: iface, Found: &impl})
		}
		for _, want := range iface.entries {
			var firstMiss *Tag
			matched := false
			for _, got := range impl.entries {
				if Check(want.Key, got.Key) == nil && Check(want.Value, got.Value) == nil {
					matched = true
					break
				}
				if firstMiss == nil {
					near := got.Key
					if iface.kind == KindMap {
						near = NewMap(got)
					}
					firstMiss = &near
				}
			}
			if matched {
				continue
			}
			kind := MissingSetValue
			expected := want.Key
			if iface.kind == KindMap {
				kind = MismatchedMapEntry
				expected = NewMap(want)
			}
			return errWith(Variant{Kind: kind, Expected: expected, Found: firstMiss})
		}
	}
	return nil
}
