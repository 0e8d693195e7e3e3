package check

import (
	"fmt"
	"strings"

	"github.com/wippyai/abi-runtime/layout"
	"github.com/wippyai/abi-runtime/tag"
)

// Kind identifies one way an implementation layout can fail to
// satisfy an interface layout.
type Kind uint8

const (
	KindName Kind = iota
	KindPackage
	KindPackageVersion
	KindVersionParse
	KindSize
	KindAlignment
	KindNonZeroness
	KindReprAttr
	KindDataKind
	KindGenericParamCount
	KindConstParam
	KindFieldLifetime
	KindFieldCount
	KindPrefixFieldCount
	KindUnexpectedField
	KindUnexpectedVariant
	KindTooManyVariants
	KindMissingVariants
	KindEnumDiscriminant
	KindExhaustiveness
	KindTag
	KindMissingExtraChecks
	KindExtraChecks
	KindCyclicTypeChecking
)

var kindNames = [...]string{
	KindName:               "mismatched type name",
	KindPackage:            "mismatched package",
	KindPackageVersion:     "incompatible package version",
	KindVersionParse:       "unparsable package version",
	KindSize:               "mismatched size",
	KindAlignment:          "mismatched alignment",
	KindNonZeroness:        "mismatched non-zeroness",
	KindReprAttr:           "mismatched representation attribute",
	KindDataKind:           "mismatched data kind",
	KindGenericParamCount:  "mismatched generic parameter count",
	KindConstParam:         "mismatched const parameter",
	KindFieldLifetime:      "mismatched field lifetimes",
	KindFieldCount:         "mismatched field count",
	KindPrefixFieldCount:   "missing required prefix field",
	KindUnexpectedField:    "unexpected field",
	KindUnexpectedVariant:  "unexpected variant",
	KindTooManyVariants:    "too many variants",
	KindMissingVariants:    "missing variants",
	KindEnumDiscriminant:   "mismatched enum discriminant",
	KindExhaustiveness:     "mismatched exhaustiveness",
	KindTag:                "incompatible tag",
	KindMissingExtraChecks: "missing extra checks",
	KindExtraChecks:        "extra checks failed",
	KindCyclicTypeChecking: "cyclic type checking",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Incompatibility is one individual mismatch between an interface
// layout and an implementation layout.
type Incompatibility struct {
	Kind Kind

	// Expected and Found are the rendered interface-side and
	// implementation-side values.
	Expected string
	Found    string

	// Tag carries the nested tag failure for KindTag.
	Tag *tag.Errors

	// Err carries the underlying error for KindExtraChecks,
	// KindCyclicTypeChecking, and KindVersionParse.
	Err error
}

func (i Incompatibility) String() string {
	var b strings.Builder
	b.WriteString(i.Kind.String())
	if i.Expected != "" || i.Found != "" {
		fmt.Fprintf(&b, ": expected %s, found %s", i.Expected, i.Found)
	}
	if i.Tag != nil {
		fmt.Fprintf(&b, ": %s", i.Tag.Error())
	}
	if i.Err != nil {
		fmt.Fprintf(&b, ": %s", i.Err.Error())
	}
	return b.String()
}

// LayoutError groups the incompatibilities found at one node of the
// layout graph, with the field path leading to it.
type LayoutError struct {
	// Path is the chain of field names from the root layouts to the
	// offending node. Empty for the roots themselves.
	Path []string
	Errs []Incompatibility
}

// Error is the full report of a failed check: every problem found in
// the whole layout graph, in the order encountered.
type Error struct {
	Interface      *layout.TypeLayout
	Implementation *layout.TypeLayout
	Errors         []LayoutError
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(
		&b,
		"checked %s against %s: %d incompatible node(s)",
		e.Interface.FullName(), e.Implementation.FullName(), len(e.Errors),
	)
	for _, le := range e.Errors {
		b.WriteString("\n  at <root>")
		for _, p := range le.Path {
			b.WriteByte('.')
			b.WriteString(p)
		}
		for _, inc := range le.Errs {
			b.WriteString("\n    ")
			b.WriteString(inc.String())
		}
	}
	return b.String()
}

// Flatten returns every incompatibility in the report, discarding the
// per-node grouping.
func (e *Error) Flatten() []Incompatibility {
	var out []Incompatibility
	for _, le := range e.Errors {
		out = append(out, le.Errs...)
	}
	return out
}

// Has reports whether any incompatibility of the given kind was found.
func (e *Error) Has(k Kind) bool {
	for _, le := range e.Errors {
		for _, inc := range le.Errs {
			if inc.Kind == k {
				return true
			}
		}
	}
	return false
}
