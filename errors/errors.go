package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLayout   Phase = "layout"   // layout construction and validation
	PhaseCheck    Phase = "check"    // compatibility checking
	PhaseRegister Phase = "register" // vtable registration
	PhaseErase    Phase = "erase"    // erased handle operations
	PhaseDowncast Phase = "downcast" // recovering a concrete type
	PhaseModule   Phase = "module"   // root-module boundary checks
	PhasePrefix   Phase = "prefix"   // extensible-record handling
)

// Kind categorizes the error
type Kind string

const (
	KindMissingCapability Kind = "missing_capability"
	KindUnimplemented     Kind = "capability_unimplemented"
	KindDowncastMismatch  Kind = "downcast_mismatch"
	KindPrefixBoundary    Kind = "prefix_boundary"
	KindBadVersion        Kind = "bad_version"
	KindExtraChecks       Kind = "extra_checks"
	KindCyclicCheck       Kind = "cyclic_check"
	KindNotPrefix         Kind = "not_prefix"
	KindInvalidLayout     Kind = "invalid_layout"
	KindConsumed          Kind = "consumed"
	KindNotOwning         Kind = "not_owning"
	KindIncompatible      Kind = "incompatible"
)

// Error is the structured error type used throughout the library for
// failures that are not structural layout mismatches. Structural
// mismatches found while comparing layouts are accumulated into a
// check.Error instead.
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Interface string
	Impl      string
	Detail    string
	Path      []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Interface != "" || e.Impl != "" {
		b.WriteString(": ")
		switch {
		case e.Interface != "" && e.Impl != "":
			b.WriteString("interface ")
			b.WriteString(e.Interface)
			b.WriteString(", implementation ")
			b.WriteString(e.Impl)
		case e.Interface != "":
			b.WriteString("interface ")
			b.WriteString(e.Interface)
		default:
			b.WriteString("implementation ")
			b.WriteString(e.Impl)
		}
	}

	if e.Detail != "" {
		if e.Interface != "" || e.Impl != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Interface sets the interface-side type name
func (b *Builder) Interface(t string) *Builder {
	b.err.Interface = t
	return b
}

// Impl sets the implementation-side type name
func (b *Builder) Impl(t string) *Builder {
	b.err.Impl = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common patterns

// DowncastMismatch creates an error for a downcast to the wrong
// concrete type.
func DowncastMismatch(expected, found string) *Error {
	return &Error{
		Phase:     PhaseDowncast,
		Kind:      KindDowncastMismatch,
		Interface: expected,
		Impl:      found,
		Detail:    "type identifiers differ",
	}
}

// BadVersion creates an unparsable or incompatible version error.
func BadVersion(phase Phase, version string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBadVersion,
		Detail: fmt.Sprintf("version %q", version),
		Cause:  cause,
		Value:  version,
	}
}

// CyclicCheck creates the fatal error for an ExtraChecks
// implementation that re-enters the checker on the pair it is already
// checking.
func CyclicCheck(iface, impl string) *Error {
	return &Error{
		Phase:     PhaseCheck,
		Kind:      KindCyclicCheck,
		Interface: iface,
		Impl:      impl,
		Detail:    "extra checks re-entered the checker with no progress",
	}
}

// ExtraChecksFailed wraps a failure reported by a user-supplied
// checker.
func ExtraChecksFailed(iface, impl string, cause error) *Error {
	return &Error{
		Phase:     PhaseCheck,
		Kind:      KindExtraChecks,
		Interface: iface,
		Impl:      impl,
		Cause:     cause,
	}
}

// NotPrefix creates an error for treating a non-prefix layout as an
// extensible record.
func NotPrefix(name string, kind string) *Error {
	return &Error{
		Phase:  PhasePrefix,
		Kind:   KindNotPrefix,
		Impl:   name,
		Detail: fmt.Sprintf("data kind is %s, want prefix", kind),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
