package layout

import (
	"fmt"

	"github.com/wippyai/abi-runtime/tag"
)

// Option configures optional properties of a layout under
// construction.
type Option func(*TypeLayout)

// WithModPath records the declaring module path and source line.
func WithModPath(path string, line uint32) Option {
	return func(l *TypeLayout) {
		l.ModPath = path
		l.Line = line
	}
}

// WithPackage records the distribution package and its semver.
func WithPackage(name, version string) Option {
	return func(l *TypeLayout) {
		l.Package = name
		l.PackageVersion = version
	}
}

// WithNonZero marks the all-zeroes bit pattern as invalid.
func WithNonZero() Option {
	return func(l *TypeLayout) { l.NonZero = true }
}

// WithRepr sets the representation attribute.
func WithRepr(r ReprAttr) Option {
	return func(l *TypeLayout) { l.Repr = r }
}

// WithGenerics sets the generic parameters.
func WithGenerics(g GenericParams) Option {
	return func(l *TypeLayout) { l.Generics = g }
}

// WithPhantomFields sets the variance-only virtual fields.
func WithPhantomFields(fields ...Field) Option {
	return func(l *TypeLayout) { l.PhantomFields = fields }
}

// WithTag attaches semi-structured metadata.
func WithTag(t tag.Tag) Option {
	return func(l *TypeLayout) { l.Tag = &t }
}

// WithExtraChecks attaches a user-supplied checker.
func WithExtraChecks(e ExtraChecks) Option {
	return func(l *TypeLayout) { l.Extra = e }
}

// New constructs a layout and validates its shallow invariants.
// Malformed declarations are programmer errors and panic; they never
// reach the recoverable incompatibility taxonomy.
func New(name string, size, align uint32, data Data, opts ...Option) *TypeLayout {
	l := &TypeLayout{
		Name:  name,
		Size:  size,
		Align: align,
		Data:  data,
	}
	for _, opt := range opts {
		opt(l)
	}
	if _, ok := data.(Transparent); ok {
		l.Repr = ReprTransparent
	}
	mustValidate(l)
	return l
}

func mustValidate(l *TypeLayout) {
	if l.Data == nil {
		panic(fmt.Sprintf("layout: %s: nil Data", l.Name))
	}
	if l.Align == 0 || l.Align&(l.Align-1) != 0 {
		panic(fmt.Sprintf("layout: %s: alignment %d is not a power of two", l.Name, l.Align))
	}
	if l.Size%l.Align != 0 {
		panic(fmt.Sprintf("layout: %s: size %d is not a multiple of alignment %d", l.Name, l.Size, l.Align))
	}

	switch data := l.Data.(type) {
	case Prefix:
		if data.FirstSuffixField < 0 || data.FirstSuffixField > len(data.Fields) {
			panic(fmt.Sprintf(
				"layout: %s: prefix boundary %d out of range for %d fields",
				l.Name, data.FirstSuffixField, len(data.Fields),
			))
		}
	case Enum:
		if data.NonExhaustive {
			if data.StorageSize < l.Size {
				panic(fmt.Sprintf(
					"layout: %s: nonexhaustive storage size %d is smaller than the enum's %d",
					l.Name, data.StorageSize, l.Size,
				))
			}
			if data.StorageAlign < l.Align {
				panic(fmt.Sprintf(
					"layout: %s: nonexhaustive storage alignment %d is smaller than the enum's %d",
					l.Name, data.StorageAlign, l.Align,
				))
			}
		}
	case Transparent:
		if data.Inner == nil {
			panic(fmt.Sprintf("layout: %s: transparent wrapper with nil inner layout", l.Name))
		}
	}
}

// Validate re-derives the layout's size and alignment from its fields
// and reports a mismatch with the declared values. Unlike the shallow
// checks in New it resolves field Refs, so it must only run after
// every referenced layout is registered.
func (l *TypeLayout) Validate() error {
	switch l.Data.(type) {
	case Struct, Union, Enum, Prefix:
	default:
		return nil
	}
	info := NewCalculator().Calculate(l)
	if info.Size != l.Size || info.Align != l.Align {
		return fmt.Errorf(
			"layout: %s: declared %d/%d bytes, fields imply %d/%d",
			l.Name, l.Size, l.Align, info.Size, info.Align,
		)
	}
	return nil
}
