package layout

import (
	"github.com/wippyai/abi-runtime/tag"
)

// TypeLayout is the constant description of a type's memory shape.
//
// Layouts are built once, never mutated, and safe to read from any
// number of goroutines without synchronization. Hosts compare an
// interface layout against an implementation layout with check.Check
// before letting a value cross the module boundary.
type TypeLayout struct {
	// Name is the type's declared name, without generic arguments.
	Name string
	// ModPath is the path of the module that declares the type.
	ModPath string
	// Line is the source line of the declaration.
	Line uint32
	// Package and PackageVersion identify the distribution unit the
	// type ships in. PackageVersion is a semver string.
	Package        string
	PackageVersion string

	// Size and Align are the byte size and alignment of the type.
	Size  uint32
	Align uint32

	// NonZero reports whether the all-zeroes bit pattern is invalid
	// for the type, letting an optional wrapper reuse it as the
	// niche for its empty case.
	NonZero bool

	// Repr is the declared representation attribute.
	Repr ReprAttr

	// Data describes the shape of the type's contents.
	Data Data

	// Generics are the type's generic parameters. Two instantiations
	// with different arguments have distinct layouts.
	Generics GenericParams

	// PhantomFields are variance-only virtual fields. They occupy no
	// space but participate in compatibility checking.
	PhantomFields []Field

	// Tag is optional semi-structured metadata checked per the
	// asymmetric rules of the tag package. A nil Tag behaves as Null.
	Tag *tag.Tag

	// Extra is an optional user-supplied checker for properties the
	// structural model cannot express.
	Extra ExtraChecks

	typeID typeIDCell
}

// TypeID returns the process-unique identifier of this layout.
// Identifiers are assigned lazily, one per layout value, and are
// stable for the lifetime of the process.
func (l *TypeLayout) TypeID() TypeID {
	return l.typeID.get()
}

// Ref is a zero-argument accessor returning a layout. Fields hold
// their type's layout through a Ref rather than directly so that
// self-referential and mutually-referential types stay finite.
type Ref func() *TypeLayout

// DirectRef adapts an already-constructed layout into a Ref.
func DirectRef(l *TypeLayout) Ref {
	return func() *TypeLayout { return l }
}

// Data is the tagged union describing a type's contents.
type Data interface {
	// Kind returns the variant discriminant.
	Kind() DataKind
}

// Primitive is a compiler-defined type. Pointer-like primitives carry
// their referent as a generic type parameter on the owning layout.
type Primitive struct {
	Prim Prim
}

func (Primitive) Kind() DataKind { return KindPrimitive }

// Opaque is a blob with no inspectable properties besides size and
// alignment. Two opaque layouts of equal size and alignment are
// always compatible, regardless of nominal type. This is a deliberate
// caller-responsibility escape hatch.
type Opaque struct{}

func (Opaque) Kind() DataKind { return KindOpaque }

// Struct describes a struct's fields.
type Struct struct {
	Fields []Field
}

func (Struct) Kind() DataKind { return KindStruct }

// Union describes a union's fields. Unions are checked with the same
// rules as structs.
type Union struct {
	Fields []Field
}

func (Union) Kind() DataKind { return KindUnion }

// Enum describes an enum's variants and discriminant representation.
type Enum struct {
	Variants []Variant
	Repr     DiscriminantRepr

	// NonExhaustive marks an enum whose implementation may define
	// more variants than a given interface knows. Such enums travel
	// in backing storage of StorageSize/StorageAlign bytes, sized
	// when the interface was defined.
	NonExhaustive bool
	StorageSize   uint32
	StorageAlign  uint32
}

func (Enum) Kind() DataKind { return KindEnum }

// Prefix describes an extensible record: fields at indices below
// FirstSuffixField are required, trailing fields may be added in
// minor versions without breaking older callers.
type Prefix struct {
	FirstSuffixField int
	Fields           []Field
}

func (Prefix) Kind() DataKind { return KindPrefix }

// Transparent is a repr(transparent)-style wrapper. For checking it
// reduces to the wrapped layout while still printing under the
// wrapper's own name.
type Transparent struct {
	Inner Ref
}

func (Transparent) Kind() DataKind { return KindTransparent }

// Field is one field of a struct, union, enum variant, or prefix
// record.
type Field struct {
	Name string

	// LifetimeIndices lists which of the owner's lifetime parameters
	// the field's type references, by index.
	LifetimeIndices []uint8

	// Layout yields the field type's layout.
	Layout Ref

	// Subfields describe an embedded function pointer's parameters
	// and return value, in declaration order.
	Subfields []Field
}

// Variant is one variant of an enum.
type Variant struct {
	Name   string
	Fields []Field

	// Discriminant is the variant's fixed discriminant value, or nil
	// when the declaration leaves it to the compiler.
	Discriminant *int64
}

// GenericParams are a type's generic parameters. Lifetimes and consts
// are compared textually; type parameters are compared by layout.
type GenericParams struct {
	Lifetimes []string
	Types     []Ref
	Consts    []string
}

// IsEmpty reports whether the type has no generic parameters.
func (g GenericParams) IsEmpty() bool {
	return len(g.Lifetimes) == 0 && len(g.Types) == 0 && len(g.Consts) == 0
}

// TypeChecker is the view of the compatibility checker handed to
// ExtraChecks implementations. Delegated checks share the outer
// call's cycle guard and error accumulator.
type TypeChecker interface {
	// Check checks an interface layout against an implementation
	// layout. Re-entering a pair already being extra-checked fails
	// with a cyclic-type-checking error instead of recursing forever.
	Check(iface, impl *TypeLayout) error
}

// ExtraChecks is an opaque per-type checker for properties the
// structural model cannot express. The interface side's checker is
// given the implementation side's layout; the implementation must
// carry an ExtraChecks value of the same concrete type.
type ExtraChecks interface {
	// CheckCompatibility checks the implementation layout against
	// this checker's expectations.
	CheckCompatibility(iface, impl *TypeLayout, tc TypeChecker) error

	// Combine merges this checker with another independently-supplied
	// checker for the same logical slot, returning a checker at least
	// as strict as both. Returning nil keeps the receiver.
	Combine(other ExtraChecks, tc TypeChecker) (ExtraChecks, error)

	// NestedTypeLayouts returns layouts owned by this checker that
	// the engine should treat as reachable.
	NestedTypeLayouts() []Ref
}
