package layout

// DataKind discriminates the variants of Data.
type DataKind uint8

const (
	KindPrimitive DataKind = iota
	KindOpaque
	KindStruct
	KindUnion
	KindEnum
	KindPrefix
	KindTransparent
)

var dataKindNames = [...]string{
	KindPrimitive:   "primitive",
	KindOpaque:      "opaque",
	KindStruct:      "struct",
	KindUnion:       "union",
	KindEnum:        "enum",
	KindPrefix:      "prefix",
	KindTransparent: "transparent",
}

func (k DataKind) String() string {
	if int(k) < len(dataKindNames) {
		return dataKindNames[k]
	}
	return "unknown"
}

// Prim identifies a compiler-defined primitive type.
type Prim uint8

const (
	PrimBool Prim = iota
	PrimU8
	PrimI8
	PrimU16
	PrimI16
	PrimU32
	PrimI32
	PrimU64
	PrimI64
	PrimUsize
	PrimIsize
	PrimF32
	PrimF64
	PrimChar
	PrimSharedRef
	PrimMutRef
	PrimConstPtr
	PrimMutPtr
	PrimArray
)

var primNames = [...]string{
	PrimBool:      "bool",
	PrimU8:        "u8",
	PrimI8:        "i8",
	PrimU16:       "u16",
	PrimI16:       "i16",
	PrimU32:       "u32",
	PrimI32:       "i32",
	PrimU64:       "u64",
	PrimI64:       "i64",
	PrimUsize:     "usize",
	PrimIsize:     "isize",
	PrimF32:       "f32",
	PrimF64:       "f64",
	PrimChar:      "char",
	PrimSharedRef: "&",
	PrimMutRef:    "&mut",
	PrimConstPtr:  "*const",
	PrimMutPtr:    "*mut",
	PrimArray:     "array",
}

func (p Prim) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "unknown"
}

// IsPointer reports whether the primitive is a reference or raw pointer.
func (p Prim) IsPointer() bool {
	switch p {
	case PrimSharedRef, PrimMutRef, PrimConstPtr, PrimMutPtr:
		return true
	default:
		return false
	}
}

// DiscriminantRepr is the integer representation backing an enum's
// discriminant.
type DiscriminantRepr uint8

const (
	DiscrU8 DiscriminantRepr = iota
	DiscrI8
	DiscrU16
	DiscrI16
	DiscrU32
	DiscrI32
	DiscrU64
	DiscrI64
	DiscrUsize
	DiscrIsize
)

var discrNames = [...]string{
	DiscrU8:    "u8",
	DiscrI8:    "i8",
	DiscrU16:   "u16",
	DiscrI16:   "i16",
	DiscrU32:   "u32",
	DiscrI32:   "i32",
	DiscrU64:   "u64",
	DiscrI64:   "i64",
	DiscrUsize: "usize",
	DiscrIsize: "isize",
}

func (d DiscriminantRepr) String() string {
	if int(d) < len(discrNames) {
		return discrNames[d]
	}
	return "unknown"
}

// Size returns the byte size of the discriminant representation.
func (d DiscriminantRepr) Size() uint32 {
	switch d {
	case DiscrU8, DiscrI8:
		return 1
	case DiscrU16, DiscrI16:
		return 2
	case DiscrU32, DiscrI32:
		return 4
	default:
		return 8
	}
}

// ReprAttr is the representation attribute a type was declared with.
type ReprAttr uint8

const (
	ReprC ReprAttr = iota
	ReprTransparent
	ReprPacked
	ReprInt
)

var reprNames = [...]string{
	ReprC:           "C",
	ReprTransparent: "transparent",
	ReprPacked:      "packed",
	ReprInt:         "int",
}

func (r ReprAttr) String() string {
	if int(r) < len(reprNames) {
		return reprNames[r]
	}
	return "unknown"
}
