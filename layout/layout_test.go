package layout

import (
	"strings"
	"testing"
)

func u64L() *TypeLayout {
	return New("u64", 8, 8, Primitive{Prim: PrimU64})
}

func TestNewPanicsOnMalformedDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"nil data", func() {
			New("T", 8, 8, nil)
		}},
		{"alignment not a power of two", func() {
			New("T", 12, 3, Struct{})
		}},
		{"size not a multiple of alignment", func() {
			New("T", 12, 8, Struct{})
		}},
		{"prefix boundary past the fields", func() {
			New("T", 8, 8, Prefix{
				FirstSuffixField: 2,
				Fields:           []Field{{Name: "a", Layout: DirectRef(u64L())}},
			})
		}},
		{"nonexhaustive storage too small", func() {
			New("T", 8, 8, Enum{
				Repr:          DiscrU64,
				Variants:      []Variant{{Name: "A"}},
				NonExhaustive: true,
				StorageSize:   4,
				StorageAlign:  8,
			})
		}},
		{"transparent without inner", func() {
			New("T", 8, 8, Transparent{})
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected a panic")
				}
			}()
			tc.build()
		})
	}
}

func TestTypeIDUniqueAndStable(t *testing.T) {
	a := u64L()
	b := u64L()

	if a.TypeID() != a.TypeID() {
		t.Error("a layout's id must be stable")
	}
	if a.TypeID() == b.TypeID() {
		t.Error("distinct layouts must have distinct ids")
	}
}

func TestFullName(t *testing.T) {
	plain := New("Point", 8, 8, Struct{Fields: []Field{{Name: "x", Layout: DirectRef(u64L())}}})
	if got := plain.FullName(); got != "Point" {
		t.Errorf("FullName = %q, want Point", got)
	}

	generic := New("Vec", 8, 8, Struct{Fields: []Field{{Name: "ptr", Layout: DirectRef(u64L())}}},
		WithGenerics(GenericParams{
			Lifetimes: []string{"'a"},
			Types:     []Ref{DirectRef(u64L())},
			Consts:    []string{"4"},
		}))
	if got := generic.FullName(); got != "Vec<'a, u64, 4>" {
		t.Errorf("FullName = %q", got)
	}
}

func TestTransparentReprForced(t *testing.T) {
	l := New("Wrapper", 8, 8, Transparent{Inner: DirectRef(u64L())})
	if l.Repr != ReprTransparent {
		t.Errorf("Repr = %s, want transparent", l.Repr)
	}
}

func TestFormatTerminatesOnSelfReference(t *testing.T) {
	var node *TypeLayout
	node = New("Node", 8, 8, Struct{
		Fields: []Field{{
			Name:   "next",
			Layout: func() *TypeLayout { return node },
		}},
	})

	out := Format(node)
	if !strings.Contains(out, "Node") {
		t.Errorf("Format output should name the type: %s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("self-reference should be elided: %s", out)
	}
}

func TestFormatPrintsTransparentUnderOwnName(t *testing.T) {
	l := New("Wrapper", 8, 8, Transparent{Inner: DirectRef(u64L())})
	out := Format(l)
	if !strings.HasPrefix(out, "Wrapper") {
		t.Errorf("transparent wrapper should print under its own name: %s", out)
	}
	if !strings.Contains(out, "u64") {
		t.Errorf("wrapped layout should still appear: %s", out)
	}
}

func TestRegistryLazyAndSingleShot(t *testing.T) {
	reg := NewRegistry()
	built := 0
	ref := reg.Register("Lazy", func() *TypeLayout {
		built++
		return u64L()
	})

	if built != 0 {
		t.Fatal("registration must not build")
	}
	if ref() != ref() {
		t.Error("resolution must be stable")
	}
	if built != 1 {
		t.Errorf("built %d times, want 1", built)
	}
	if reg.Lookup("Lazy") == nil {
		t.Error("Lookup should find the registered name")
	}
	if reg.Lookup("Missing") != nil {
		t.Error("Lookup of an unknown name should be nil")
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate registration should panic")
		}
	}()
	reg.Register("Lazy", func() *TypeLayout { return nil })
}

func TestCalculatorStruct(t *testing.T) {
	u32 := New("u32", 4, 4, Primitive{Prim: PrimU32})
	l := New("Mixed", 16, 8, Struct{Fields: []Field{
		{Name: "a", Layout: DirectRef(u32)},
		{Name: "b", Layout: DirectRef(u64L())},
	}})

	info := NewCalculator().Calculate(l)
	if info.Size != 16 || info.Align != 8 {
		t.Errorf("Calculate = %d/%d, want 16/8", info.Size, info.Align)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	wrong := New("Mixed", 24, 8, Struct{Fields: []Field{
		{Name: "a", Layout: DirectRef(u32)},
		{Name: "b", Layout: DirectRef(u64L())},
	}})
	if wrong.Validate() == nil {
		t.Error("declared size 24 should fail validation")
	}
}

func TestCalculatorEnum(t *testing.T) {
	l := New("E", 16, 8, Enum{
		Repr: DiscrU8,
		Variants: []Variant{
			{Name: "A", Fields: []Field{{Name: "v", Layout: DirectRef(u64L())}}},
			{Name: "B"},
		},
	})

	info := NewCalculator().Calculate(l)
	if info.Size != 16 || info.Align != 8 {
		t.Errorf("Calculate = %d/%d, want 16/8", info.Size, info.Align)
	}
}

func TestCalculatorSelfReferential(t *testing.T) {
	var node *TypeLayout
	node = New("Node", 8, 8, Struct{
		Fields: []Field{{
			Name:   "next",
			Layout: func() *TypeLayout { return node },
		}},
	})

	info := NewCalculator().Calculate(node)
	if info.Size != 8 || info.Align != 8 {
		t.Errorf("Calculate = %d/%d, want 8/8", info.Size, info.Align)
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		want string
		kind DataKind
	}{
		{"primitive", KindPrimitive},
		{"opaque", KindOpaque},
		{"struct", KindStruct},
		{"union", KindUnion},
		{"enum", KindEnum},
		{"prefix", KindPrefix},
		{"transparent", KindTransparent},
		{"unknown", DataKind(255)},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDiscriminantReprSize(t *testing.T) {
	tests := []struct {
		repr DiscriminantRepr
		want uint32
	}{
		{DiscrU8, 1}, {DiscrI8, 1},
		{DiscrU16, 2}, {DiscrI16, 2},
		{DiscrU32, 4}, {DiscrI32, 4},
		{DiscrU64, 8}, {DiscrIsize, 8},
	}
	for _, tc := range tests {
		if got := tc.repr.Size(); got != tc.want {
			t.Errorf("%s.Size() = %d, want %d", tc.repr, got, tc.want)
		}
	}
}
