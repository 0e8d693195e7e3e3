package check

import (
	"strings"
	"testing"

	"github.com/wippyai/abi-runtime/layout"
	"github.com/wippyai/abi-runtime/tag"
)

func u32L() *layout.TypeLayout {
	return layout.New("u32", 4, 4, layout.Primitive{Prim: layout.PrimU32})
}

func u64L() *layout.TypeLayout {
	return layout.New("u64", 8, 8, layout.Primitive{Prim: layout.PrimU64})
}

func field(name string, l *layout.TypeLayout) layout.Field {
	return layout.Field{Name: name, Layout: layout.DirectRef(l)}
}

func structL(name string, size, align uint32, fields ...layout.Field) *layout.TypeLayout {
	return layout.New(name, size, align, layout.Struct{Fields: fields})
}

func asError(t *testing.T, err error) *Error {
	t.Helper()
	if err == nil {
		t.Fatal("expected a check error, got nil")
	}
	ce, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *check.Error, got %T: %v", err, err)
	}
	return ce
}

func TestCheckReflexive(t *testing.T) {
	disc := int64(1)
	layouts := map[string]*layout.TypeLayout{
		"primitive": u64L(),
		"struct": structL("Point", 16, 8,
			field("x", u64L()), field("y", u64L())),
		"enum": layout.New("Shape", 8, 4, layout.Enum{
			Repr: layout.DiscrU32,
			Variants: []layout.Variant{
				{Name: "Circle", Fields: []layout.Field{field("r", u32L())}},
				{Name: "Square", Discriminant: &disc},
			},
		}),
		"prefix": layout.New("Module", 16, 8, layout.Prefix{
			FirstSuffixField: 1,
			Fields:           []layout.Field{field("a", u64L()), field("b", u64L())},
		}),
		"opaque": layout.New("Blob", 24, 8, layout.Opaque{}),
		"tagged": layout.New("Tagged", 4, 4, layout.Primitive{Prim: layout.PrimU32},
			layout.WithTag(tag.NewSet(tag.Str("Send")))),
	}

	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			if err := Check(l, l); err != nil {
				t.Errorf("Check(L, L) = %v, want nil", err)
			}
		})
	}
}

func TestFieldOrderInvariance(t *testing.T) {
	a := structL("Pair", 16, 8, field("x", u32L()), field("y", u64L()))
	b := structL("Pair", 16, 8, field("y", u64L()), field("x", u32L()))

	if err := Check(a, b); err != nil {
		t.Errorf("permuted fields should be compatible: %v", err)
	}
	if err := Check(b, a); err != nil {
		t.Errorf("permuted fields should be compatible in reverse: %v", err)
	}
}

func TestFieldRemoval(t *testing.T) {
	full := structL("Pair", 16, 8, field("x", u32L()), field("y", u64L()))
	trimmed := structL("Pair", 8, 8, field("y", u64L()))

	ce := asError(t, Check(full, trimmed))
	if !ce.Has(KindFieldCount) {
		t.Errorf("missing field count error in %v", ce)
	}
	if !ce.Has(KindSize) {
		t.Errorf("missing size error in %v", ce)
	}
	if !ce.Has(KindUnexpectedField) {
		t.Errorf("missing unexpected field error in %v", ce)
	}

	ce = asError(t, Check(trimmed, full))
	if !ce.Has(KindFieldCount) {
		t.Errorf("missing field count error in reverse direction: %v", ce)
	}
}

func TestNameSensitivity(t *testing.T) {
	a := structL("Point", 16, 8, field("x", u64L()), field("y", u64L()))
	b := structL("Coord", 16, 8, field("x", u64L()), field("y", u64L()))

	ce := asError(t, Check(a, b))
	if !ce.Has(KindName) {
		t.Errorf("renamed type should report a name mismatch: %v", ce)
	}
}

func enumL(name string, variants []string, nonExhaustive bool) *layout.TypeLayout {
	vs := make([]layout.Variant, len(variants))
	for i, v := range variants {
		vs[i] = layout.Variant{Name: v}
	}
	data := layout.Enum{Repr: layout.DiscrU8, Variants: vs}
	if nonExhaustive {
		data.NonExhaustive = true
		data.StorageSize = 8
		data.StorageAlign = 8
	}
	return layout.New(name, 1, 1, data)
}

func TestEnumGrowth(t *testing.T) {
	iface := enumL("Event", []string{"A", "B"}, true)
	impl := enumL("Event", []string{"A", "B", "C"}, true)

	if err := Check(iface, impl); err != nil {
		t.Errorf("nonexhaustive interface should accept grown enum: %v", err)
	}

	ce := asError(t, Check(impl, iface))
	if !ce.Has(KindMissingVariants) {
		t.Errorf("shrunk enum should report missing variants: %v", ce)
	}
	if ce.Has(KindTooManyVariants) {
		t.Errorf("shrunk enum must not read as having too many variants: %v", ce)
	}
}

func TestEnumExhaustiveRejectsGrowth(t *testing.T) {
	iface := enumL("Event", []string{"A", "B"}, false)
	impl := enumL("Event", []string{"A", "B", "C"}, false)

	ce := asError(t, Check(iface, impl))
	if !ce.Has(KindTooManyVariants) {
		t.Errorf("exhaustive enum must reject extra variants: %v", ce)
	}
}

func TestEnumVariantRename(t *testing.T) {
	iface := enumL("Event", []string{"A", "B"}, false)
	impl := enumL("Event", []string{"A", "X"}, false)

	ce := asError(t, Check(iface, impl))
	if !ce.Has(KindUnexpectedVariant) {
		t.Errorf("renamed variant should be unexpected: %v", ce)
	}
}

func TestEnumDiscriminant(t *testing.T) {
	one, two := int64(1), int64(2)
	mk := func(d *int64) *layout.TypeLayout {
		return layout.New("E", 1, 1, layout.Enum{
			Repr:     layout.DiscrU8,
			Variants: []layout.Variant{{Name: "A", Discriminant: d}},
		})
	}

	if err := Check(mk(&one), mk(&one)); err != nil {
		t.Errorf("equal discriminants should pass: %v", err)
	}
	if err := Check(mk(&one), mk(nil)); err != nil {
		t.Errorf("an unfixed discriminant should not be compared: %v", err)
	}
	ce := asError(t, Check(mk(&one), mk(&two)))
	if !ce.Has(KindEnumDiscriminant) {
		t.Errorf("fixed discriminants must match: %v", ce)
	}
}

func taggedL(name string, t *tag.Tag) *layout.TypeLayout {
	opts := []layout.Option{}
	if t != nil {
		opts = append(opts, layout.WithTag(*t))
	}
	return layout.New(name, 4, 4, layout.Primitive{Prim: layout.PrimU32}, opts...)
}

func TestTagSubsetting(t *testing.T) {
	send := tag.NewSet(tag.Str("Send"))
	sendSync := tag.NewSet(tag.Str("Send"), tag.Str("Sync"))

	if err := Check(taggedL("T", nil), taggedL("T", &send)); err != nil {
		t.Errorf("empty interface tag should accept anything: %v", err)
	}
	ce := asError(t, Check(taggedL("T", &sendSync), taggedL("T", &send)))
	if !ce.Has(KindTag) {
		t.Errorf("interface requiring more than implementation provides: %v", ce)
	}
}

func prefixL(fields []layout.Field, firstSuffix int) *layout.TypeLayout {
	return layout.New("Module", uint32(len(fields))*8, 8, layout.Prefix{
		FirstSuffixField: firstSuffix,
		Fields:           fields,
	})
}

func TestPrefixGrowth(t *testing.T) {
	abc := prefixL([]layout.Field{
		field("a", u64L()), field("b", u64L()), field("c", u64L()),
	}, 2)
	ab := prefixL([]layout.Field{
		field("a", u64L()), field("b", u64L()),
	}, 2)
	abcd := prefixL([]layout.Field{
		field("a", u64L()), field("b", u64L()), field("c", u64L()), field("d", u64L()),
	}, 2)
	changedA := prefixL([]layout.Field{
		field("a", u32L()), field("b", u64L()), field("c", u64L()),
	}, 2)

	if err := Check(abc, ab); err != nil {
		t.Errorf("older callee should satisfy the suffix-tolerant interface: %v", err)
	}
	if err := Check(abc, abcd); err != nil {
		t.Errorf("newer callee should satisfy the interface: %v", err)
	}
	if err := Check(ab, abc); err != nil {
		t.Errorf("older interface should accept a grown record: %v", err)
	}

	if Check(abc, changedA) == nil {
		t.Error("changing a required field's type must be incompatible")
	}
	if Check(changedA, abc) == nil {
		t.Error("changing a required field's type must be incompatible in reverse")
	}
}

func TestPrefixMissingRequiredField(t *testing.T) {
	iface := prefixL([]layout.Field{
		field("a", u64L()), field("b", u64L()), field("c", u64L()),
	}, 3)
	impl := prefixL([]layout.Field{
		field("a", u64L()), field("b", u64L()),
	}, 3)

	ce := asError(t, Check(iface, impl))
	if !ce.Has(KindFieldCount) {
		t.Errorf("required prefix field missing: %v", ce)
	}
	if !ce.Has(KindPrefixFieldCount) {
		t.Errorf("missing field should be named: %v", ce)
	}
}

func TestUnionFields(t *testing.T) {
	mk := func(fields ...layout.Field) *layout.TypeLayout {
		return layout.New("Slot", 8, 8, layout.Union{Fields: fields})
	}
	canonical := mk(field("bits", u64L()), field("value", u64L()))
	permuted := mk(field("value", u64L()), field("bits", u64L()))

	if err := Check(canonical, permuted); err != nil {
		t.Errorf("permuted union fields should be compatible: %v", err)
	}

	renamed := mk(field("bits", u64L()), field("raw", u64L()))
	ce := asError(t, Check(canonical, renamed))
	if !ce.Has(KindUnexpectedField) {
		t.Errorf("renamed union field should be unexpected: %v", ce)
	}

	trimmed := mk(field("bits", u64L()))
	ce = asError(t, Check(canonical, trimmed))
	if !ce.Has(KindFieldCount) {
		t.Errorf("removed union field should count: %v", ce)
	}
}

func TestReprAttr(t *testing.T) {
	mk := func(r layout.ReprAttr) *layout.TypeLayout {
		return layout.New("Raw", 8, 8,
			layout.Struct{Fields: []layout.Field{field("v", u64L())}},
			layout.WithRepr(r))
	}

	if err := Check(mk(layout.ReprC), mk(layout.ReprC)); err != nil {
		t.Errorf("equal repr attributes should pass: %v", err)
	}
	ce := asError(t, Check(mk(layout.ReprC), mk(layout.ReprPacked)))
	if !ce.Has(KindReprAttr) {
		t.Errorf("changed repr attribute must be reported: %v", ce)
	}
}

func TestPhantomFields(t *testing.T) {
	mk := func(phantom ...layout.Field) *layout.TypeLayout {
		return layout.New("Holder", 8, 8,
			layout.Struct{Fields: []layout.Field{field("v", u64L())}},
			layout.WithPhantomFields(phantom...))
	}

	if err := Check(mk(field("marker", u32L())), mk(field("marker", u32L()))); err != nil {
		t.Errorf("equal phantom fields should pass: %v", err)
	}

	ce := asError(t, Check(mk(field("marker", u32L())), mk()))
	if !ce.Has(KindFieldCount) {
		t.Errorf("dropped phantom field should count: %v", ce)
	}

	ce = asError(t, Check(mk(field("marker", u32L())), mk(field("marker", u64L()))))
	if !ce.Has(KindSize) {
		t.Errorf("a phantom field's type must be checked like any field's: %v", ce)
	}
}

func TestFieldLifetimeIndices(t *testing.T) {
	mk := func(indices ...uint8) *layout.TypeLayout {
		return layout.New("Borrowed", 8, 8, layout.Struct{
			Fields: []layout.Field{{
				Name:            "ptr",
				LifetimeIndices: indices,
				Layout:          layout.DirectRef(u64L()),
			}},
		}, layout.WithGenerics(layout.GenericParams{Lifetimes: []string{"'a", "'b"}}))
	}

	if err := Check(mk(0), mk(0)); err != nil {
		t.Errorf("equal lifetime indices should pass: %v", err)
	}
	ce := asError(t, Check(mk(0), mk(1)))
	if !ce.Has(KindFieldLifetime) {
		t.Errorf("changed lifetime index must be reported: %v", ce)
	}
	ce = asError(t, Check(mk(0), mk(0, 1)))
	if !ce.Has(KindFieldLifetime) {
		t.Errorf("extra lifetime index must be reported: %v", ce)
	}
}

func TestFunctionPointerSubfields(t *testing.T) {
	fn := func(params ...layout.Field) layout.Field {
		return layout.Field{
			Name:      "callback",
			Layout:    layout.DirectRef(layout.New("fn_ptr", 8, 8, layout.Opaque{})),
			Subfields: params,
		}
	}
	mk := func(f layout.Field) *layout.TypeLayout {
		return layout.New("Hooks", 8, 8, layout.Struct{Fields: []layout.Field{f}})
	}

	twoArg := mk(fn(field("arg0", u64L()), field("ret", u32L())))
	sameSig := mk(fn(field("arg0", u64L()), field("ret", u32L())))
	if err := Check(twoArg, sameSig); err != nil {
		t.Errorf("equal signatures should pass: %v", err)
	}

	widened := mk(fn(field("arg0", u64L()), field("ret", u64L())))
	ce := asError(t, Check(twoArg, widened))
	if !ce.Has(KindSize) {
		t.Errorf("changed parameter type must be reported: %v", ce)
	}

	oneArg := mk(fn(field("arg0", u64L())))
	ce = asError(t, Check(twoArg, oneArg))
	if !ce.Has(KindFieldCount) {
		t.Errorf("dropped parameter should count: %v", ce)
	}
}

func TestOpaqueEscapeHatch(t *testing.T) {
	a := layout.New("SecretA", 16, 8, layout.Opaque{})
	b := layout.New("SecretB", 16, 8, layout.Opaque{})

	if err := Check(a, b); err != nil {
		t.Errorf("equal-shaped opaque blobs must be compatible: %v", err)
	}

	c := layout.New("SecretC", 24, 8, layout.Opaque{})
	ce := asError(t, Check(a, c))
	if !ce.Has(KindSize) {
		t.Errorf("opaque blobs of different size: %v", ce)
	}
}

func selfRefL(name string) *layout.TypeLayout {
	var l *layout.TypeLayout
	l = layout.New(name, 8, 8, layout.Struct{
		Fields: []layout.Field{{
			Name:   "next",
			Layout: func() *layout.TypeLayout { return l },
		}},
	})
	return l
}

func TestSelfReferentialTermination(t *testing.T) {
	a := selfRefL("Node")
	b := selfRefL("Node")

	if err := Check(a, b); err != nil {
		t.Errorf("two equal self-referential layouts should check clean: %v", err)
	}
}

func TestMutuallyReferentialTermination(t *testing.T) {
	mk := func() *layout.TypeLayout {
		reg := layout.NewRegistry()
		aRef := reg.Register("A", func() *layout.TypeLayout {
			return layout.New("A", 8, 8, layout.Struct{
				Fields: []layout.Field{{Name: "b", Layout: reg.Lookup("B")}},
			})
		})
		reg.Register("B", func() *layout.TypeLayout {
			return layout.New("B", 8, 8, layout.Struct{
				Fields: []layout.Field{{Name: "a", Layout: reg.Lookup("A")}},
			})
		})
		return aRef()
	}

	if err := Check(mk(), mk()); err != nil {
		t.Errorf("mutually-referential layouts should check clean: %v", err)
	}
}

func TestPackageVersion(t *testing.T) {
	mk := func(version string) *layout.TypeLayout {
		return layout.New("T", 4, 4, layout.Primitive{Prim: layout.PrimU32},
			layout.WithPackage("plugin", version))
	}

	tests := []struct {
		name  string
		iface string
		impl  string
		want  Kind
		ok    bool
	}{
		{"newer minor", "1.2.0", "1.3.0", 0, true},
		{"equal", "1.2.0", "1.2.0", 0, true},
		{"older minor", "1.3.0", "1.2.0", KindPackageVersion, false},
		{"major bump", "1.2.0", "2.0.0", KindPackageVersion, false},
		{"zero major minor drift", "0.2.0", "0.3.0", KindPackageVersion, false},
		{"zero major patch growth", "0.2.1", "0.2.5", 0, true},
		{"unparsable", "1.2.0", "not-a-version", KindVersionParse, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(mk(tc.iface), mk(tc.impl))
			if tc.ok {
				if err != nil {
					t.Errorf("Check = %v, want nil", err)
				}
				return
			}
			ce := asError(t, err)
			if !ce.Has(tc.want) {
				t.Errorf("missing %s in %v", tc.want, ce)
			}
		})
	}
}

func TestNestedFieldPath(t *testing.T) {
	inner := structL("Inner", 8, 8, field("v", u64L()))
	innerBad := structL("Inner", 4, 4, field("v", u32L()))
	outer := structL("Outer", 8, 8, field("inner", inner))
	outerBad := structL("Outer", 4, 4, field("inner", innerBad))

	ce := asError(t, Check(outer, outerBad))
	found := false
	for _, le := range ce.Errors {
		if len(le.Path) > 0 && le.Path[0] == "inner" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a report under the inner field, got %v", ce)
	}
	if !strings.Contains(ce.Error(), "inner") {
		t.Errorf("rendered report should name the field path: %s", ce.Error())
	}
}

func TestGenericParams(t *testing.T) {
	mk := func(params ...*layout.TypeLayout) *layout.TypeLayout {
		refs := make([]layout.Ref, len(params))
		for i, p := range params {
			refs[i] = layout.DirectRef(p)
		}
		return layout.New("Vec", 8, 8,
			layout.Struct{Fields: []layout.Field{field("ptr", u64L())}},
			layout.WithGenerics(layout.GenericParams{Types: refs}))
	}

	if err := Check(mk(u64L()), mk(u64L())); err != nil {
		t.Errorf("same type arguments should pass: %v", err)
	}
	ce := asError(t, Check(mk(u64L()), mk(u32L())))
	if len(ce.Errors) == 0 {
		t.Error("different type arguments must fail")
	}
	ce = asError(t, Check(mk(u64L()), mk(u64L(), u32L())))
	if !ce.Has(KindGenericParamCount) {
		t.Errorf("parameter count mismatch: %v", ce)
	}
}

func TestTransparentReducesToInner(t *testing.T) {
	mk := func(inner *layout.TypeLayout) *layout.TypeLayout {
		return layout.New("Wrapper", inner.Size, inner.Align,
			layout.Transparent{Inner: layout.DirectRef(inner)})
	}

	if err := Check(mk(u64L()), mk(u64L())); err != nil {
		t.Errorf("transparent wrappers over equal layouts: %v", err)
	}
	if Check(mk(u64L()), mk(u32L())) == nil {
		t.Error("transparent wrappers over different layouts must fail")
	}
}

func TestAllErrorsAccumulated(t *testing.T) {
	a := layout.New("A", 16, 8, layout.Struct{
		Fields: []layout.Field{field("x", u64L()), field("y", u64L())},
	}, layout.WithNonZero())
	b := layout.New("B", 8, 4, layout.Struct{
		Fields: []layout.Field{field("x", u32L())},
	})

	ce := asError(t, Check(a, b))
	for _, want := range []Kind{KindName, KindSize, KindAlignment, KindNonZeroness, KindFieldCount} {
		if !ce.Has(want) {
			t.Errorf("missing %s in accumulated report %v", want, ce)
		}
	}
}
