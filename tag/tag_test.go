package tag

import (
	"strings"
	"testing"
)

func TestCheckNullMatchesAnything(t *testing.T) {
	targets := []Tag{
		Null(), Bool(true), Int(-3), UInt(7), Str("hi"),
		Arr(Int(1)), NewSet(Str("a")), NewMap(KV(Str("k"), Int(1))),
	}
	for _, impl := range targets {
		if errs := Check(Null(), impl); errs != nil {
			t.Errorf("Null vs %s: %v", impl, errs)
		}
	}
}

func TestCheckScalars(t *testing.T) {
	tests := []struct {
		name  string
		iface Tag
		impl  Tag
		kind  ErrorKind
		ok    bool
	}{
		{"equal bools", Bool(true), Bool(true), 0, true},
		{"unequal bools", Bool(true), Bool(false), MismatchedValue, false},
		{"equal ints", Int(-5), Int(-5), 0, true},
		{"unequal ints", Int(-5), Int(5), MismatchedValue, false},
		{"equal strings", Str("abc"), Str("abc"), 0, true},
		{"unequal strings", Str("abc"), Str("abd"), MismatchedValue, false},
		{"int vs uint", Int(5), UInt(5), MismatchedDiscriminant, false},
		{"impl null is not a wildcard", Str("abc"), Null(), MismatchedDiscriminant, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := Check(tc.iface, tc.impl)
			if tc.ok {
				if errs != nil {
					t.Fatalf("unexpected failure: %v", errs)
				}
				return
			}
			if errs == nil {
				t.Fatal("expected a failure")
			}
			if errs.Variants[0].Kind != tc.kind {
				t.Errorf("kind = %s, want %s", errs.Variants[0].Kind, tc.kind)
			}
		})
	}
}

func TestCheckArrays(t *testing.T) {
	if errs := Check(Arr(Int(1), Str("a")), Arr(Int(1), Str("a"))); errs != nil {
		t.Errorf("equal arrays: %v", errs)
	}
	if errs := Check(Arr(Int(1), Null()), Arr(Int(1), Str("anything"))); errs != nil {
		t.Errorf("null element should match: %v", errs)
	}

	errs := Check(Arr(Int(1)), Arr(Int(1), Int(2)))
	if errs == nil || errs.Variants[0].Kind != MismatchedArrayLength {
		t.Errorf("length mismatch not reported: %v", errs)
	}

	errs = Check(Arr(Int(1), Int(2)), Arr(Int(2), Int(1)))
	if errs == nil {
		t.Fatal("arrays are ordered; reordering must fail")
	}
	if errs.Variants[0].Kind != MismatchedValue {
		t.Errorf("kind = %s, want %s", errs.Variants[0].Kind, MismatchedValue)
	}
	if len(errs.Backtrace) == 0 {
		t.Error("element failure should carry a backtrace")
	}
}

func TestCheckSetSubset(t *testing.T) {
	impl := NewSet(Str("clone"), Str("debug"), Str("hash"))

	if errs := Check(NewSet(Str("debug")), impl); errs != nil {
		t.Errorf("subset should pass: %v", errs)
	}
	if errs := Check(impl, impl); errs != nil {
		t.Errorf("equal sets should pass: %v", errs)
	}

	errs := Check(NewSet(Str("ord")), impl)
	if errs == nil || errs.Variants[0].Kind != MissingSetValue {
		t.Fatalf("missing element not reported: %v", errs)
	}
	if errs.Variants[0].Found == nil {
		t.Error("diagnostic should name the closest non-matching entry")
	}

	big := NewSet(Str("a"), Str("b"), Str("c"), Str("d"))
	errs = Check(big, NewSet(Str("a")))
	if errs == nil || errs.Variants[0].Kind != MismatchedAssocLength {
		t.Errorf("oversized interface set not reported: %v", errs)
	}
}

func TestCheckMapSubset(t *testing.T) {
	impl := NewMap(
		KV(Str("abi"), Str("0.11")),
		KV(Str("layout"), Str("v2")),
	)

	if errs := Check(NewMap(KV(Str("abi"), Str("0.11"))), impl); errs != nil {
		t.Errorf("subset should pass: %v", errs)
	}
	if errs := Check(NewMap(KV(Str("abi"), Null())), impl); errs != nil {
		t.Errorf("null value should match any value: %v", errs)
	}

	errs := Check(NewMap(KV(Str("abi"), Str("0.12"))), impl)
	if errs == nil || errs.Variants[0].Kind != MismatchedMapEntry {
		t.Errorf("wrong value not reported: %v", errs)
	}
}

func TestSetNormalization(t *testing.T) {
	a := NewSet(Str("b"), Str("a"), Str("b"), Null())
	b := NewSet(Str("a"), Str("b"))

	if !a.equal(b) {
		t.Errorf("normalization: %s != %s", a, b)
	}
	if a.String() != `{"a", "b"}` {
		t.Errorf("String() = %s", a)
	}
}

func TestMapNormalizationKeepsLastValue(t *testing.T) {
	m := NewMap(
		KV(Str("k"), Int(1)),
		KV(Str("k"), Int(2)),
		KV(Null(), Int(3)),
	)
	want := NewMap(KV(Str("k"), Int(2)))

	if !m.equal(want) {
		t.Errorf("normalization: %s != %s", m, want)
	}
}

func TestErrorsRendering(t *testing.T) {
	errs := Check(Arr(Str("x")), Arr(Str("y")))
	if errs == nil {
		t.Fatal("expected a failure")
	}
	msg := errs.Error()
	for _, frag := range []string{`"x"`, `"y"`, "mismatched value"} {
		if !strings.Contains(msg, frag) {
			t.Errorf("Error() = %q, missing %q", msg, frag)
		}
	}
}
