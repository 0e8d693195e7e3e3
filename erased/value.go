package erased

import (
	"fmt"
	"reflect"
)

// Mode is the ownership state of an erased handle.
type Mode uint8

const (
	// ModeOwning handles run the stored destructor on Drop and may be
	// consumed by downcast.
	ModeOwning Mode = iota
	// ModeShared is a reborrowed view; it never destructs.
	ModeShared
	// ModeExclusive is a reborrowed view with exclusive access; it
	// never destructs and withholds clone, which would alias it.
	ModeExclusive
)

var modeNames = [...]string{
	ModeOwning:    "owning",
	ModeShared:    "shared",
	ModeExclusive: "exclusive",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Value is an erased handle: a concrete value hidden behind a vtable
// exposing only the capabilities selected at registration. The
// concrete type is recoverable with Downcast when the type ids match.
type Value struct {
	v        any
	vt       *VTable
	mode     Mode
	caps     CapabilitySet
	consumed bool
}

// Erase hides v behind vt, returning the owning handle. The vtable
// must have been built for v's concrete type; mixing them up is a
// programmer error and panics.
func Erase[T any](v T, vt *VTable) *Value {
	var zero T
	if got := typeIDFor(reflect.TypeOf(&zero).Elem()); got != vt.typeID {
		panic(fmt.Sprintf(
			"erased: vtable for %s (id %d) cannot erase a value with type id %d",
			vt.typeName, vt.typeID, got,
		))
	}
	return &Value{v: v, vt: vt, mode: ModeOwning, caps: vt.caps}
}

// VTable returns the handle's vtable.
func (h *Value) VTable() *VTable { return h.vt }

// Mode returns the handle's ownership state.
func (h *Value) Mode() Mode { return h.mode }

// Capabilities returns the handle's effective capability set. An
// exclusive reborrow's set excludes clone even when the vtable has it.
func (h *Value) Capabilities() CapabilitySet { return h.caps }

// Reborrow returns a shared view of the handle. The view uses the
// same vtable without re-checking capabilities and never runs the
// destructor; it must not outlive the handle it came from.
func (h *Value) Reborrow() *Value {
	h.mustLive("reborrow")
	return &Value{v: h.v, vt: h.vt, mode: ModeShared, caps: h.caps}
}

// ReborrowExclusive returns an exclusive view of the handle. Cloning
// through an exclusive view would alias it, so the view's capability
// set withholds clone.
func (h *Value) ReborrowExclusive() *Value {
	h.mustLive("reborrow")
	return &Value{v: h.v, vt: h.vt, mode: ModeExclusive, caps: h.caps.Without(CapClone)}
}

// Drop runs the destructor if this is the original owning handle and
// it has not already been consumed. Dropping a reborrowed view or an
// already-consumed handle does nothing: the owner owns destruction.
func (h *Value) Drop() {
	if h.mode != ModeOwning || h.consumed {
		return
	}
	h.consumed = true
	h.vt.drop(h.v)
}

func (h *Value) mustLive(op string) {
	if h.consumed {
		panic(fmt.Sprintf("erased: %s on a consumed %s handle of %s", op, h.mode, h.vt.typeName))
	}
}

// mustCap panics unless the capability is enabled on this handle.
// Invoking a disabled capability is a programmer error, not a
// recoverable condition; the message names what is missing.
func (h *Value) mustCap(c Capability) {
	h.mustLive(c.String())
	if !h.caps.Has(c) {
		panic(fmt.Sprintf(
			"erased: capability %s is not enabled for %s (enabled: %s)",
			c, h.vt.typeName, h.caps,
		))
	}
}

// Clone returns a new owning handle over a copy of the value.
func (h *Value) Clone() *Value {
	h.mustCap(CapClone)
	return &Value{v: h.vt.clone(h.v), vt: h.vt, mode: ModeOwning, caps: h.vt.caps}
}

// Debug renders the value with the verbose formatter.
func (h *Value) Debug() string {
	h.mustCap(CapDebug)
	return h.vt.debug(h.v)
}

// Display renders the value with the user-facing formatter.
func (h *Value) Display() string {
	h.mustCap(CapDisplay)
	return h.vt.display(h.v)
}

// Equal compares two erased values. Values of different concrete
// types are never equal.
func (h *Value) Equal(other *Value) bool {
	h.mustCap(CapEq)
	other.mustCap(CapEq)
	if h.vt.typeID != other.vt.typeID {
		return false
	}
	return h.vt.eq(h.v, other.v)
}

// Compare orders two erased values of the same concrete type.
// Comparing across types is a programmer error and panics.
func (h *Value) Compare(other *Value) int {
	h.mustCap(CapOrd)
	other.mustCap(CapOrd)
	if h.vt.typeID != other.vt.typeID {
		panic(fmt.Sprintf(
			"erased: ordering %s against %s", h.vt.typeName, other.vt.typeName,
		))
	}
	return h.vt.cmp(h.v, other.v)
}

// Hash returns the value's hash.
func (h *Value) Hash() uint64 {
	h.mustCap(CapHash)
	return h.vt.hash(h.v)
}

// Next advances the iterator and returns the next element.
func (h *Value) Next() (any, bool) {
	h.mustCap(CapIterator)
	return h.vt.next(h.v)
}

// NextBack takes the next element from the back.
func (h *Value) NextBack() (any, bool) {
	h.mustCap(CapDoubleEndedIterator)
	return h.vt.nextBack(h.v)
}

// Read implements io.Reader-style reads through the vtable.
func (h *Value) Read(p []byte) (int, error) {
	h.mustCap(CapRead)
	return h.vt.read(h.v, p)
}

// Write implements io.Writer-style writes through the vtable.
func (h *Value) Write(p []byte) (int, error) {
	h.mustCap(CapWrite)
	return h.vt.write(h.v, p)
}

// Seek implements io.Seeker-style seeking through the vtable.
func (h *Value) Seek(offset int64, whence int) (int64, error) {
	h.mustCap(CapSeek)
	return h.vt.seek(h.v, offset, whence)
}

// Peek returns the next n buffered bytes without consuming them.
func (h *Value) Peek(n int) ([]byte, error) {
	h.mustCap(CapBufRead)
	return h.vt.peek(h.v, n)
}

// Discard skips the next n buffered bytes.
func (h *Value) Discard(n int) (int, error) {
	h.mustCap(CapBufRead)
	return h.vt.discard(h.v, n)
}

// WriteString appends a string through the fmt-write capability.
func (h *Value) WriteString(s string) error {
	h.mustCap(CapFmtWrite)
	return h.vt.writeString(h.v, s)
}

// ErrorMessage returns the value's error message.
func (h *Value) ErrorMessage() string {
	h.mustCap(CapError)
	return h.vt.errMsg(h.v)
}

// Default returns a new owning handle over the type's default value.
func (h *Value) Default() *Value {
	h.mustCap(CapDefault)
	return &Value{v: h.vt.newDefault(), vt: h.vt, mode: ModeOwning, caps: h.vt.caps}
}

// Serialize renders the value to bytes.
func (h *Value) Serialize() ([]byte, error) {
	h.mustCap(CapSerialize)
	return h.vt.serialize(h.v)
}

// Deserialize builds a new owning handle from bytes.
func (h *Value) Deserialize(data []byte) (*Value, error) {
	h.mustCap(CapDeserialize)
	v, err := h.vt.deserialize(data)
	if err != nil {
		return nil, err
	}
	return &Value{v: v, vt: h.vt, mode: ModeOwning, caps: h.vt.caps}, nil
}

// Downcast recovers the concrete value, consuming the handle. The
// type ids must match; a mismatch returns a *MismatchError carrying
// both vtables and never panics. Downcasting a reborrowed view is a
// programmer error (the view does not own the value) and panics.
func Downcast[T any](h *Value) (T, error) {
	var zero T
	h.mustLive("downcast")
	if h.mode != ModeOwning {
		panic(fmt.Sprintf("erased: consuming downcast of a %s handle of %s", h.mode, h.vt.typeName))
	}
	if err := downcastErr[T](h); err != nil {
		return zero, err
	}
	h.consumed = true
	return h.v.(T), nil
}

// DowncastRef recovers the concrete value without consuming the
// handle; it works on reborrowed views too.
func DowncastRef[T any](h *Value) (T, error) {
	var zero T
	h.mustLive("downcast")
	if err := downcastErr[T](h); err != nil {
		return zero, err
	}
	return h.v.(T), nil
}

func downcastErr[T any](h *Value) error {
	var zero T
	want := typeIDFor(reflect.TypeOf(&zero).Elem())
	if want == h.vt.typeID {
		return nil
	}
	var expected *VTable
	if vt, ok := vtables.Load(want); ok {
		expected = vt.(*VTable)
	}
	return &MismatchError{
		ExpectedName: reflect.TypeOf(&zero).Elem().String(),
		Expected:     expected,
		Found:        h.vt,
	}
}
