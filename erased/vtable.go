package erased

import (
	"encoding"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/abi-runtime/errors"
	"github.com/wippyai/abi-runtime/layout"
)

// Process-unique type identifiers, one per concrete Go type. Distinct
// from layout ids: two vtables for the same type with different
// capability sets share a type id, so downcasting works across them.
var (
	typeIDs       sync.Map // reflect.Type -> uint64
	typeIDCounter atomic.Uint64

	// vtables indexes the first vtable built per type id, for
	// downcast diagnostics.
	vtables sync.Map // uint64 -> *VTable
)

func typeIDFor(t reflect.Type) uint64 {
	if id, ok := typeIDs.Load(t); ok {
		return id.(uint64)
	}
	id, _ := typeIDs.LoadOrStore(t, typeIDCounter.Add(1))
	return id.(uint64)
}

// VTable is the fixed operation table erased values dispatch through.
// One slot per capability; disabled slots are nil and calling their
// accessor on a handle panics. A VTable is built once per concrete
// type and capability set and is immutable afterwards.
type VTable struct {
	typeID    uint64
	typeName  string
	layoutRef layout.Ref
	caps      CapabilitySet
	shareable bool

	drop func(any)

	clone       func(any) any
	debug       func(any) string
	display     func(any) string
	eq          func(any, any) bool
	cmp         func(any, any) int
	hash        func(any) uint64
	next        func(any) (any, bool)
	nextBack    func(any) (any, bool)
	read        func(any, []byte) (int, error)
	write       func(any, []byte) (int, error)
	seek        func(any, int64, int) (int64, error)
	peek        func(any, int) ([]byte, error)
	discard     func(any, int) (int, error)
	writeString func(any, string) error
	errMsg      func(any) string
	newDefault  func() any
	serialize   func(any) ([]byte, error)
	deserialize func([]byte) (any, error)
}

// TypeID returns the process-unique identifier of the concrete type.
func (vt *VTable) TypeID() uint64 { return vt.typeID }

// TypeName returns the registered name of the concrete type.
func (vt *VTable) TypeName() string { return vt.typeName }

// Capabilities returns the capability set the vtable was built with.
func (vt *VTable) Capabilities() CapabilitySet { return vt.caps }

// Shareable reports whether handles over this vtable may be used from
// multiple goroutines. Decided at registration, never inferred later.
func (vt *VTable) Shareable() bool { return vt.shareable }

// TypeLayout returns the layout of the erased concrete type, or nil
// when the registrant did not supply one.
func (vt *VTable) TypeLayout() *layout.TypeLayout {
	if vt.layoutRef == nil {
		return nil
	}
	return vt.layoutRef()
}

// Builder assembles a vtable for concrete type T. Capabilities with a
// standard-library shape (Display, Read, Write, Seek, Error, ...) are
// derived from interfaces T already implements; the rest take
// explicit functions. Build fails if a requested capability has
// neither.
type Builder[T any] struct {
	typeName  string
	layoutRef layout.Ref
	shareable bool

	drop        func(T)
	clone       func(T) T
	debug       func(T) string
	display     func(T) string
	eq          func(T, T) bool
	cmp         func(T, T) int
	hash        func(T) uint64
	next        func(T) (any, bool)
	nextBack    func(T) (any, bool)
	serialize   func(T) ([]byte, error)
	deserialize func([]byte) (T, error)
}

// NewBuilder starts a vtable for T under the given diagnostic name.
// The layout ref may be nil when the type is not describable.
func NewBuilder[T any](typeName string, ref layout.Ref) *Builder[T] {
	return &Builder[T]{typeName: typeName, layoutRef: ref}
}

// Shareable marks handles as safe to use from multiple goroutines.
func (b *Builder[T]) Shareable() *Builder[T] {
	b.shareable = true
	return b
}

// OnDrop sets the destructor the owning handle runs. Without it, a
// type implementing io.Closer is closed; anything else drops silently.
func (b *Builder[T]) OnDrop(fn func(T)) *Builder[T] {
	b.drop = fn
	return b
}

// Clone supplies the clone operation.
func (b *Builder[T]) Clone(fn func(T) T) *Builder[T] {
	b.clone = fn
	return b
}

// Debug supplies the verbose formatter. Without it, Build derives one
// from fmt.
func (b *Builder[T]) Debug(fn func(T) string) *Builder[T] {
	b.debug = fn
	return b
}

// Display supplies the user-facing formatter. Without it, Build uses
// fmt.Stringer when T implements it.
func (b *Builder[T]) Display(fn func(T) string) *Builder[T] {
	b.display = fn
	return b
}

// Eq supplies equality. Without it, Build derives == for comparable T.
func (b *Builder[T]) Eq(fn func(T, T) bool) *Builder[T] {
	b.eq = fn
	return b
}

// Ord supplies the three-way comparison.
func (b *Builder[T]) Ord(fn func(T, T) int) *Builder[T] {
	b.cmp = fn
	return b
}

// Hash supplies the hash operation.
func (b *Builder[T]) Hash(fn func(T) uint64) *Builder[T] {
	b.hash = fn
	return b
}

// Iterator supplies the forward iteration step.
func (b *Builder[T]) Iterator(next func(T) (any, bool)) *Builder[T] {
	b.next = next
	return b
}

// DoubleEnded supplies the back-to-front iteration step.
func (b *Builder[T]) DoubleEnded(nextBack func(T) (any, bool)) *Builder[T] {
	b.nextBack = nextBack
	return b
}

// Serialize supplies serialization. Without it, Build uses
// encoding.BinaryMarshaler when T implements it.
func (b *Builder[T]) Serialize(fn func(T) ([]byte, error)) *Builder[T] {
	b.serialize = fn
	return b
}

// Deserialize supplies deserialization. Without it, Build uses
// encoding.BinaryUnmarshaler when *T implements it.
func (b *Builder[T]) Deserialize(fn func([]byte) (T, error)) *Builder[T] {
	b.deserialize = fn
	return b
}

// bufReader is the shape the io_bufread capability derives from;
// *bufio.Reader satisfies it.
type bufReader interface {
	Peek(int) ([]byte, error)
	Discard(int) (int, error)
}

// iterator lets a type carry its own iteration instead of an explicit
// Builder.Iterator func.
type iterator interface {
	Next() (any, bool)
}

type backIterator interface {
	NextBack() (any, bool)
}

// Build assembles the vtable for the requested capability set. Every
// requested capability must be explicitly supplied or derivable from
// T; otherwise Build returns a structured registration error and no
// vtable.
func Build[T any](b *Builder[T], caps CapabilitySet) (*VTable, error) {
	var zero T
	rt := reflect.TypeOf(&zero).Elem()

	vt := &VTable{
		typeID:    typeIDFor(rt),
		typeName:  b.typeName,
		layoutRef: b.layoutRef,
		caps:      caps,
		shareable: b.shareable,
	}

	vt.drop = func(v any) {
		if b.drop != nil {
			b.drop(v.(T))
			return
		}
		if closer, ok := v.(io.Closer); ok {
			_ = closer.Close()
		}
	}

	var missing []string
	need := func(c Capability, ok bool) bool {
		if !caps.Has(c) {
			return false
		}
		if !ok {
			missing = append(missing, c.String())
			return false
		}
		return true
	}

	if need(CapClone, b.clone != nil) {
		vt.clone = func(v any) any { return b.clone(v.(T)) }
	}
	if caps.Has(CapDebug) {
		if b.debug != nil {
			vt.debug = func(v any) string { return b.debug(v.(T)) }
		} else {
			vt.debug = func(v any) string { return fmt.Sprintf("%+v", v) }
		}
	}
	_, isStringer := any(zero).(fmt.Stringer)
	if need(CapDisplay, b.display != nil || isStringer) {
		if b.display != nil {
			vt.display = func(v any) string { return b.display(v.(T)) }
		} else {
			vt.display = func(v any) string { return v.(fmt.Stringer).String() }
		}
	}
	if need(CapEq, b.eq != nil || rt.Comparable()) {
		if b.eq != nil {
			vt.eq = func(a, o any) bool { return b.eq(a.(T), o.(T)) }
		} else {
			vt.eq = func(a, o any) bool { return a == o }
		}
	}
	if need(CapOrd, b.cmp != nil) {
		vt.cmp = func(a, o any) int { return b.cmp(a.(T), o.(T)) }
	}
	if need(CapHash, b.hash != nil) {
		vt.hash = func(v any) uint64 { return b.hash(v.(T)) }
	}
	_, isIter := any(zero).(iterator)
	if need(CapIterator, b.next != nil || isIter) {
		if b.next != nil {
			vt.next = func(v any) (any, bool) { return b.next(v.(T)) }
		} else {
			vt.next = func(v any) (any, bool) { return v.(iterator).Next() }
		}
	}
	_, isBackIter := any(zero).(backIterator)
	if need(CapDoubleEndedIterator, b.nextBack != nil || isBackIter) {
		if b.nextBack != nil {
			vt.nextBack = func(v any) (any, bool) { return b.nextBack(v.(T)) }
		} else {
			vt.nextBack = func(v any) (any, bool) { return v.(backIterator).NextBack() }
		}
	}
	_, isReader := any(zero).(io.Reader)
	if need(CapRead, isReader) {
		vt.read = func(v any, p []byte) (int, error) { return v.(io.Reader).Read(p) }
	}
	_, isWriter := any(zero).(io.Writer)
	if need(CapWrite, isWriter) {
		vt.write = func(v any, p []byte) (int, error) { return v.(io.Writer).Write(p) }
	}
	_, isSeeker := any(zero).(io.Seeker)
	if need(CapSeek, isSeeker) {
		vt.seek = func(v any, off int64, whence int) (int64, error) {
			return v.(io.Seeker).Seek(off, whence)
		}
	}
	_, isBuf := any(zero).(bufReader)
	if need(CapBufRead, isBuf) {
		vt.peek = func(v any, n int) ([]byte, error) { return v.(bufReader).Peek(n) }
		vt.discard = func(v any, n int) (int, error) { return v.(bufReader).Discard(n) }
	}
	_, isStrWriter := any(zero).(io.StringWriter)
	if need(CapFmtWrite, isStrWriter) {
		vt.writeString = func(v any, s string) error {
			_, err := v.(io.StringWriter).WriteString(s)
			return err
		}
	}
	_, isErr := any(zero).(error)
	if need(CapError, isErr) {
		vt.errMsg = func(v any) string { return v.(error).Error() }
	}
	if caps.Has(CapDefault) {
		vt.newDefault = func() any {
			var v T
			return v
		}
	}
	_, isMarshaler := any(zero).(encoding.BinaryMarshaler)
	if need(CapSerialize, b.serialize != nil || isMarshaler) {
		if b.serialize != nil {
			vt.serialize = func(v any) ([]byte, error) { return b.serialize(v.(T)) }
		} else {
			vt.serialize = func(v any) ([]byte, error) {
				return v.(encoding.BinaryMarshaler).MarshalBinary()
			}
		}
	}
	_, isUnmarshaler := any(&zero).(encoding.BinaryUnmarshaler)
	if need(CapDeserialize, b.deserialize != nil || isUnmarshaler) {
		if b.deserialize != nil {
			vt.deserialize = func(data []byte) (any, error) { return b.deserialize(data) }
		} else {
			vt.deserialize = func(data []byte) (any, error) {
				var v T
				err := any(&v).(encoding.BinaryUnmarshaler).UnmarshalBinary(data)
				return v, err
			}
		}
	}

	if len(missing) > 0 {
		return nil, errors.New(errors.PhaseRegister, errors.KindUnimplemented).
			Impl(b.typeName).
			Detail("requested capabilities with no implementation: %v", missing).
			Build()
	}

	vtables.LoadOrStore(vt.typeID, vt)
	Logger().Debug("vtable built",
		zap.String("type", vt.typeName),
		zap.Uint64("type_id", vt.typeID),
		zap.String("capabilities", vt.caps.String()),
	)
	return vt, nil
}

// MustBuild is Build, panicking on registration errors. Registration
// failures are programmer errors, so most callers use this form.
func MustBuild[T any](b *Builder[T], caps CapabilitySet) *VTable {
	vt, err := Build(b, caps)
	if err != nil {
		panic(err)
	}
	return vt
}
