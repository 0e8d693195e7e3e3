package erased

import (
	"sync"

	"github.com/wippyai/abi-runtime/layout"
)

// A vtable is itself a describable prefix record: a fixed header
// every version shares, then one function-pointer slot per enabled
// capability in bit order. New capability slots land at the end, so a
// host built against an older capability set stays compatible with a
// plugin exposing more.

var (
	fnPtrOnce   sync.Once
	fnPtrLayout *layout.TypeLayout

	u64Once   sync.Once
	u64Layout *layout.TypeLayout

	strOnce   sync.Once
	strLayout *layout.TypeLayout
)

func fnPtr() *layout.TypeLayout {
	fnPtrOnce.Do(func() {
		fnPtrLayout = layout.New("fn_ptr", 8, 8, layout.Opaque{},
			layout.WithPackage("abi-runtime", vtableABIVersion),
			layout.WithNonZero(),
		)
	})
	return fnPtrLayout
}

func u64() *layout.TypeLayout {
	u64Once.Do(func() {
		u64Layout = layout.New("u64", 8, 8, layout.Primitive{Prim: layout.PrimU64},
			layout.WithPackage("abi-runtime", vtableABIVersion),
		)
	})
	return u64Layout
}

func str() *layout.TypeLayout {
	strOnce.Do(func() {
		strLayout = layout.New("str", 16, 8, layout.Opaque{},
			layout.WithPackage("abi-runtime", vtableABIVersion),
		)
	})
	return strLayout
}

// vtableABIVersion is the version the vtable record itself ships
// under. Bump the minor when appending capability slots.
const vtableABIVersion = "1.0.0"

// vtableHeaderFields is the number of prefix fields every vtable
// version carries: type id, type name, and the destructor.
const vtableHeaderFields = 3

// Layout describes the vtable record itself, so plugin vtables can be
// checked with check.Check like any other boundary value. Two vtables
// describe the same record exactly when their capability sets match;
// an older host's record is a compatible prefix of a newer plugin's
// as long as the host's capabilities are a subset occupying the same
// leading slots.
func (vt *VTable) Layout() *layout.TypeLayout {
	fields := []layout.Field{
		{Name: "type_id", Layout: layout.DirectRef(u64())},
		{Name: "type_name", Layout: layout.DirectRef(str())},
		{Name: "drop", Layout: layout.DirectRef(fnPtr())},
	}
	vt.caps.Each(func(c Capability) {
		fields = append(fields, layout.Field{
			Name:   c.String(),
			Layout: layout.DirectRef(fnPtr()),
		})
	})

	size := uint32(len(fields)) * 8
	// The name slot is wider than a pointer.
	size += str().Size - 8

	return layout.New("VTable", size, 8,
		layout.Prefix{
			FirstSuffixField: vtableHeaderFields,
			Fields:           fields,
		},
		layout.WithPackage("abi-runtime", vtableABIVersion),
	)
}
