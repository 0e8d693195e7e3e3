package erased

import (
	"fmt"

	"github.com/wippyai/abi-runtime/errors"
)

// MismatchError reports a downcast to the wrong concrete type. It
// carries both vtables when available so diagnostics can name the two
// types and their capability sets.
type MismatchError struct {
	// ExpectedName is the target type's name, always set.
	ExpectedName string
	// Expected is the target type's vtable, when one was ever built.
	Expected *VTable
	// Found is the vtable of the handle that was downcast.
	Found *VTable
}

func (e *MismatchError) Error() string {
	found := fmt.Sprintf("%s (id %d, capabilities %s)",
		e.Found.typeName, e.Found.typeID, e.Found.caps)
	expected := e.ExpectedName
	if e.Expected != nil {
		expected = fmt.Sprintf("%s (id %d, capabilities %s)",
			e.Expected.typeName, e.Expected.typeID, e.Expected.caps)
	}
	return fmt.Sprintf("erased: downcast expected %s, found %s", expected, found)
}

// Is lets errors.Is match the structured downcast-mismatch error.
func (e *MismatchError) Is(target error) bool {
	if t, ok := target.(*errors.Error); ok {
		return t.Phase == errors.PhaseDowncast && t.Kind == errors.KindDowncastMismatch
	}
	_, ok := target.(*MismatchError)
	return ok
}
