package check

import (
	"github.com/wippyai/abi-runtime/errors"
	"github.com/wippyai/abi-runtime/layout"
)

// typeChecker is the view of a running checker handed to ExtraChecks
// implementations. Delegated checks reuse the outer call's visited
// set and error accumulator, so a nested layout is never checked
// twice and its problems land in the same report.
type typeChecker struct {
	c *checker
}

// Check implements layout.TypeChecker.
//
// Re-entering the pair whose ExtraChecks delegation is currently on
// the stack means the user checker is asking the engine to re-derive
// the answer it is itself computing; that cannot make progress and
// fails with a cyclic-check error instead of recursing.
func (tc *typeChecker) Check(iface, impl *layout.TypeLayout) error {
	key := pairKey{iface, impl}
	if tc.c.inExtra[key] {
		return errors.CyclicCheck(iface.FullName(), impl.FullName())
	}

	before := len(tc.c.errs)
	tc.c.checkLayout(iface, impl)
	if len(tc.c.errs) == before {
		return nil
	}
	// The incompatibilities are already accumulated in the shared
	// context; the delegate only needs a failure signal.
	return errors.New(errors.PhaseCheck, errors.KindIncompatible).
		Interface(iface.FullName()).
		Impl(impl.FullName()).
		Detail("nested layout check failed").
		Build()
}

// CombineExtraChecks merges two optional checkers for the same
// logical slot into one at least as strict as both. Either side may
// be nil. It is the entry point loaders use when two independently
// supplied layouts for one export must agree.
func CombineExtraChecks(a, b layout.ExtraChecks) (layout.ExtraChecks, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil:
		return a, nil
	}
	c := newChecker()
	combined, err := a.Combine(b, &typeChecker{c: c})
	if err != nil {
		return nil, err
	}
	if len(c.errs) > 0 {
		return nil, errors.New(errors.PhaseCheck, errors.KindExtraChecks).
			Detail("combining checkers found %d incompatible node(s)", len(c.errs)).
			Build()
	}
	if combined == nil {
		return a, nil
	}
	return combined, nil
}
