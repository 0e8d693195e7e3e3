// Package module implements the host side of the plugin boundary: a
// well-known header record each plugin exports, and the check a host
// runs before trusting the plugin's root value.
//
// The package performs no loading. The Header reaches the host as an
// already-resolved value; how it was resolved (OS loader, shared
// memory, test fixture) is someone else's concern.
package module

import (
	"github.com/wippyai/abi-runtime/check"
	"github.com/wippyai/abi-runtime/errors"
	"github.com/wippyai/abi-runtime/extsync"
	"github.com/wippyai/abi-runtime/layout"
)

// The abi the host itself speaks. A plugin's header must share the
// major and carry at least this minor.
const (
	AbiMajor uint32 = 0
	AbiMinor uint32 = 11
)

// Header is the prefix record every plugin exports under a well-known
// name. Trailing fields may grow in later abi minors.
type Header struct {
	// AbiMajor and AbiMinor are the abi version the plugin was built
	// against.
	AbiMajor uint32
	AbiMinor uint32

	// Package and PackageVersion identify the plugin.
	Package        string
	PackageVersion string

	// Root is the self-reported layout of the plugin's root value.
	Root layout.Ref

	// Value is the plugin's root value itself.
	Value any

	init extsync.Once
}

// EnsureInit runs the plugin's one-time initialization exactly once
// across every consumer of this header.
func (h *Header) EnsureInit(f func()) {
	h.init.Do(f)
}

// Initialized reports whether EnsureInit has completed.
func (h *Header) Initialized() bool {
	return h.init.Done()
}

// Check validates a resolved plugin header against the layout the
// host expects for the plugin's root value. The abi version gate runs
// first: a plugin speaking a different abi cannot be trusted to have
// produced a readable layout at all. Then the expected root layout is
// checked against the plugin's self-reported one; every structural
// problem found is returned in one round trip.
func Check(expected layout.Ref, hdr *Header) error {
	if hdr.AbiMajor != AbiMajor || (hdr.AbiMajor == AbiMajor && hdr.AbiMinor < AbiMinor) {
		return errors.New(errors.PhaseModule, errors.KindBadVersion).
			Impl(hdr.Package).
			Detail("plugin abi %d.%d, host requires %d.%d",
				hdr.AbiMajor, hdr.AbiMinor, AbiMajor, AbiMinor).
			Build()
	}
	if hdr.Root == nil {
		return errors.New(errors.PhaseModule, errors.KindInvalidLayout).
			Impl(hdr.Package).
			Detail("header carries no root layout").
			Build()
	}
	return check.Check(expected(), hdr.Root())
}
