// Package version implements the semver compatibility rule applied to
// package versions during layout checking.
//
// An implementation satisfies an interface when both were built from
// the same major version of the package. Before 1.0 the minor version
// acts as the major: it must match exactly, and the implementation's
// patch must be at least the interface's. From 1.0 on, the
// implementation's minor must be at least the interface's.
package version

import (
	"github.com/coreos/go-semver/semver"
)

// Parse parses a semver string.
func Parse(s string) (*semver.Version, error) {
	return semver.NewVersion(s)
}

// Compatible reports whether a package built at the implementation
// version can back an interface declared at the interface version.
func Compatible(iface, impl *semver.Version) bool {
	if iface.Major != impl.Major {
		return false
	}
	if iface.Major == 0 {
		return iface.Minor == impl.Minor && impl.Patch >= iface.Patch
	}
	return impl.Minor >= iface.Minor
}

// CheckStrings parses both versions and applies Compatible. The
// returned error reports which side failed to parse.
func CheckStrings(iface, impl string) (bool, error) {
	iv, err := Parse(iface)
	if err != nil {
		return false, err
	}
	ov, err := Parse(impl)
	if err != nil {
		return false, err
	}
	return Compatible(iv, ov), nil
}
