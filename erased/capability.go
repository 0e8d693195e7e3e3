package erased

import "strings"

// Capability is one operation an erased value may expose. Which
// capabilities a vtable carries is decided once, when the concrete
// type is registered; it never changes afterwards.
type Capability uint32

const (
	CapClone Capability = 1 << iota
	CapDebug
	CapDisplay
	CapEq
	CapOrd
	CapHash
	CapIterator
	CapDoubleEndedIterator
	CapRead
	CapWrite
	CapSeek
	CapBufRead
	CapFmtWrite
	CapError
	CapDefault
	CapSerialize
	CapDeserialize

	capSentinel
)

var capabilityNames = map[Capability]string{
	CapClone:               "clone",
	CapDebug:               "debug",
	CapDisplay:             "display",
	CapEq:                  "eq",
	CapOrd:                 "ord",
	CapHash:                "hash",
	CapIterator:            "iterator",
	CapDoubleEndedIterator: "double_ended_iterator",
	CapRead:                "io_read",
	CapWrite:               "io_write",
	CapSeek:                "io_seek",
	CapBufRead:             "io_bufread",
	CapFmtWrite:            "fmt_write",
	CapError:               "error",
	CapDefault:             "default",
	CapSerialize:           "serialize",
	CapDeserialize:         "deserialize",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

// CapabilitySet is a bitmask of capabilities.
type CapabilitySet uint32

// AllCapabilities contains every defined capability.
const AllCapabilities = CapabilitySet(capSentinel - 1)

// Has reports whether every capability in c is present.
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) == CapabilitySet(c)
}

// With returns the set with c added.
func (s CapabilitySet) With(c Capability) CapabilitySet {
	return s | CapabilitySet(c)
}

// Without returns the set with c removed.
func (s CapabilitySet) Without(c Capability) CapabilitySet {
	return s &^ CapabilitySet(c)
}

// Each calls fn for every capability in the set, in bit order.
func (s CapabilitySet) Each(fn func(Capability)) {
	for c := Capability(1); c < capSentinel; c <<= 1 {
		if s.Has(c) {
			fn(c)
		}
	}
}

func (s CapabilitySet) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	s.Each(func(c Capability) {
		parts = append(parts, c.String())
	})
	return strings.Join(parts, "|")
}
