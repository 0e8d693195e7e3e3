// Package abiruntime checks that independently compiled plugins agree
// on the shape of the values they exchange, and provides the erased
// handles those values travel behind.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	abi-runtime/         Root package, documentation only
//	├── layout/          The type layout model: what a type looks like in memory
//	├── check/           The compatibility checker comparing two layouts
//	├── tag/             Recursive metadata attached to layouts, checked by subset
//	├── prefix/          Extensible records that grow trailing fields across versions
//	├── erased/          Type-erased value handles dispatching through vtables
//	├── module/          The plugin header record and the host-side boundary check
//	├── version/         The semver rule applied to package versions
//	├── extsync/         Lock and Once variants shared across the plugin boundary
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Describe a type, then check an implementation against the interface
// the host compiled in:
//
//	iface := layout.New("Config", 16, 8, layout.Struct{
//	    Fields: []layout.Field{
//	        {Name: "retries", Layout: layout.DirectRef(u32)},
//	        {Name: "timeout", Layout: layout.DirectRef(u64)},
//	    },
//	})
//
//	if err := check.Check(iface, plugin.Root()); err != nil {
//	    log.Fatal(err) // every incompatibility, in one report
//	}
//
// A failed check reports all problems found, not just the first: a
// plugin author fixes the whole list in one rebuild.
//
// # Compatibility Model
//
// Checking is directional. The interface side is what the host was
// compiled against; the implementation side is what the plugin
// provides. An implementation may exceed the interface: extra enum
// variants behind a nonexhaustive marker, extra trailing fields on a
// prefix record, extra tag entries. It may never fall short.
//
// # Thread Safety
//
// Layouts are immutable after construction and safe to share. The
// checker and its result cache are safe for concurrent use. An erased
// handle is single-goroutine unless its vtable was registered
// Shareable.
package abiruntime
