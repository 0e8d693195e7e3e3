package main

import (
	"sort"

	"github.com/wippyai/abi-runtime/layout"
	"github.com/wippyai/abi-runtime/tag"
)

// Demo fixtures: successive versions of a sample plugin interface, so
// the tool is usable without writing layout declarations first. Each
// entry is one version of the LogModule root record.

var fixtures = map[string]layout.Ref{}

func fixtureNames() []string {
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func register(name string, build func() *layout.TypeLayout) {
	fixtures[name] = layout.Global.Register(name, build)
}

func str() *layout.TypeLayout {
	return layout.New("str", 16, 8, layout.Opaque{},
		layout.WithPackage("logdemo", "0.1.0"))
}

func fnPtr() *layout.TypeLayout {
	return layout.New("fn_ptr", 8, 8, layout.Opaque{},
		layout.WithPackage("logdemo", "0.1.0"),
		layout.WithNonZero())
}

func level() *layout.TypeLayout {
	return layout.New("Level", 1, 1, layout.Enum{
		Repr: layout.DiscrU8,
		Variants: []layout.Variant{
			{Name: "Debug"}, {Name: "Info"}, {Name: "Warn"}, {Name: "Error"},
		},
	}, layout.WithPackage("logdemo", "0.1.0"))
}

// levelGrown adds a variant behind a nonexhaustive marker with fixed
// backing storage, the forward-compatible way to extend an enum.
func levelGrown() *layout.TypeLayout {
	return layout.New("Level", 1, 1, layout.Enum{
		Repr: layout.DiscrU8,
		Variants: []layout.Variant{
			{Name: "Debug"}, {Name: "Info"}, {Name: "Warn"}, {Name: "Error"},
			{Name: "Fatal"},
		},
		NonExhaustive: true,
		StorageSize:   8,
		StorageAlign:  8,
	}, layout.WithPackage("logdemo", "0.2.0"))
}

func logModule(version string, lvl *layout.TypeLayout, extraSlots ...string) *layout.TypeLayout {
	fields := []layout.Field{
		{Name: "name", Layout: layout.DirectRef(str())},
		{Name: "max_level", Layout: layout.DirectRef(lvl)},
		{Name: "log", Layout: layout.DirectRef(fnPtr())},
	}
	for _, slot := range extraSlots {
		fields = append(fields, layout.Field{Name: slot, Layout: layout.DirectRef(fnPtr())})
	}

	var size uint32
	for _, f := range fields {
		size = alignUp(size, f.Layout().Align) + f.Layout().Size
	}
	size = alignUp(size, 8)

	return layout.New("LogModule", size, 8,
		layout.Prefix{FirstSuffixField: 3, Fields: fields},
		layout.WithPackage("logdemo", version),
		layout.WithTag(tag.NewSet(tag.Str("send"), tag.Str("sync"))),
	)
}

func alignUp(n, align uint32) uint32 {
	return (n + align - 1) / align * align
}

func init() {
	register("LogModule@0.1.0", func() *layout.TypeLayout {
		return logModule("0.1.0", level())
	})
	register("LogModule@0.1.5", func() *layout.TypeLayout {
		return logModule("0.1.5", level(), "flush")
	})
	register("LogModule@0.2.0", func() *layout.TypeLayout {
		return logModule("0.2.0", levelGrown(), "flush", "set_level")
	})
	// A rename that breaks compatibility with every other version.
	register("LogModule@0.2.0-renamed", func() *layout.TypeLayout {
		l := logModule("0.2.0", levelGrown(), "flush", "set_level")
		data := l.Data.(layout.Prefix)
		data.Fields[0].Name = "module_name"
		return layout.New(l.Name, l.Size, l.Align, data,
			layout.WithPackage("logdemo", "0.2.0"),
			layout.WithTag(tag.NewSet(tag.Str("send"), tag.Str("sync"))),
		)
	})
	// A plain record version of the same shape; the data kinds differ.
	register("LogRecord@0.1.0", func() *layout.TypeLayout {
		return layout.New("LogModule", 32, 8, layout.Struct{
			Fields: []layout.Field{
				{Name: "name", Layout: layout.DirectRef(str())},
				{Name: "max_level", Layout: layout.DirectRef(level())},
				{Name: "log", Layout: layout.DirectRef(fnPtr())},
			},
		}, layout.WithPackage("logdemo", "0.1.0"))
	})
}
