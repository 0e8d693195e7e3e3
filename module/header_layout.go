package module

import (
	"sync"

	"github.com/wippyai/abi-runtime/layout"
)

var (
	headerOnce   sync.Once
	headerLayout *layout.TypeLayout
)

// HeaderLayout describes the Header record itself. Hosts and plugins
// both compile it in; checking one against the other catches a header
// whose shape drifted between abi versions.
func HeaderLayout() *layout.TypeLayout {
	headerOnce.Do(func() {
		u32 := layout.New("u32", 4, 4, layout.Primitive{Prim: layout.PrimU32},
			layout.WithPackage("abi-runtime", headerVersion))
		str := layout.New("str", 16, 8, layout.Opaque{},
			layout.WithPackage("abi-runtime", headerVersion))
		ref := layout.New("layout_ref", 8, 8, layout.Opaque{},
			layout.WithPackage("abi-runtime", headerVersion),
			layout.WithNonZero())
		val := layout.New("root_value", 8, 8, layout.Opaque{},
			layout.WithPackage("abi-runtime", headerVersion))

		headerLayout = layout.New("Header", 56, 8,
			layout.Prefix{
				FirstSuffixField: 5,
				Fields: []layout.Field{
					{Name: "abi_major", Layout: layout.DirectRef(u32)},
					{Name: "abi_minor", Layout: layout.DirectRef(u32)},
					{Name: "package", Layout: layout.DirectRef(str)},
					{Name: "package_version", Layout: layout.DirectRef(str)},
					{Name: "root_layout", Layout: layout.DirectRef(ref)},
					{Name: "root_value", Layout: layout.DirectRef(val)},
				},
			},
			layout.WithPackage("abi-runtime", headerVersion),
		)
	})
	return headerLayout
}

const headerVersion = "0.11.0"
