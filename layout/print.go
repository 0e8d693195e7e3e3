package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// maxPrintDepth bounds how deep Format descends into a layout graph.
// Self-referential fields print as their full type name once the
// bound is reached. The exact bound is a rendering choice, not a
// correctness requirement.
const maxPrintDepth = 8

// printCtx carries the recursion state of a single Format call. It is
// threaded through every recursive call by parameter so concurrent
// prints never share state.
type printCtx struct {
	visited map[*TypeLayout]bool
	depth   int
}

// Format renders a layout tree as indented text for diagnostics.
func Format(l *TypeLayout) string {
	var b strings.Builder
	ctx := &printCtx{visited: make(map[*TypeLayout]bool)}
	formatLayout(&b, l, ctx, 0)
	return b.String()
}

// FullName renders the layout's name with its generic arguments, the
// form used in check reports.
func (l *TypeLayout) FullName() string {
	if l.Generics.IsEmpty() {
		return l.Name
	}
	var b strings.Builder
	b.WriteString(l.Name)
	b.WriteByte('<')
	first := true
	sep := func() {
		if !first {
			b.WriteString(", ")
		}
		first = false
	}
	for _, lt := range l.Generics.Lifetimes {
		sep()
		b.WriteString(lt)
	}
	for _, t := range l.Generics.Types {
		sep()
		if inner := t(); inner != nil {
			b.WriteString(inner.Name)
		} else {
			b.WriteByte('_')
		}
	}
	for _, c := range l.Generics.Consts {
		sep()
		b.WriteString(c)
	}
	b.WriteByte('>')
	return b.String()
}

// String implements fmt.Stringer with the single-line form.
func (l *TypeLayout) String() string {
	return fmt.Sprintf("%s(size=%d, align=%d, %s)", l.FullName(), l.Size, l.Align, l.Data.Kind())
}

func formatLayout(b *strings.Builder, l *TypeLayout, ctx *printCtx, indent int) {
	pad := strings.Repeat("  ", indent)

	if ctx.visited[l] || ctx.depth >= maxPrintDepth {
		fmt.Fprintf(b, "%s%s ...\n", pad, l.FullName())
		return
	}
	ctx.visited[l] = true
	ctx.depth++
	defer func() {
		ctx.depth--
		delete(ctx.visited, l)
	}()

	fmt.Fprintf(b, "%s%s {size: %d, align: %d", pad, l.FullName(), l.Size, l.Align)
	if l.NonZero {
		b.WriteString(", nonzero")
	}
	if l.Package != "" {
		fmt.Fprintf(b, ", package: %s@%s", l.Package, l.PackageVersion)
	}
	b.WriteString("}\n")

	switch data := l.Data.(type) {
	case Primitive:
		fmt.Fprintf(b, "%s  primitive %s\n", pad, data.Prim)
	case Opaque:
		fmt.Fprintf(b, "%s  opaque blob\n", pad)
	case Struct:
		formatFields(b, "field", data.Fields, ctx, indent+1)
	case Union:
		formatFields(b, "member", data.Fields, ctx, indent+1)
	case Enum:
		for _, v := range data.Variants {
			name := v.Name
			if v.Discriminant != nil {
				name += " = " + strconv.FormatInt(*v.Discriminant, 10)
			}
			fmt.Fprintf(b, "%s  variant %s\n", pad, name)
			formatFields(b, "field", v.Fields, ctx, indent+2)
		}
		if data.NonExhaustive {
			fmt.Fprintf(b, "%s  nonexhaustive {storage: %d/%d}\n", pad, data.StorageSize, data.StorageAlign)
		}
	case Prefix:
		for i, f := range data.Fields {
			role := "prefix"
			if i >= data.FirstSuffixField {
				role = "suffix"
			}
			formatFields(b, role, []Field{f}, ctx, indent+1)
		}
	case Transparent:
		formatLayout(b, data.Inner(), ctx, indent+1)
	}
}

func formatFields(b *strings.Builder, role string, fields []Field, ctx *printCtx, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, f := range fields {
		fmt.Fprintf(b, "%s%s %s:\n", pad, role, f.Name)
		formatLayout(b, f.Layout(), ctx, indent+1)
	}
}
