package check

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/abi-runtime/errors"
	"github.com/wippyai/abi-runtime/layout"
	"github.com/wippyai/abi-runtime/tag"
	"github.com/wippyai/abi-runtime/version"
)

// Check compares an interface layout against an implementation layout
// and returns nil when every value of the implementation's type can be
// used where the interface's type is expected.
//
// The comparison never stops at the first problem: the returned
// *Error carries every incompatibility found anywhere in the layout
// graph. Check is pure and synchronous; concurrent calls are
// independent.
func Check(iface, impl *layout.TypeLayout) error {
	if iface == impl {
		return nil
	}
	if cacheHit(iface, impl) {
		return nil
	}

	c := newChecker()
	c.checkLayout(iface, impl)

	if len(c.errs) == 0 {
		cacheStore(iface, impl)
		return nil
	}
	Logger().Debug("layout check failed",
		zap.String("interface", iface.FullName()),
		zap.String("implementation", impl.FullName()),
		zap.Int("nodes", len(c.errs)),
	)
	return &Error{Interface: iface, Implementation: impl, Errors: c.errs}
}

type pairKey [2]*layout.TypeLayout

// checker is the per-call mutable context: the field path, the set of
// pairs currently (or previously) under comparison, the set of pairs
// inside an ExtraChecks delegation, and the accumulated errors. It
// owns no layout data and is discarded when Check returns.
type checker struct {
	path    []string
	visited map[pairKey]bool
	inExtra map[pairKey]bool
	errs    []LayoutError
}

func newChecker() *checker {
	return &checker{
		visited: make(map[pairKey]bool),
		inExtra: make(map[pairKey]bool),
	}
}

func (c *checker) report(errs []Incompatibility) {
	if len(errs) == 0 {
		return
	}
	c.errs = append(c.errs, LayoutError{
		Path: slices.Clone(c.path),
		Errs: errs,
	})
}

// checkLayout compares one (interface, implementation) node pair.
// Re-entering a pair already being checked is compatible by
// definition: the enclosing call owns reporting any problem with it.
func (c *checker) checkLayout(t, o *layout.TypeLayout) {
	key := pairKey{t, o}
	if c.visited[key] {
		return
	}
	c.visited[key] = true

	var errs []Incompatibility
	push := func(kind Kind, expected, found any) {
		errs = append(errs, Incompatibility{
			Kind:     kind,
			Expected: fmt.Sprint(expected),
			Found:    fmt.Sprint(found),
		})
	}

	tKind := t.Data.Kind()
	oKind := o.Data.Kind()

	// Opaque blobs have no properties besides size and alignment;
	// nominal identity is explicitly not required.
	if tKind == layout.KindOpaque && oKind == layout.KindOpaque {
		if t.Size != o.Size {
			push(KindSize, t.Size, o.Size)
		}
		if t.Align != o.Align {
			push(KindAlignment, t.Align, o.Align)
		}
		c.report(errs)
		return
	}

	if t.Name != o.Name {
		push(KindName, t.FullName(), o.FullName())
	}
	if t.Package != o.Package {
		push(KindPackage, t.Package, o.Package)
	}
	if t.PackageVersion != "" || o.PackageVersion != "" {
		ok, err := version.CheckStrings(t.PackageVersion, o.PackageVersion)
		switch {
		case err != nil:
			errs = append(errs, Incompatibility{
				Kind:     KindVersionParse,
				Expected: t.PackageVersion,
				Found:    o.PackageVersion,
				Err:      err,
			})
		case !ok:
			push(KindPackageVersion, t.PackageVersion, o.PackageVersion)
		}
	}
	if t.NonZero != o.NonZero {
		push(KindNonZeroness, t.NonZero, o.NonZero)
	}
	if t.Repr != o.Repr {
		push(KindReprAttr, t.Repr, o.Repr)
	}

	c.checkSizeAlign(&errs, t, o)
	c.checkGenerics(&errs, t, o)
	c.checkFields(&errs, t.PhantomFields, o.PhantomFields)

	if tKind != oKind {
		push(KindDataKind, tKind, oKind)
	} else {
		switch td := t.Data.(type) {
		case layout.Primitive:
			if op := o.Data.(layout.Primitive); td.Prim != op.Prim {
				push(KindDataKind, td.Prim, op.Prim)
			}
		case layout.Struct:
			c.checkFields(&errs, td.Fields, o.Data.(layout.Struct).Fields)
		case layout.Union:
			c.checkFields(&errs, td.Fields, o.Data.(layout.Union).Fields)
		case layout.Enum:
			c.checkEnum(&errs, td, o.Data.(layout.Enum))
		case layout.Prefix:
			c.checkPrefix(&errs, td, o.Data.(layout.Prefix))
		case layout.Transparent:
			c.path = append(c.path, "<wrapped>")
			c.checkLayout(td.Inner(), o.Data.(layout.Transparent).Inner())
			c.path = c.path[:len(c.path)-1]
		}
	}

	c.checkTags(&errs, t, o)
	c.checkExtra(&errs, t, o)

	c.report(errs)
}

// checkSizeAlign applies the size rules: prefix records may legally
// differ in size (their field lists grow across versions), and a
// nonexhaustive interface enum constrains the implementation to its
// declared storage instead of its own size.
func (c *checker) checkSizeAlign(errs *[]Incompatibility, t, o *layout.TypeLayout) {
	push := func(kind Kind, expected, found uint32) {
		*errs = append(*errs, Incompatibility{
			Kind:     kind,
			Expected: fmt.Sprint(expected),
			Found:    fmt.Sprint(found),
		})
	}

	if t.Data.Kind() == layout.KindPrefix && o.Data.Kind() == layout.KindPrefix {
		if t.Align != o.Align {
			push(KindAlignment, t.Align, o.Align)
		}
		return
	}

	if te, ok := t.Data.(layout.Enum); ok && te.NonExhaustive {
		if o.Size > te.StorageSize {
			push(KindSize, te.StorageSize, o.Size)
		}
		if o.Align > te.StorageAlign {
			push(KindAlignment, te.StorageAlign, o.Align)
		}
		return
	}

	if t.Size != o.Size {
		push(KindSize, t.Size, o.Size)
	}
	if t.Align != o.Align {
		push(KindAlignment, t.Align, o.Align)
	}
}

func (c *checker) checkGenerics(errs *[]Incompatibility, t, o *layout.TypeLayout) {
	tg, og := t.Generics, o.Generics
	if len(tg.Lifetimes) != len(og.Lifetimes) ||
		len(tg.Types) != len(og.Types) ||
		len(tg.Consts) != len(og.Consts) {
		*errs = append(*errs, Incompatibility{
			Kind: KindGenericParamCount,
			Expected: fmt.Sprintf("%d lifetimes, %d types, %d consts",
				len(tg.Lifetimes), len(tg.Types), len(tg.Consts)),
			Found: fmt.Sprintf("%d lifetimes, %d types, %d consts",
				len(og.Lifetimes), len(og.Types), len(og.Consts)),
		})
		// A count mismatch makes positional comparison meaningless,
		// but only for this node's generics.
		return
	}
	for i, tp := range tg.Types {
		c.path = append(c.path, fmt.Sprintf("<param %d>", i))
		c.checkLayout(tp(), og.Types[i]())
		c.path = c.path[:len(c.path)-1]
	}
	for i, tc := range tg.Consts {
		if tc != og.Consts[i] {
			*errs = append(*errs, Incompatibility{
				Kind:     KindConstParam,
				Expected: tc,
				Found:    og.Consts[i],
			})
		}
	}
}

// checkFields matches interface fields against implementation fields
// by NAME: reordering fields is compatible, removing or renaming them
// is not.
func (c *checker) checkFields(errs *[]Incompatibility, tFields, oFields []layout.Field) {
	if len(tFields) == 0 && len(oFields) == 0 {
		return
	}
	if len(tFields) != len(oFields) {
		*errs = append(*errs, Incompatibility{
			Kind:     KindFieldCount,
			Expected: fmt.Sprint(len(tFields)),
			Found:    fmt.Sprint(len(oFields)),
		})
	}

	claimed := make([]bool, len(oFields))
	for _, tf := range tFields {
		oi := -1
		for i, of := range oFields {
			if !claimed[i] && of.Name == tf.Name {
				oi = i
				break
			}
		}
		if oi < 0 {
			*errs = append(*errs, Incompatibility{
				Kind:     KindUnexpectedField,
				Expected: tf.Name,
				Found:    "<absent>",
			})
			continue
		}
		claimed[oi] = true
		c.checkFieldPair(errs, tf, oFields[oi])
	}
	for i, of := range oFields {
		if !claimed[i] {
			*errs = append(*errs, Incompatibility{
				Kind:     KindUnexpectedField,
				Expected: "<absent>",
				Found:    of.Name,
			})
		}
	}
}

func (c *checker) checkFieldPair(errs *[]Incompatibility, tf, of layout.Field) {
	if !slices.Equal(tf.LifetimeIndices, of.LifetimeIndices) {
		*errs = append(*errs, Incompatibility{
			Kind:     KindFieldLifetime,
			Expected: fmt.Sprintf("%s%v", tf.Name, tf.LifetimeIndices),
			Found:    fmt.Sprintf("%s%v", of.Name, of.LifetimeIndices),
		})
	}
	c.checkFields(errs, tf.Subfields, of.Subfields)

	c.path = append(c.path, tf.Name)
	c.checkLayout(tf.Layout(), of.Layout())
	c.path = c.path[:len(c.path)-1]
}

// checkEnum matches variants by name, in declaration order. Extra
// implementation variants are tolerated only when the interface enum
// is nonexhaustive; the storage fit is enforced by checkSizeAlign.
func (c *checker) checkEnum(errs *[]Incompatibility, td, od layout.Enum) {
	if td.NonExhaustive != od.NonExhaustive {
		*errs = append(*errs, Incompatibility{
			Kind:     KindExhaustiveness,
			Expected: exhaustiveness(td.NonExhaustive),
			Found:    exhaustiveness(od.NonExhaustive),
		})
	}

	if len(od.Variants) > len(td.Variants) && !td.NonExhaustive {
		*errs = append(*errs, Incompatibility{
			Kind:     KindTooManyVariants,
			Expected: fmt.Sprint(len(td.Variants)),
			Found:    fmt.Sprint(len(od.Variants)),
		})
	}
	if len(od.Variants) < len(td.Variants) {
		*errs = append(*errs, Incompatibility{
			Kind:     KindMissingVariants,
			Expected: fmt.Sprint(len(td.Variants)),
			Found:    fmt.Sprint(len(od.Variants)),
		})
	}

	for i, tv := range td.Variants {
		if i >= len(od.Variants) {
			break
		}
		ov := od.Variants[i]
		if tv.Name != ov.Name {
			*errs = append(*errs, Incompatibility{
				Kind:     KindUnexpectedVariant,
				Expected: tv.Name,
				Found:    ov.Name,
			})
			continue
		}
		if tv.Discriminant != nil && ov.Discriminant != nil &&
			*tv.Discriminant != *ov.Discriminant {
			*errs = append(*errs, Incompatibility{
				Kind:     KindEnumDiscriminant,
				Expected: fmt.Sprintf("%s = %d", tv.Name, *tv.Discriminant),
				Found:    fmt.Sprintf("%s = %d", ov.Name, *ov.Discriminant),
			})
		}
		c.path = append(c.path, tv.Name)
		c.checkFields(errs, tv.Fields, ov.Fields)
		c.path = c.path[:len(c.path)-1]
	}
}

func exhaustiveness(nonExhaustive bool) string {
	if nonExhaustive {
		return "nonexhaustive"
	}
	return "exhaustive"
}

// checkPrefix applies the extensible-record rule: fields below the
// smaller side's suffix boundary are required, trailing fields
// present on only one side are ignored. Prefix fields are positional;
// a vtable or module record cannot reorder what older callers index.
func (c *checker) checkPrefix(errs *[]Incompatibility, td, od layout.Prefix) {
	boundary := min(td.FirstSuffixField, od.FirstSuffixField)
	shared := min(len(td.Fields), len(od.Fields))

	if shared < boundary {
		*errs = append(*errs, Incompatibility{
			Kind:     KindFieldCount,
			Expected: fmt.Sprintf("at least %d fields", boundary),
			Found:    fmt.Sprintf("%d fields", shared),
		})
		for i := shared; i < boundary && i < len(td.Fields); i++ {
			*errs = append(*errs, Incompatibility{
				Kind:     KindPrefixFieldCount,
				Expected: td.Fields[i].Name,
				Found:    "<absent>",
			})
		}
	}

	for i := 0; i < shared; i++ {
		tf, of := td.Fields[i], od.Fields[i]
		if tf.Name != of.Name {
			*errs = append(*errs, Incompatibility{
				Kind:     KindUnexpectedField,
				Expected: tf.Name,
				Found:    of.Name,
			})
			continue
		}
		c.checkFieldPair(errs, tf, of)
	}
}

func (c *checker) checkTags(errs *[]Incompatibility, t, o *layout.TypeLayout) {
	tTag, oTag := tag.Null(), tag.Null()
	if t.Tag != nil {
		tTag = *t.Tag
	}
	if o.Tag != nil {
		oTag = *o.Tag
	}
	if tagErrs := tag.Check(tTag, oTag); tagErrs != nil {
		*errs = append(*errs, Incompatibility{Kind: KindTag, Tag: tagErrs})
	}
}

// checkExtra delegates to the interface's ExtraChecks, if any. The
// implementation must carry a checker of the same concrete type. The
// delegate shares this call's cycle guard and error accumulator
// through the TypeChecker it receives. Layouts the checkers expose
// through NestedTypeLayouts are compared pairwise afterwards, whether
// or not the delegate looked at them.
func (c *checker) checkExtra(errs *[]Incompatibility, t, o *layout.TypeLayout) {
	if t.Extra == nil {
		return
	}
	if o.Extra == nil || reflect.TypeOf(t.Extra) != reflect.TypeOf(o.Extra) {
		*errs = append(*errs, Incompatibility{
			Kind:     KindMissingExtraChecks,
			Expected: fmt.Sprintf("%T", t.Extra),
			Found:    fmt.Sprintf("%T", o.Extra),
		})
		return
	}

	key := pairKey{t, o}
	c.inExtra[key] = true
	err := t.Extra.CheckCompatibility(t, o, &typeChecker{c: c})
	delete(c.inExtra, key)

	if err != nil {
		kind := KindExtraChecks
		var structured *errors.Error
		if stderrors.As(err, &structured) && structured.Kind == errors.KindCyclicCheck {
			kind = KindCyclicTypeChecking
		}
		*errs = append(*errs, Incompatibility{Kind: kind, Err: err})
	}

	tNested := t.Extra.NestedTypeLayouts()
	oNested := o.Extra.NestedTypeLayouts()
	if len(tNested) != len(oNested) {
		*errs = append(*errs, Incompatibility{
			Kind:     KindExtraChecks,
			Expected: fmt.Sprintf("%d nested layouts", len(tNested)),
			Found:    fmt.Sprintf("%d nested layouts", len(oNested)),
		})
	}
	for i := 0; i < min(len(tNested), len(oNested)); i++ {
		c.path = append(c.path, fmt.Sprintf("<nested %d>", i))
		c.checkLayout(tNested[i](), oNested[i]())
		c.path = c.path[:len(c.path)-1]
	}
}
