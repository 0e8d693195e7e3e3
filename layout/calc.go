package layout

// alignTo rounds offset up to the next multiple of align.
func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) / align * align
}

// Calculator derives the size and alignment a layout's declared shape
// implies, using C struct layout rules. The builder uses it to
// cross-check declared sizes against declared fields.
type Calculator struct {
	visiting map[*TypeLayout]bool
}

// NewCalculator creates a calculator with an empty visit set.
func NewCalculator() *Calculator {
	return &Calculator{visiting: make(map[*TypeLayout]bool)}
}

// Info is a computed size and alignment.
type Info struct {
	Size  uint32
	Align uint32
}

// Calculate computes the Info the layout's shape implies. For layouts
// already being calculated higher on the stack (self-referential
// types behind pointers) the declared size and alignment are trusted
// as-is.
func (c *Calculator) Calculate(l *TypeLayout) Info {
	if c.visiting[l] {
		return Info{Size: l.Size, Align: l.Align}
	}
	c.visiting[l] = true
	defer delete(c.visiting, l)

	switch data := l.Data.(type) {
	case Struct:
		return c.calculateFields(data.Fields)
	case Union:
		return c.calculateUnion(data.Fields)
	case Enum:
		return c.calculateEnum(data)
	case Prefix:
		return c.calculateFields(data.Fields)
	case Transparent:
		return c.Calculate(data.Inner())
	default:
		return Info{Size: l.Size, Align: l.Align}
	}
}

func (c *Calculator) calculateFields(fields []Field) Info {
	if len(fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	maxAlign := uint32(1)
	offset := uint32(0)

	for _, f := range fields {
		fl := c.Calculate(f.Layout())
		offset = alignTo(offset, fl.Align)
		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}
		offset += fl.Size
	}

	return Info{Size: alignTo(offset, maxAlign), Align: maxAlign}
}

func (c *Calculator) calculateUnion(fields []Field) Info {
	if len(fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	maxAlign := uint32(1)
	maxSize := uint32(0)

	for _, f := range fields {
		fl := c.Calculate(f.Layout())
		if fl.Align > maxAlign {
			maxAlign = fl.Align
		}
		if fl.Size > maxSize {
			maxSize = fl.Size
		}
	}

	return Info{Size: alignTo(maxSize, maxAlign), Align: maxAlign}
}

func (c *Calculator) calculateEnum(e Enum) Info {
	discSize := e.Repr.Size()

	maxAlign := discSize
	maxSize := uint32(0)

	for _, v := range e.Variants {
		vi := c.calculateFields(v.Fields)
		if vi.Align > maxAlign {
			maxAlign = vi.Align
		}
		if vi.Size > maxSize {
			maxSize = vi.Size
		}
	}

	payloadOffset := alignTo(discSize, maxAlign)
	return Info{
		Size:  alignTo(payloadOffset+maxSize, maxAlign),
		Align: maxAlign,
	}
}
