package tag

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a Tag.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUInt
	KindString
	KindArray
	KindSet
	KindMap
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindUInt:   "uint",
	KindString: "string",
	KindArray:  "array",
	KindSet:    "set",
	KindMap:    "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Tag is a recursive metadata value attached to a layout. Tags express
// compatibility properties the structural model cannot capture, such
// as the set of behaviors a type promises.
//
// Tags are immutable after construction. Sets and maps normalize on
// construction: entries sort by key, duplicates collapse to the last
// entry, Null keys drop out.
type Tag struct {
	kind    Kind
	b       bool
	n       int64
	u       uint64
	s       string
	elems   []Tag
	entries []KeyValue
}

// KeyValue is one entry of a map tag.
type KeyValue struct {
	Key   Tag
	Value Tag
}

// KV pairs a key with a value for NewMap.
func KV(key, value Tag) KeyValue {
	return KeyValue{Key: key, Value: value}
}

// Null returns the null tag. Null matches any tag when checking.
func Null() Tag { return Tag{kind: KindNull} }

// Bool returns a boolean tag.
func Bool(b bool) Tag { return Tag{kind: KindBool, b: b} }

// Int returns a signed integer tag.
func Int(n int64) Tag { return Tag{kind: KindInt, n: n} }

// UInt returns an unsigned integer tag.
func UInt(u uint64) Tag { return Tag{kind: KindUInt, u: u} }

// Str returns a string tag.
func Str(s string) Tag { return Tag{kind: KindString, s: s} }

// Arr returns an array tag. Order is significant.
func Arr(elems ...Tag) Tag {
	return Tag{kind: KindArray, elems: elems}
}

// NewSet returns a set tag. Order is not significant; Null elements
// and duplicates are dropped.
func NewSet(elems ...Tag) Tag {
	kvs := make([]KeyValue, 0, len(elems))
	for _, e := range elems {
		kvs = append(kvs, KeyValue{Key: e, Value: Null()})
	}
	return Tag{kind: KindSet, entries: normalize(kvs)}
}

// NewMap returns a map tag. Order is not significant; Null keys and
// duplicate keys are dropped, keeping the last value.
func NewMap(entries ...KeyValue) Tag {
	return Tag{kind: KindMap, entries: normalize(entries)}
}

func normalize(entries []KeyValue) []KeyValue {
	kept := make([]KeyValue, 0, len(entries))
	for _, kv := range entries {
		if kv.Key.kind == KindNull {
			continue
		}
		kept = append(kept, kv)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Key.less(kept[j].Key)
	})
	out := kept[:0]
	for _, kv := range kept {
		if len(out) > 0 && out[len(out)-1].Key.equal(kv.Key) {
			out[len(out)-1] = kv
			continue
		}
		out = append(out, kv)
	}
	return out
}

// Kind returns the tag's variant.
func (t Tag) Kind() Kind { return t.kind }

// IsNull reports whether the tag is the null tag.
func (t Tag) IsNull() bool { return t.kind == KindNull }

func (t Tag) less(o Tag) bool {
	if t.kind != o.kind {
		return t.kind < o.kind
	}
	switch t.kind {
	case KindNull:
		return false
	case KindBool:
		return !t.b && o.b
	case KindInt:
		return t.n < o.n
	case KindUInt:
		return t.u < o.u
	case KindString:
		return t.s < o.s
	case KindArray:
		return lessEntries(keysOf(t.elems), keysOf(o.elems))
	default:
		return lessEntries(t.entries, o.entries)
	}
}

func keysOf(elems []Tag) []KeyValue {
	kvs := make([]KeyValue, len(elems))
	for i, e := range elems {
		kvs[i] = KeyValue{Key: e}
	}
	return kvs
}

func lessEntries(a, b []KeyValue) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Key.less(b[i].Key) {
			return true
		}
		if b[i].Key.less(a[i].Key) {
			return false
		}
		if a[i].Value.less(b[i].Value) {
			return true
		}
		if b[i].Value.less(a[i].Value) {
			return false
		}
	}
	return len(a) < len(b)
}

func (t Tag) equal(o Tag) bool {
	return !t.less(o) && !o.less(t)
}

// String renders the tag as a compact literal.
func (t Tag) String() string {
	switch t.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(t.b)
	case KindInt:
		return strconv.FormatInt(t.n, 10)
	case KindUInt:
		return strconv.FormatUint(t.u, 10)
	case KindString:
		return strconv.Quote(t.s)
	case KindArray:
		parts := make([]string, len(t.elems))
		for i, e := range t.elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindSet:
		parts := make([]string, len(t.entries))
		for i, kv := range t.entries {
			parts[i] = kv.Key.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindMap:
		parts := make([]string, len(t.entries))
		for i, kv := range t.entries {
			parts[i] = fmt.Sprintf("%s=>%s", kv.Key, kv.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "unknown"
	}
}
