// Package astdiff computes identity-independent structural fingerprints
// ("snapshots") of a module's definitions and diffs two generations of them
// into the set of fully qualified names whose externally visible shape
// changed. Snapshots carry no references to live syntax nodes: two snapshots
// compare equal iff the underlying shape is equal, no matter which analysis
// generation produced them.
package astdiff

import (
	"bytes"
	"hash/fnv"
	"strconv"

	"snapdiff/internal/engine/typesys"
)

// Item is the snapshot of a single type. Every item is immutable after
// construction and has a canonical byte-stable key; two items are equal iff
// their keys are equal, which also makes items hashable and sortable.
type Item interface {
	writeKey(b *bytes.Buffer)
}

// Key returns the canonical encoding of an item. A nil item (absent optional
// type) encodes as "-".
func Key(it Item) string {
	if it == nil {
		return "-"
	}
	var b bytes.Buffer
	it.writeKey(&b)
	return b.String()
}

// Equal reports whether two items describe the same structural shape.
func Equal(a, b Item) bool {
	return Key(a) == Key(b)
}

// Hash returns a stable hash of an item, suitable for caching keyed on
// type shape.
func Hash(it Item) uint64 {
	h := fnv.New64a()
	h.Write([]byte(Key(it)))
	return h.Sum64()
}

// SimpleItem snapshots a markerless type variant; only the tag is relevant.
type SimpleItem struct {
	Tag string
}

// UnboundItem snapshots an unresolved reference by its spelled name and
// declared argument order.
type UnboundItem struct {
	Name            string
	Optional        bool
	EmptyTupleIndex bool
	Args            []Item
}

// InstanceItem snapshots a nominal type by fully qualified class name plus
// ordered type arguments.
type InstanceItem struct {
	ClassName string
	Args      []Item
}

// TypeVarItem snapshots a type variable reference. Full structural equality:
// two distinct type variables never compare equal even with identical
// display names.
type TypeVarItem struct {
	Name      string
	FullName  string
	ID        int64
	MetaLevel int
	Values    []Item
	Bound     Item
	Variance  typesys.Variance
}

// CallableItem snapshots a function signature. Generic callables are
// snapshotted without specializing type parameters; this can produce false
// positives on diff but never false negatives.
type CallableItem struct {
	Args           []Item
	Ret            Item
	ArgNames       []string
	ArgKinds       []typesys.ArgKind
	IsTypeObj      bool
	IsEllipsisArgs bool
}

// TupleItem snapshots an ordered tuple.
type TupleItem struct {
	Items []Item
}

// FieldItem is one (name, type) field of a TypedDictItem.
type FieldItem struct {
	Name string
	Type Item
}

// TypedDictItem snapshots a structured record as ordered field pairs. The
// order is whatever the builder observed; records with different key sets
// are always different.
type TypedDictItem struct {
	Fields []FieldItem
}

// UnionItem snapshots a union. Members are sorted by canonical key and
// de-duplicated at construction, so member order and repetition in the
// source type are invisible to comparison.
type UnionItem struct {
	Items []Item
}

// OverloadedItem snapshots an overloaded signature; alternative order is
// observable through overload resolution and therefore significant.
type OverloadedItem struct {
	Items []Item
}

// TypeTypeItem snapshots a type-object wrapper around Item.
type TypeTypeItem struct {
	Item Item
}

func writeItems(b *bytes.Buffer, items []Item) {
	b.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		if it == nil {
			b.WriteByte('-')
			continue
		}
		it.writeKey(b)
	}
	b.WriteByte(']')
}

func writeString(b *bytes.Buffer, s string) {
	b.WriteString(strconv.Quote(s))
}

func writeBool(b *bytes.Buffer, v bool) {
	if v {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
}

func writeInt(b *bytes.Buffer, v int64) {
	b.WriteString(strconv.FormatInt(v, 10))
}

func (s *SimpleItem) writeKey(b *bytes.Buffer) {
	b.WriteString(s.Tag)
	b.WriteString("()")
}

func (u *UnboundItem) writeKey(b *bytes.Buffer) {
	b.WriteString("Unbound(")
	writeString(b, u.Name)
	b.WriteByte(',')
	writeBool(b, u.Optional)
	writeBool(b, u.EmptyTupleIndex)
	b.WriteByte(',')
	writeItems(b, u.Args)
	b.WriteByte(')')
}

func (i *InstanceItem) writeKey(b *bytes.Buffer) {
	b.WriteString("Instance(")
	writeString(b, i.ClassName)
	b.WriteByte(',')
	writeItems(b, i.Args)
	b.WriteByte(')')
}

func (t *TypeVarItem) writeKey(b *bytes.Buffer) {
	b.WriteString("TypeVar(")
	writeString(b, t.Name)
	b.WriteByte(',')
	writeString(b, t.FullName)
	b.WriteByte(',')
	writeInt(b, t.ID)
	b.WriteByte(',')
	writeInt(b, int64(t.MetaLevel))
	b.WriteByte(',')
	writeItems(b, t.Values)
	b.WriteByte(',')
	if t.Bound == nil {
		b.WriteByte('-')
	} else {
		t.Bound.writeKey(b)
	}
	b.WriteByte(',')
	writeInt(b, int64(t.Variance))
	b.WriteByte(')')
}

func (c *CallableItem) writeKey(b *bytes.Buffer) {
	b.WriteString("Callable(")
	writeItems(b, c.Args)
	b.WriteByte(',')
	if c.Ret == nil {
		b.WriteByte('-')
	} else {
		c.Ret.writeKey(b)
	}
	b.WriteByte(',')
	b.WriteByte('[')
	for i, name := range c.ArgNames {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, name)
	}
	b.WriteByte(']')
	b.WriteByte(',')
	b.WriteByte('[')
	for i, kind := range c.ArgKinds {
		if i > 0 {
			b.WriteByte(',')
		}
		writeInt(b, int64(kind))
	}
	b.WriteByte(']')
	b.WriteByte(',')
	writeBool(b, c.IsTypeObj)
	writeBool(b, c.IsEllipsisArgs)
	b.WriteByte(')')
}

func (t *TupleItem) writeKey(b *bytes.Buffer) {
	b.WriteString("Tuple(")
	writeItems(b, t.Items)
	b.WriteByte(')')
}

func (t *TypedDictItem) writeKey(b *bytes.Buffer) {
	b.WriteString("TypedDict(")
	for i, f := range t.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, f.Name)
		b.WriteByte(':')
		if f.Type == nil {
			b.WriteByte('-')
		} else {
			f.Type.writeKey(b)
		}
	}
	b.WriteByte(')')
}

func (u *UnionItem) writeKey(b *bytes.Buffer) {
	b.WriteString("Union(")
	writeItems(b, u.Items)
	b.WriteByte(')')
}

func (o *OverloadedItem) writeKey(b *bytes.Buffer) {
	b.WriteString("Overloaded(")
	writeItems(b, o.Items)
	b.WriteByte(')')
}

func (t *TypeTypeItem) writeKey(b *bytes.Buffer) {
	b.WriteString("TypeType(")
	if t.Item == nil {
		b.WriteByte('-')
	} else {
		t.Item.writeKey(b)
	}
	b.WriteByte(')')
}
