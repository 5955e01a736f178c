package beancount

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MetaValue is a metadata value. The implementations are Account, Amount, Bool,
// Currency, Date, Number, Tag and Text.
type MetaValue interface {
	metaValue()
}

// Bool is a boolean metadata value.
type Bool bool

func (Bool) metaValue() {}

// Number is a numeric metadata value.
type Number struct {
	decimal.Decimal
}

func (Number) metaValue() {}

// Text is a free-form metadata value. It is written exactly as stored.
type Text string

func (Text) metaValue() {}

// Tag is a tag name without its leading '#'.
type Tag string

func (Tag) metaValue() {}

// Link is a link name without its leading '^'.
type Link string

// MetaEntry is a single key/value pair.
type MetaEntry struct {
	Key   string
	Value MetaValue
}

// Meta is an insertion-ordered mapping from unique keys to values.
// The zero value is an empty Meta.
type Meta struct {
	entries []MetaEntry
}

// NewMeta builds a Meta from entries. A repeated key replaces the earlier value
// but keeps the earlier position.
func NewMeta(entries ...MetaEntry) Meta {
	var m Meta
	for _, e := range entries {
		m = m.With(e.Key, e.Value)
	}
	return m
}

// With returns a copy of m with key set to value.
func (m Meta) With(key string, value MetaValue) Meta {
	out := make([]MetaEntry, len(m.entries), len(m.entries)+1)
	copy(out, m.entries)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return Meta{entries: out}
		}
	}
	return Meta{entries: append(out, MetaEntry{Key: key, Value: value})}
}

// Get returns the value stored under key.
func (m Meta) Get(key string) (MetaValue, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of keys.
func (m Meta) Len() int {
	return len(m.entries)
}

// Entries returns the pairs in insertion order.
func (m Meta) Entries() []MetaEntry {
	return append([]MetaEntry(nil), m.entries...)
}

// Set is an unordered collection of unique tags or links.
type Set[T ~string] map[T]struct{}

// NewTags creates a tag set.
func NewTags(tags ...Tag) Set[Tag] {
	return newSet(tags)
}

// NewLinks creates a link set.
func NewLinks(links ...Link) Set[Link] {
	return newSet(links)
}

func newSet[T ~string](items []T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Has reports whether item is in the set.
func (s Set[T]) Has(item T) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the items in lexical order.
func (s Set[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
