// Package beancount provides the in-memory document model of a Beancount ledger.
//
// Values are plain data: every field is optional at construction time and nothing is
// validated until a consumer asks for it (IncompleteAmount.Complete, the renderer).
package beancount

import "strings"

// Currency is a commodity code such as "USD" or "HOOL".
type Currency string

func (Currency) metaValue() {}

// Date is an opaque date token as written in the ledger (e.g., "2014-05-05").
// Dates are ordered lexically; callers supply zero-padded YYYY-MM-DD tokens
// for that order to be chronological.
type Date string

func (Date) metaValue() {}

// String returns the date token.
func (d Date) String() string {
	return string(d)
}

// Compare compares two dates lexically.
func (d Date) Compare(other Date) int {
	return strings.Compare(string(d), string(other))
}

// Before reports whether d sorts before other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// Month returns the YYYY-MM prefix of the token.
// Returns empty string if the token is shorter than seven characters.
func (d Date) Month() string {
	if len(d) < 7 {
		return ""
	}
	return string(d[:7])
}

// Ptr returns a pointer to v. Optional fields in the model are pointers.
func Ptr[T any](v T) *T {
	return &v
}

// Ledger is a complete ledger document. Directive order is document order.
type Ledger struct {
	Directives []Directive
}

// NewLedger creates a Ledger holding the given directives.
func NewLedger(directives ...Directive) Ledger {
	return Ledger{Directives: append([]Directive(nil), directives...)}
}

// Add returns a new Ledger with the directives appended.
// The receiver is left untouched.
func (l Ledger) Add(directives ...Directive) Ledger {
	out := make([]Directive, 0, len(l.Directives)+len(directives))
	out = append(out, l.Directives...)
	out = append(out, directives...)
	return Ledger{Directives: out}
}

// Len returns the number of directives.
func (l Ledger) Len() int {
	return len(l.Directives)
}
