package beancount

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrIncompleteAmount is returned when an IncompleteAmount lacks its number or currency.
var ErrIncompleteAmount = errors.New("incomplete amount")

// Amount is a number of units of a commodity.
type Amount struct {
	Num      decimal.Decimal
	Currency Currency
}

func (Amount) metaValue() {}

// NewAmount creates an Amount.
func NewAmount(num decimal.Decimal, currency Currency) Amount {
	return Amount{Num: num, Currency: currency}
}

// Compare compares two amounts of the same commodity.
// ok is false when the currencies differ; such amounts are incomparable.
func (a Amount) Compare(other Amount) (cmp int, ok bool) {
	if a.Currency != other.Currency {
		return 0, false
	}
	return a.Num.Cmp(other.Num), true
}

// Equal reports whether both amounts have the same currency and number.
// The number comparison ignores scale: 1.0 USD equals 1.00 USD.
func (a Amount) Equal(other Amount) bool {
	return a.Currency == other.Currency && a.Num.Equal(other.Num)
}

// Incomplete converts the amount into an IncompleteAmount with both parts set.
func (a Amount) Incomplete() IncompleteAmount {
	return IncompleteAmount{
		Num:      decimal.NewNullDecimal(a.Num),
		Currency: Ptr(a.Currency),
	}
}

// IncompleteAmount is an amount whose number and/or currency may be missing
// until booking resolves them.
type IncompleteAmount struct {
	Num      decimal.NullDecimal
	Currency *Currency
}

// Complete converts to an Amount.
// Returns ErrIncompleteAmount unless both the number and the currency are present.
func (i IncompleteAmount) Complete() (Amount, error) {
	if !i.Num.Valid || i.Currency == nil {
		return Amount{}, ErrIncompleteAmount
	}
	return Amount{Num: i.Num.Decimal, Currency: *i.Currency}, nil
}

// IsComplete reports whether both parts are present.
func (i IncompleteAmount) IsComplete() bool {
	return i.Num.Valid && i.Currency != nil
}

// IsEmpty reports whether neither part is present.
func (i IncompleteAmount) IsEmpty() bool {
	return !i.Num.Valid && i.Currency == nil
}

// Compare compares two incomplete amounts.
// ok is false when their currencies differ (a missing currency only matches another
// missing currency). A missing number sorts before any present number.
func (i IncompleteAmount) Compare(other IncompleteAmount) (cmp int, ok bool) {
	switch {
	case i.Currency == nil && other.Currency == nil:
	case i.Currency == nil || other.Currency == nil:
		return 0, false
	case *i.Currency != *other.Currency:
		return 0, false
	}

	switch {
	case !i.Num.Valid && !other.Num.Valid:
		return 0, true
	case !i.Num.Valid:
		return -1, true
	case !other.Num.Valid:
		return 1, true
	}
	return i.Num.Decimal.Cmp(other.Num.Decimal), true
}
