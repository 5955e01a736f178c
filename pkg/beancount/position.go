package beancount

import "github.com/shopspring/decimal"

// Cost identifies a resolved lot: its per-unit cost, currency, acquisition date
// and an optional label.
type Cost struct {
	Number   decimal.Decimal
	Currency Currency
	Date     Date
	Label    *string
}

// Spec returns the cost specification that selects exactly this lot.
func (c Cost) Spec() CostSpec {
	spec := CostSpec{
		NumberPer: decimal.NewNullDecimal(c.Number),
		Currency:  Ptr(c.Currency),
		Date:      Ptr(c.Date),
	}
	if c.Label != nil {
		spec.Label = Ptr(*c.Label)
	}
	return spec
}

// CostSpec is an unresolved cost written on a posting, e.g. {502.12 USD, 2014-01-01}.
//
// Amounts given as per-unit or total costs are always unsigned.
type CostSpec struct {
	// NumberPer is the per-unit cost.
	NumberPer decimal.NullDecimal
	// NumberTotal is the total cost of the posting. When set, the spec renders with {{ }}.
	NumberTotal decimal.NullDecimal
	Currency    *Currency
	Date        *Date
	Label       *string
	// MergeCost requests that all matching lots are merged at average cost.
	MergeCost bool
}

// Position is an amount of units held at an optional cost.
type Position struct {
	Units Amount
	Cost  *Cost
}
