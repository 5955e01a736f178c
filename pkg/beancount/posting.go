package beancount

// Posting is a single leg of a transaction, moving an amount into or out of one account.
//
// A posting can carry a cost, a price, or both:
//
//	Assets:MyBank:Checking   -400.00 USD @ 1.09 CAD
//	Assets:Invest:HOOL        10 HOOL {518.73 USD}
type Posting struct {
	Account Account
	Units   IncompleteAmount
	Cost    *CostSpec
	Price   PriceSpec
	// Flag overrides the transaction flag for this posting when set.
	Flag *Flag
	Meta Meta
}

// PriceSpec is either a PerUnitPrice (`@`) or a TotalPrice (`@@`).
type PriceSpec interface {
	PriceAmount() IncompleteAmount
	priceSpec()
}

// PerUnitPrice is a price per unit, written `@ 1.09 CAD`.
type PerUnitPrice struct {
	Amount IncompleteAmount
}

// PriceAmount returns the price amount.
func (p PerUnitPrice) PriceAmount() IncompleteAmount { return p.Amount }
func (PerUnitPrice) priceSpec()                      {}

// TotalPrice is the total price of the posting, written `@@ 436.01 CAD`.
type TotalPrice struct {
	Amount IncompleteAmount
}

// PriceAmount returns the price amount.
func (p TotalPrice) PriceAmount() IncompleteAmount { return p.Amount }
func (TotalPrice) priceSpec()                      {}
