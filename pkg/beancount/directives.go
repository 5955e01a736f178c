package beancount

import "github.com/shopspring/decimal"

// Kind identifies the variant of a Directive.
type Kind int

const (
	KindOpen Kind = iota
	KindClose
	KindBalance
	KindOption
	KindCommodity
	KindCustom
	KindDocument
	KindEvent
	KindInclude
	KindNote
	KindPad
	KindPlugin
	KindPrice
	KindQuery
	KindTransaction
	KindUnsupported
)

var kindNames = [...]string{
	KindOpen:        "open",
	KindClose:       "close",
	KindBalance:     "balance",
	KindOption:      "option",
	KindCommodity:   "commodity",
	KindCustom:      "custom",
	KindDocument:    "document",
	KindEvent:       "event",
	KindInclude:     "include",
	KindNote:        "note",
	KindPad:         "pad",
	KindPlugin:      "plugin",
	KindPrice:       "price",
	KindQuery:       "query",
	KindTransaction: "transaction",
	KindUnsupported: "unsupported",
}

// String returns the directive keyword.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Directive is one top-level statement of a ledger. The set of implementations is
// closed: Open, Close, Balance, BcOption, Commodity, Custom, Document, Event, Include,
// Note, Pad, Plugin, Price, Query, Transaction and Unsupported.
type Directive interface {
	Kind() Kind
	directive()
}

// Dated is implemented by directives that start with a date.
type Dated interface {
	Directive
	DirectiveDate() Date
}

// Open declares an account, optionally restricting its currencies. A nil Booking
// leaves the ledger's default booking method in effect.
//
// Example:
//
//	2014-05-01 open Liabilities:CreditCard:CapitalOne USD
type Open struct {
	Date       Date
	Account    Account
	Currencies []Currency
	Booking    *Booking
	Meta       Meta
	Source     *string
}

// Close marks the end of an account's lifetime.
//
// Example:
//
//	2016-11-28 close Liabilities:CreditCard:CapitalOne
type Close struct {
	Date    Date
	Account Account
	Meta    Meta
	Source  *string
}

// Balance asserts the amount of a commodity held in an account at the start of a date,
// optionally within a tolerance.
//
// Example:
//
//	2013-09-20 balance Assets:Investing:Funds 319.020 ~ 0.002 RGAGX
type Balance struct {
	Date      Date
	Account   Account
	Amount    Amount
	Tolerance decimal.NullDecimal
	Meta      Meta
	Source    *string
}

// BcOption is a global `option "name" "value"` line.
type BcOption struct {
	Name   string
	Val    string
	Source *string
}

// RootNameChange reports whether the option renames a root account, as in
// `option "name_assets" "Activa"`. It returns the renamed type and the new name.
func (o BcOption) RootNameChange() (AccountType, string, bool) {
	switch o.Name {
	case "name_assets":
		return Assets, o.Val, true
	case "name_liabilities":
		return Liabilities, o.Val, true
	case "name_equity":
		return Equity, o.Val, true
	case "name_income":
		return Income, o.Val, true
	case "name_expenses":
		return Expenses, o.Val, true
	}
	return 0, "", false
}

// Commodity declares a commodity, mostly to hang metadata on it.
//
// Example:
//
//	1867-01-01 commodity CAD
//	    name: "Canadian Dollar"
type Commodity struct {
	Date   Date
	Name   Currency
	Meta   Meta
	Source *string
}

// Custom is a generic directive for prototyping. Args are written verbatim.
//
// Example:
//
//	2014-07-09 custom "budget" "..." TRUE 45.30 USD
type Custom struct {
	Date   Date
	Name   string
	Args   []string
	Meta   Meta
	Source *string
}

// Document attaches an external file to an account's journal.
//
// Example:
//
//	2013-11-03 document Liabilities:CreditCard "/home/joe/stmts/apr-2014.pdf"
type Document struct {
	Date    Date
	Account Account
	Path    string
	Tags    Set[Tag]
	Links   Set[Link]
	Meta    Meta
	Source  *string
}

// Event tracks the value of a named variable over time.
//
// Example:
//
//	2014-07-09 event "location" "Paris, France"
type Event struct {
	Date        Date
	Name        string
	Description string
	Meta        Meta
	Source      *string
}

// Include pulls another ledger file into this one.
type Include struct {
	Filename string
	Source   *string
}

// Note attaches a dated comment to an account. Comment is written verbatim.
//
// Example:
//
//	2013-11-03 note Liabilities:CreditCard "Called about fraudulent card."
type Note struct {
	Date    Date
	Account Account
	Comment string
	Meta    Meta
	Source  *string
}

// Pad inserts whatever transaction makes the next balance assertion on PadToAccount
// succeed, taking the difference from PadFromAccount.
//
// Example:
//
//	2014-06-01 pad Assets:BofA:Checking Equity:Opening-Balances
type Pad struct {
	Date           Date
	PadToAccount   Account
	PadFromAccount Account
	Meta           Meta
	Source         *string
}

// Plugin names a processing module and its optional configuration string.
type Plugin struct {
	Module string
	Config *string
	Source *string
}

// Price records the rate of a commodity in another one on a date.
//
// Example:
//
//	2014-07-09 price HOOL 579.18 USD
type Price struct {
	Date     Date
	Currency Currency
	Amount   Amount
	Meta     Meta
	Source   *string
}

// Query stores a named query to run as a report.
type Query struct {
	Date        Date
	Name        string
	QueryString string
	Meta        Meta
	Source      *string
}

// Transaction is a dated, flagged set of postings.
//
// Example:
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine with wine"
//	    Liabilities:CreditCard:CapitalOne   -37.45 USD
//	    Expenses:Restaurant
type Transaction struct {
	Date Date
	// Flag defaults to FlagOkay when empty.
	Flag      Flag
	Payee     *string
	Narration string
	Tags      Set[Tag]
	Links     Set[Link]
	Postings  []Posting
	Meta      Meta
	Source    *string
}

// TxnFlag returns the transaction flag, FlagOkay if none was set.
func (t Transaction) TxnFlag() Flag {
	if t.Flag == "" {
		return FlagOkay
	}
	return t.Flag
}

// Unsupported stands for a directive the parser could not classify.
// It cannot be rendered.
type Unsupported struct{}

func (Open) Kind() Kind        { return KindOpen }
func (Close) Kind() Kind       { return KindClose }
func (Balance) Kind() Kind     { return KindBalance }
func (BcOption) Kind() Kind    { return KindOption }
func (Commodity) Kind() Kind   { return KindCommodity }
func (Custom) Kind() Kind      { return KindCustom }
func (Document) Kind() Kind    { return KindDocument }
func (Event) Kind() Kind       { return KindEvent }
func (Include) Kind() Kind     { return KindInclude }
func (Note) Kind() Kind        { return KindNote }
func (Pad) Kind() Kind         { return KindPad }
func (Plugin) Kind() Kind      { return KindPlugin }
func (Price) Kind() Kind       { return KindPrice }
func (Query) Kind() Kind       { return KindQuery }
func (Transaction) Kind() Kind { return KindTransaction }
func (Unsupported) Kind() Kind { return KindUnsupported }

func (Open) directive()        {}
func (Close) directive()       {}
func (Balance) directive()     {}
func (BcOption) directive()    {}
func (Commodity) directive()   {}
func (Custom) directive()      {}
func (Document) directive()    {}
func (Event) directive()       {}
func (Include) directive()     {}
func (Note) directive()        {}
func (Pad) directive()         {}
func (Plugin) directive()      {}
func (Price) directive()       {}
func (Query) directive()       {}
func (Transaction) directive() {}
func (Unsupported) directive() {}

func (d Open) DirectiveDate() Date        { return d.Date }
func (d Close) DirectiveDate() Date       { return d.Date }
func (d Balance) DirectiveDate() Date     { return d.Date }
func (d Commodity) DirectiveDate() Date   { return d.Date }
func (d Custom) DirectiveDate() Date      { return d.Date }
func (d Document) DirectiveDate() Date    { return d.Date }
func (d Event) DirectiveDate() Date       { return d.Date }
func (d Note) DirectiveDate() Date        { return d.Date }
func (d Pad) DirectiveDate() Date         { return d.Date }
func (d Price) DirectiveDate() Date       { return d.Date }
func (d Query) DirectiveDate() Date       { return d.Date }
func (d Transaction) DirectiveDate() Date { return d.Date }

var (
	_ Dated     = Open{}
	_ Dated     = Close{}
	_ Dated     = Balance{}
	_ Directive = BcOption{}
	_ Dated     = Commodity{}
	_ Dated     = Custom{}
	_ Dated     = Document{}
	_ Dated     = Event{}
	_ Directive = Include{}
	_ Dated     = Note{}
	_ Dated     = Pad{}
	_ Directive = Plugin{}
	_ Dated     = Price{}
	_ Dated     = Query{}
	_ Dated     = Transaction{}
	_ Directive = Unsupported{}
)
