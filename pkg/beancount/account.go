package beancount

import (
	"fmt"
	"strings"
)

// AccountType is the root category of an account.
type AccountType int

const (
	Assets AccountType = iota
	Liabilities
	Equity
	Income
	Expenses
)

// AccountTypes lists every account type in canonical order.
var AccountTypes = []AccountType{Assets, Liabilities, Equity, Income, Expenses}

// String returns the canonical display name of the account type.
func (t AccountType) String() string {
	switch t {
	case Assets:
		return "Assets"
	case Liabilities:
		return "Liabilities"
	case Equity:
		return "Equity"
	case Income:
		return "Income"
	case Expenses:
		return "Expenses"
	}
	return fmt.Sprintf("AccountType(%d)", int(t))
}

// Account is an account name: a root type followed by hierarchical segments.
type Account struct {
	Type  AccountType
	Parts []string
}

func (Account) metaValue() {}

// NewAccount creates an Account from a type and its segments (root to leaf).
func NewAccount(t AccountType, parts ...string) Account {
	return Account{Type: t, Parts: append([]string(nil), parts...)}
}

// String returns the canonical form Type:Segment:Segment.
func (a Account) String() string {
	if len(a.Parts) == 0 {
		return a.Type.String()
	}
	return a.Type.String() + ":" + strings.Join(a.Parts, ":")
}

// Equal reports whether both accounts have the same type and segments.
func (a Account) Equal(other Account) bool {
	if a.Type != other.Type || len(a.Parts) != len(other.Parts) {
		return false
	}
	for i := range a.Parts {
		if a.Parts[i] != other.Parts[i] {
			return false
		}
	}
	return true
}

// AccountNames maps account types to the root names used in a ledger.
// Ledgers may rename roots with options such as `option "name_assets" "Activa"`.
type AccountNames map[AccountType]string

// DefaultAccountNames returns the standard root names.
func DefaultAccountNames() AccountNames {
	names := make(AccountNames, len(AccountTypes))
	for _, t := range AccountTypes {
		names[t] = t.String()
	}
	return names
}

// Apply returns a copy of the names with the option's root rename applied.
// Options that do not rename a root leave the names unchanged.
func (n AccountNames) Apply(opt BcOption) AccountNames {
	out := make(AccountNames, len(n))
	for k, v := range n {
		out[k] = v
	}
	if t, name, ok := opt.RootNameChange(); ok {
		out[t] = name
	}
	return out
}

// Lookup returns the account type whose root name is root.
func (n AccountNames) Lookup(root string) (AccountType, bool) {
	for _, t := range AccountTypes {
		if n[t] == root {
			return t, true
		}
	}
	return 0, false
}

// ParseAccount parses a colon-separated account name using the given root names.
// A nil names map uses the default roots.
func ParseAccount(names AccountNames, s string) (Account, error) {
	if names == nil {
		names = DefaultAccountNames()
	}

	parts := strings.Split(s, ":")
	t, ok := names.Lookup(parts[0])
	if !ok {
		return Account{}, fmt.Errorf("unknown account root %q in %q", parts[0], s)
	}

	for _, p := range parts[1:] {
		if p == "" {
			return Account{}, fmt.Errorf("empty account segment in %q", s)
		}
	}

	return NewAccount(t, parts[1:]...), nil
}
