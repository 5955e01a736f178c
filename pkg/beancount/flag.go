package beancount

// Flag marks a transaction or posting.
//
// The two well-known flags are FlagOkay ("*") and FlagWarning ("!"). Any other token is
// kept verbatim. Since "*" is FlagOkay itself, an "other" flag never holds "*".
type Flag string

const (
	FlagOkay    Flag = "*"
	FlagWarning Flag = "!"
)

// ParseFlag maps a flag token to a Flag. "*" and "txn" both map to FlagOkay,
// "!" maps to FlagWarning and anything else is kept as is.
func ParseFlag(token string) Flag {
	switch token {
	case "*", "txn":
		return FlagOkay
	case "!":
		return FlagWarning
	default:
		return Flag(token)
	}
}

// IsOther reports whether the flag is neither FlagOkay nor FlagWarning.
func (f Flag) IsOther() bool {
	return f != FlagOkay && f != FlagWarning
}

// String returns the flag token.
func (f Flag) String() string {
	return string(f)
}
