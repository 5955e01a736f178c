package loader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/beancount"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/render"
)

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9'._-]*$`)
)

// builder carries the state that spans directives: the current root account names.
type builder struct {
	names beancount.AccountNames
}

func (b *builder) directive(raw rawDirective) (beancount.Directive, error) {
	date := beancount.Date(raw.Date)

	switch strings.ToLower(raw.Type) {
	case "open":
		account, err := b.account(raw.Account)
		if err != nil {
			return nil, err
		}
		d := beancount.Open{Date: date, Account: account, Source: raw.Source}
		for _, c := range raw.Currencies {
			d.Currencies = append(d.Currencies, beancount.Currency(c))
		}
		if raw.Booking != "" {
			booking, err := beancount.ParseBooking(raw.Booking)
			if err != nil {
				return nil, err
			}
			d.Booking = &booking
		}
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "close":
		account, err := b.account(raw.Account)
		if err != nil {
			return nil, err
		}
		d := beancount.Close{Date: date, Account: account, Source: raw.Source}
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "balance":
		account, err := b.account(raw.Account)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(raw.Amount)
		if err != nil {
			return nil, err
		}
		d := beancount.Balance{Date: date, Account: account, Amount: amount, Source: raw.Source}
		if raw.Tolerance != "" {
			tol, err := parseNumber(raw.Tolerance)
			if err != nil {
				return nil, fmt.Errorf("invalid tolerance: %w", err)
			}
			d.Tolerance = decimal.NewNullDecimal(tol)
		}
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "option":
		d := beancount.BcOption{Name: raw.Name, Val: raw.Value, Source: raw.Source}
		b.names = b.names.Apply(d)
		return d, nil

	case "commodity":
		d := beancount.Commodity{Date: date, Name: beancount.Currency(raw.Name), Source: raw.Source}
		var err error
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "custom":
		d := beancount.Custom{Date: date, Name: raw.Name, Source: raw.Source}
		for i := range raw.Args {
			d.Args = append(d.Args, customArg(&raw.Args[i]))
		}
		var err error
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "document":
		account, err := b.account(raw.Account)
		if err != nil {
			return nil, err
		}
		d := beancount.Document{
			Date:    date,
			Account: account,
			Path:    raw.Path,
			Tags:    tags(raw.Tags),
			Links:   links(raw.Links),
			Source:  raw.Source,
		}
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "event":
		d := beancount.Event{Date: date, Name: raw.Name, Description: raw.Description, Source: raw.Source}
		var err error
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "include":
		return beancount.Include{Filename: raw.Filename, Source: raw.Source}, nil

	case "note":
		account, err := b.account(raw.Account)
		if err != nil {
			return nil, err
		}
		d := beancount.Note{Date: date, Account: account, Comment: render.Quote(raw.Comment), Source: raw.Source}
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "pad":
		to, err := b.account(raw.Account)
		if err != nil {
			return nil, err
		}
		from, err := b.account(raw.PadFrom)
		if err != nil {
			return nil, err
		}
		d := beancount.Pad{Date: date, PadToAccount: to, PadFromAccount: from, Source: raw.Source}
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "plugin":
		return beancount.Plugin{Module: raw.Module, Config: raw.Config, Source: raw.Source}, nil

	case "price":
		amount, err := parseAmount(raw.Amount)
		if err != nil {
			return nil, err
		}
		d := beancount.Price{Date: date, Currency: beancount.Currency(raw.Currency), Amount: amount, Source: raw.Source}
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "query":
		d := beancount.Query{Date: date, Name: raw.Name, QueryString: raw.Query, Source: raw.Source}
		var err error
		d.Meta, err = b.meta(&raw.Meta)
		return d, err

	case "transaction", "txn":
		return b.transaction(raw)
	}

	return beancount.Unsupported{}, nil
}

func (b *builder) transaction(raw rawDirective) (beancount.Directive, error) {
	flag := beancount.FlagOkay
	if raw.Flag != "" {
		flag = beancount.ParseFlag(raw.Flag)
	}

	d := beancount.Transaction{
		Date:      beancount.Date(raw.Date),
		Flag:      flag,
		Payee:     raw.Payee,
		Narration: raw.Narration,
		Tags:      tags(raw.Tags),
		Links:     links(raw.Links),
		Source:    raw.Source,
	}

	for i, rp := range raw.Postings {
		p, err := b.posting(rp)
		if err != nil {
			return nil, fmt.Errorf("posting %d: %w", i, err)
		}
		d.Postings = append(d.Postings, p)
	}

	var err error
	d.Meta, err = b.meta(&raw.Meta)
	return d, err
}

func (b *builder) posting(rp rawPosting) (beancount.Posting, error) {
	account, err := b.account(rp.Account)
	if err != nil {
		return beancount.Posting{}, err
	}

	units, err := parseIncompleteAmount(rp.Units)
	if err != nil {
		return beancount.Posting{}, err
	}

	p := beancount.Posting{Account: account, Units: units}

	if rp.Flag != nil {
		p.Flag = beancount.Ptr(beancount.ParseFlag(*rp.Flag))
	}

	if rp.Cost != nil {
		cost, err := costSpec(*rp.Cost)
		if err != nil {
			return beancount.Posting{}, err
		}
		p.Cost = &cost
	}

	if rp.Price != nil {
		price, err := priceSpec(*rp.Price)
		if err != nil {
			return beancount.Posting{}, err
		}
		p.Price = price
	}

	p.Meta, err = b.meta(&rp.Meta)
	return p, err
}

func (b *builder) account(s string) (beancount.Account, error) {
	if s == "" {
		return beancount.Account{}, fmt.Errorf("missing account")
	}
	return beancount.ParseAccount(b.names, s)
}

// meta converts a YAML mapping into Meta, keeping the document's key order.
func (b *builder) meta(node *yaml.Node) (beancount.Meta, error) {
	var m beancount.Meta
	if node.Kind == 0 || node.Tag == "!!null" {
		return m, nil
	}
	if node.Kind != yaml.MappingNode {
		return m, fmt.Errorf("meta (line %d): expected a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return m, fmt.Errorf("meta %q (line %d): expected a scalar value", key.Value, value.Line)
		}
		m = m.With(key.Value, b.metaValue(value))
	}

	return m, nil
}

// metaValue infers the type of a metadata scalar. Quoted strings are always text.
func (b *builder) metaValue(node *yaml.Node) beancount.MetaValue {
	v := node.Value

	switch node.Tag {
	case "!!bool":
		var flag bool
		if err := node.Decode(&flag); err == nil {
			return beancount.Bool(flag)
		}
	case "!!int", "!!float":
		if d, err := decimal.NewFromString(v); err == nil {
			return beancount.Number{Decimal: d}
		}
	case "!!timestamp":
		return beancount.Date(v)
	}

	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		return beancount.Text(render.Quote(v))
	}

	switch {
	case strings.HasPrefix(v, "#") && len(v) > 1:
		return beancount.Tag(v[1:])
	case datePattern.MatchString(v):
		return beancount.Date(v)
	case currencyPattern.MatchString(v):
		return beancount.Currency(v)
	}

	if a, err := parseAmount(v); err == nil {
		return a
	}
	if strings.Contains(v, ":") {
		if a, err := beancount.ParseAccount(b.names, v); err == nil {
			return a
		}
	}

	return beancount.Text(render.Quote(v))
}

func costSpec(rc rawCost) (beancount.CostSpec, error) {
	var spec beancount.CostSpec

	if rc.PerUnit != "" {
		n, err := parseNumber(rc.PerUnit)
		if err != nil {
			return spec, fmt.Errorf("invalid per-unit cost: %w", err)
		}
		spec.NumberPer = decimal.NewNullDecimal(n)
	}
	if rc.Total != "" {
		n, err := parseNumber(rc.Total)
		if err != nil {
			return spec, fmt.Errorf("invalid total cost: %w", err)
		}
		spec.NumberTotal = decimal.NewNullDecimal(n)
	}
	if rc.Currency != nil {
		spec.Currency = beancount.Ptr(beancount.Currency(*rc.Currency))
	}
	if rc.Date != nil {
		spec.Date = beancount.Ptr(beancount.Date(*rc.Date))
	}
	spec.Label = rc.Label
	spec.MergeCost = rc.Merge

	return spec, nil
}

func priceSpec(rp rawPrice) (beancount.PriceSpec, error) {
	switch {
	case rp.PerUnit != "" && rp.Total != "":
		return nil, fmt.Errorf("price has both per_unit and total")
	case rp.PerUnit != "":
		a, err := parseIncompleteAmount(rp.PerUnit)
		if err != nil {
			return nil, err
		}
		return beancount.PerUnitPrice{Amount: a}, nil
	case rp.Total != "":
		a, err := parseIncompleteAmount(rp.Total)
		if err != nil {
			return nil, err
		}
		return beancount.TotalPrice{Amount: a}, nil
	}
	return nil, fmt.Errorf("price needs per_unit or total")
}

// customArg returns the source form of a custom directive argument.
func customArg(node *yaml.Node) string {
	switch {
	case node.Tag == "!!bool":
		return strings.ToUpper(node.Value)
	case node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0:
		return render.Quote(node.Value)
	}
	return node.Value
}

func parseNumber(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// parseAmount parses "NUM CURRENCY".
func parseAmount(s string) (beancount.Amount, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 || !currencyPattern.MatchString(fields[1]) {
		return beancount.Amount{}, fmt.Errorf("invalid amount %q: expected \"NUMBER CURRENCY\"", s)
	}
	num, err := decimal.NewFromString(fields[0])
	if err != nil {
		return beancount.Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return beancount.NewAmount(num, beancount.Currency(fields[1])), nil
}

// parseIncompleteAmount accepts "", "NUM", "CURRENCY" or "NUM CURRENCY".
func parseIncompleteAmount(s string) (beancount.IncompleteAmount, error) {
	var a beancount.IncompleteAmount

	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return a, nil
	case 1:
		if num, err := decimal.NewFromString(fields[0]); err == nil {
			a.Num = decimal.NewNullDecimal(num)
			return a, nil
		}
		if currencyPattern.MatchString(fields[0]) {
			a.Currency = beancount.Ptr(beancount.Currency(fields[0]))
			return a, nil
		}
	case 2:
		amount, err := parseAmount(s)
		if err != nil {
			return a, err
		}
		return amount.Incomplete(), nil
	}
	return a, fmt.Errorf("invalid amount %q", s)
}

func tags(items []string) beancount.Set[beancount.Tag] {
	if len(items) == 0 {
		return nil
	}
	out := make([]beancount.Tag, 0, len(items))
	for _, item := range items {
		out = append(out, beancount.Tag(strings.TrimPrefix(item, "#")))
	}
	return beancount.NewTags(out...)
}

func links(items []string) beancount.Set[beancount.Link] {
	if len(items) == 0 {
		return nil
	}
	out := make([]beancount.Link, 0, len(items))
	for _, item := range items {
		out = append(out, beancount.Link(strings.TrimPrefix(item, "^")))
	}
	return beancount.NewLinks(out...)
}
