package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/beancount"
)

// formatDirective appends the text of d to sb, including its metadata lines.
func formatDirective(sb *strings.Builder, d beancount.Directive) error {
	switch d := directiveValue(d).(type) {
	case beancount.Open:
		formatOpen(sb, d)
	case beancount.Close:
		fmt.Fprintf(sb, "%s close %s\n", d.Date, FormatAccount(d.Account))
		formatMeta(sb, d.Meta, "\t")
	case beancount.Balance:
		formatBalance(sb, d)
	case beancount.BcOption:
		fmt.Fprintf(sb, "option %s %s\n", Quote(d.Name), Quote(d.Val))
	case beancount.Commodity:
		fmt.Fprintf(sb, "%s commodity %s\n", d.Date, d.Name)
		formatMeta(sb, d.Meta, "\t")
	case beancount.Custom:
		formatCustom(sb, d)
	case beancount.Document:
		fmt.Fprintf(sb, "%s document %s %s", d.Date, FormatAccount(d.Account), Quote(d.Path))
		formatTagsAndLinks(sb, d.Tags, d.Links)
		sb.WriteString("\n")
		formatMeta(sb, d.Meta, "\t")
	case beancount.Event:
		fmt.Fprintf(sb, "%s event %s %s\n", d.Date, Quote(d.Name), Quote(d.Description))
		formatMeta(sb, d.Meta, "\t")
	case beancount.Include:
		fmt.Fprintf(sb, "include %s\n", Quote(d.Filename))
	case beancount.Note:
		fmt.Fprintf(sb, "%s note %s %s\n", d.Date, FormatAccount(d.Account), d.Comment)
		formatMeta(sb, d.Meta, "\t")
	case beancount.Pad:
		fmt.Fprintf(sb, "%s pad %s %s\n", d.Date, FormatAccount(d.PadToAccount), FormatAccount(d.PadFromAccount))
		formatMeta(sb, d.Meta, "\t")
	case beancount.Plugin:
		fmt.Fprintf(sb, "plugin %s", Quote(d.Module))
		if d.Config != nil {
			fmt.Fprintf(sb, " %s", Quote(*d.Config))
		}
		sb.WriteString("\n")
	case beancount.Price:
		fmt.Fprintf(sb, "%s price %s %s\n", d.Date, d.Currency, FormatAmount(d.Amount))
		formatMeta(sb, d.Meta, "\t")
	case beancount.Query:
		fmt.Fprintf(sb, "%s query %s %s\n", d.Date, Quote(d.Name), Quote(d.QueryString))
		formatMeta(sb, d.Meta, "\t")
	case beancount.Transaction:
		formatTransaction(sb, d)
	default:
		// beancount.Unsupported, nil and anything outside the closed set.
		return ErrUnsupportedDirective
	}
	return nil
}

// directiveValue returns the value behind a pointer to a directive.
// A nil pointer yields nil.
func directiveValue(d beancount.Directive) beancount.Directive {
	switch d := d.(type) {
	case *beancount.Open:
		return deref(d)
	case *beancount.Close:
		return deref(d)
	case *beancount.Balance:
		return deref(d)
	case *beancount.BcOption:
		return deref(d)
	case *beancount.Commodity:
		return deref(d)
	case *beancount.Custom:
		return deref(d)
	case *beancount.Document:
		return deref(d)
	case *beancount.Event:
		return deref(d)
	case *beancount.Include:
		return deref(d)
	case *beancount.Note:
		return deref(d)
	case *beancount.Pad:
		return deref(d)
	case *beancount.Plugin:
		return deref(d)
	case *beancount.Price:
		return deref(d)
	case *beancount.Query:
		return deref(d)
	case *beancount.Transaction:
		return deref(d)
	}
	return d
}

func deref[T beancount.Directive](p *T) beancount.Directive {
	if p == nil {
		return nil
	}
	return *p
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Quote returns s as a double-quoted ledger string, escaping backslashes and quotes.
func Quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

func formatOpen(sb *strings.Builder, o beancount.Open) {
	fmt.Fprintf(sb, "%s open %s", o.Date, FormatAccount(o.Account))
	for _, c := range o.Currencies {
		sb.WriteString(" ")
		sb.WriteString(string(c))
	}
	if o.Booking != nil {
		fmt.Fprintf(sb, " \"%s\"", *o.Booking)
	}
	sb.WriteString("\n")
	formatMeta(sb, o.Meta, "\t")
}

// formatBalance writes the amount as NUM[ ~ TOLERANCE]CURRENCY.
func formatBalance(sb *strings.Builder, b beancount.Balance) {
	fmt.Fprintf(sb, "%s balance %s\t%s", b.Date, FormatAccount(b.Account), FormatNumber(b.Amount.Num))
	if b.Tolerance.Valid {
		fmt.Fprintf(sb, " ~ %s", FormatNumber(b.Tolerance.Decimal))
	}
	sb.WriteString(string(b.Amount.Currency))
	sb.WriteString("\n")
	formatMeta(sb, b.Meta, "\t")
}

func formatCustom(sb *strings.Builder, c beancount.Custom) {
	fmt.Fprintf(sb, "%s custom %s", c.Date, Quote(c.Name))
	if len(c.Args) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(c.Args, " "))
	}
	sb.WriteString("\n")
	formatMeta(sb, c.Meta, "\t")
}

func formatTransaction(sb *strings.Builder, t beancount.Transaction) {
	fmt.Fprintf(sb, "%s %s", t.Date, t.TxnFlag())
	if t.Payee != nil {
		sb.WriteString(" ")
		sb.WriteString(Quote(*t.Payee))
	}
	sb.WriteString(" ")
	sb.WriteString(Quote(t.Narration))
	formatTagsAndLinks(sb, t.Tags, t.Links)
	sb.WriteString("\n")

	for _, p := range t.Postings {
		sb.WriteString(FormatPosting(p))
	}
	formatMeta(sb, t.Meta, "\t")
}

func formatTagsAndLinks(sb *strings.Builder, tags beancount.Set[beancount.Tag], links beancount.Set[beancount.Link]) {
	for _, tag := range tags.Sorted() {
		sb.WriteString(" #")
		sb.WriteString(string(tag))
	}
	for _, link := range links.Sorted() {
		sb.WriteString(" ^")
		sb.WriteString(string(link))
	}
}

// formatMeta writes one `KEY: VALUE` line per entry, in insertion order.
func formatMeta(sb *strings.Builder, m beancount.Meta, indent string) {
	for _, e := range m.Entries() {
		fmt.Fprintf(sb, "%s%s: %s\n", indent, e.Key, FormatMetaValue(e.Value))
	}
}

// FormatNumber formats a number keeping its scale, so 562.00 stays 562.00.
func FormatNumber(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// FormatAccount returns Type:Segment:Segment.
func FormatAccount(a beancount.Account) string {
	return a.String()
}

// FormatAmount returns NUM CURRENCY.
func FormatAmount(a beancount.Amount) string {
	return FormatNumber(a.Num) + " " + string(a.Currency)
}

// FormatIncompleteAmount returns the parts that are present:
// NUM CURRENCY, CURRENCY, NUM, or an empty string.
func FormatIncompleteAmount(a beancount.IncompleteAmount) string {
	switch {
	case a.Num.Valid && a.Currency != nil:
		return FormatNumber(a.Num.Decimal) + " " + string(*a.Currency)
	case a.Currency != nil:
		return string(*a.Currency)
	case a.Num.Valid:
		return FormatNumber(a.Num.Decimal)
	}
	return ""
}

// FormatCostSpec returns {...}, or {{...}} when a total number is present.
// The number is written only together with a currency.
func FormatCostSpec(c beancount.CostSpec) string {
	num := c.NumberPer
	if c.NumberTotal.Valid {
		num = c.NumberTotal
	}

	var parts []string
	if num.Valid && c.Currency != nil {
		parts = append(parts, FormatNumber(num.Decimal)+" "+string(*c.Currency))
	}
	if c.Date != nil {
		parts = append(parts, string(*c.Date))
	}
	if c.Label != nil {
		parts = append(parts, Quote(*c.Label))
	}
	if c.MergeCost {
		parts = append(parts, "*")
	}

	inner := strings.Join(parts, ", ")
	if c.NumberTotal.Valid {
		return "{{" + inner + "}}"
	}
	return "{" + inner + "}"
}

// FormatPriceSpec returns `@ AMOUNT` or `@@ AMOUNT`.
func FormatPriceSpec(p beancount.PriceSpec) string {
	switch p := p.(type) {
	case beancount.PerUnitPrice:
		return "@ " + FormatIncompleteAmount(p.Amount)
	case beancount.TotalPrice:
		return "@@ " + FormatIncompleteAmount(p.Amount)
	}
	return ""
}

// FormatPosting returns the tab-indented posting line followed by its metadata lines.
func FormatPosting(p beancount.Posting) string {
	var sb strings.Builder
	sb.WriteString("\t")
	if p.Flag != nil {
		fmt.Fprintf(&sb, "%s ", *p.Flag)
	}
	sb.WriteString(FormatAccount(p.Account))
	sb.WriteString("\t")
	sb.WriteString(FormatIncompleteAmount(p.Units))
	if p.Cost != nil {
		sb.WriteString(" ")
		sb.WriteString(FormatCostSpec(*p.Cost))
	}
	if p.Price != nil {
		sb.WriteString(" ")
		sb.WriteString(FormatPriceSpec(p.Price))
	}
	sb.WriteString("\n")
	// Posting metadata sits one level deeper than the posting itself.
	formatMeta(&sb, p.Meta, "\t\t")
	return sb.String()
}

// FormatMetaValue returns the text of a metadata value.
func FormatMetaValue(v beancount.MetaValue) string {
	switch v := v.(type) {
	case beancount.Account:
		return FormatAccount(v)
	case beancount.Amount:
		return FormatAmount(v)
	case beancount.Bool:
		if v {
			return "true"
		}
		return "false"
	case beancount.Currency:
		return string(v)
	case beancount.Date:
		return string(v)
	case beancount.Number:
		return FormatNumber(v.Decimal)
	case beancount.Tag:
		return "#" + string(v)
	case beancount.Text:
		return string(v)
	}
	return ""
}
