package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bc "github.com/shunichi-ikebuchi/beancount-ledger/pkg/beancount"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func units(num string, currency bc.Currency) bc.IncompleteAmount {
	return bc.NewAmount(dec(num), currency).Incomplete()
}

func TestRenderDirectives(t *testing.T) {
	fifo := bc.BookingFifo

	tests := []struct {
		name      string
		directive bc.Directive
		expected  string
	}{
		{
			name:      "open without currencies",
			directive: bc.Open{Date: "1990-01-01", Account: bc.NewAccount(bc.Expenses, "Restaurant")},
			expected:  "1990-01-01 open Expenses:Restaurant\n",
		},
		{
			name: "open with currencies and booking",
			directive: bc.Open{
				Date:       "2014-05-01",
				Account:    bc.NewAccount(bc.Liabilities, "CreditCard", "CapitalOne"),
				Currencies: []bc.Currency{"USD", "CAD"},
				Booking:    &fifo,
			},
			expected: "2014-05-01 open Liabilities:CreditCard:CapitalOne USD CAD \"FIFO\"\n",
		},
		{
			name:      "close",
			directive: bc.Close{Date: "2016-11-28", Account: bc.NewAccount(bc.Liabilities, "CreditCard", "CapitalOne")},
			expected:  "2016-11-28 close Liabilities:CreditCard:CapitalOne\n",
		},
		{
			name: "balance without tolerance",
			directive: bc.Balance{
				Date:    "2014-08-09",
				Account: bc.NewAccount(bc.Assets, "Cash"),
				Amount:  bc.NewAmount(dec("562.00"), "USD"),
			},
			expected: "2014-08-09 balance Assets:Cash\t562.00USD\n",
		},
		{
			name: "balance with tolerance",
			directive: bc.Balance{
				Date:      "2013-09-20",
				Account:   bc.NewAccount(bc.Assets, "Investing", "Funds"),
				Amount:    bc.NewAmount(dec("319.020"), "RGAGX"),
				Tolerance: decimal.NewNullDecimal(dec("0.002")),
			},
			expected: "2013-09-20 balance Assets:Investing:Funds\t319.020 ~ 0.002RGAGX\n",
		},
		{
			name:      "option",
			directive: bc.BcOption{Name: "title", Val: "Ed's Personal Ledger"},
			expected:  "option \"title\" \"Ed's Personal Ledger\"\n",
		},
		{
			name:      "commodity",
			directive: bc.Commodity{Date: "1867-01-01", Name: "CAD"},
			expected:  "1867-01-01 commodity CAD\n",
		},
		{
			name:      "custom",
			directive: bc.Custom{Date: "2014-07-09", Name: "budget", Args: []string{`"..."`, "TRUE", "45.30 USD"}},
			expected:  "2014-07-09 custom \"budget\" \"...\" TRUE 45.30 USD\n",
		},
		{
			name:      "custom without args",
			directive: bc.Custom{Date: "2014-07-09", Name: "marker"},
			expected:  "2014-07-09 custom \"marker\"\n",
		},
		{
			name: "document",
			directive: bc.Document{
				Date:    "2013-11-03",
				Account: bc.NewAccount(bc.Liabilities, "CreditCard"),
				Path:    "/home/joe/stmts/apr-2014.pdf",
			},
			expected: "2013-11-03 document Liabilities:CreditCard \"/home/joe/stmts/apr-2014.pdf\"\n",
		},
		{
			name:      "event",
			directive: bc.Event{Date: "2014-07-09", Name: "location", Description: "Paris, France"},
			expected:  "2014-07-09 event \"location\" \"Paris, France\"\n",
		},
		{
			name:      "include",
			directive: bc.Include{Filename: "path/to/include/file.beancount"},
			expected:  "include \"path/to/include/file.beancount\"\n",
		},
		{
			name: "note",
			directive: bc.Note{
				Date:    "2013-11-03",
				Account: bc.NewAccount(bc.Liabilities, "CreditCard"),
				Comment: `"Called about fraudulent card."`,
			},
			expected: "2013-11-03 note Liabilities:CreditCard \"Called about fraudulent card.\"\n",
		},
		{
			name: "pad",
			directive: bc.Pad{
				Date:           "2014-06-01",
				PadToAccount:   bc.NewAccount(bc.Assets, "BofA", "Checking"),
				PadFromAccount: bc.NewAccount(bc.Equity, "Opening-Balances"),
			},
			expected: "2014-06-01 pad Assets:BofA:Checking Equity:Opening-Balances\n",
		},
		{
			name:      "plugin",
			directive: bc.Plugin{Module: "beancount.plugins.module_name"},
			expected:  "plugin \"beancount.plugins.module_name\"\n",
		},
		{
			name:      "plugin with config",
			directive: bc.Plugin{Module: "beancount.plugins.module_name", Config: bc.Ptr("configuration data")},
			expected:  "plugin \"beancount.plugins.module_name\" \"configuration data\"\n",
		},
		{
			name:      "price",
			directive: bc.Price{Date: "2014-07-09", Currency: "HOOL", Amount: bc.NewAmount(dec("579.18"), "USD")},
			expected:  "2014-07-09 price HOOL 579.18 USD\n",
		},
		{
			name:      "query",
			directive: bc.Query{Date: "2014-07-09", Name: "france-balances", QueryString: "SELECT account, sum(position)"},
			expected:  "2014-07-09 query \"france-balances\" \"SELECT account, sum(position)\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderDirective(&buf, tt.directive))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestRenderDatedDirectiveStartsWithDateAndKeyword(t *testing.T) {
	directives := []bc.Dated{
		bc.Open{Date: "2014-07-09"},
		bc.Close{Date: "2014-07-09"},
		bc.Balance{Date: "2014-07-09"},
		bc.Commodity{Date: "2014-07-09"},
		bc.Custom{Date: "2014-07-09"},
		bc.Document{Date: "2014-07-09"},
		bc.Event{Date: "2014-07-09"},
		bc.Note{Date: "2014-07-09"},
		bc.Pad{Date: "2014-07-09"},
		bc.Price{Date: "2014-07-09"},
		bc.Query{Date: "2014-07-09"},
	}

	for _, d := range directives {
		t.Run(d.Kind().String(), func(t *testing.T) {
			out, err := String(d)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, "2014-07-09 "+d.Kind().String()), out)
		})
	}
}

func TestRenderTransaction(t *testing.T) {
	txn := bc.Transaction{
		Date:      "2014-05-05",
		Flag:      bc.ParseFlag("txn"),
		Payee:     bc.Ptr("Cafe Mogador"),
		Narration: "Lamb tagine with wine",
		Postings: []bc.Posting{
			{Account: bc.NewAccount(bc.Liabilities, "CreditCard", "CapitalOne"), Units: units("-37.45", "USD")},
			{Account: bc.NewAccount(bc.Expenses, "Restaurant")},
		},
	}

	out, err := String(txn)
	require.NoError(t, err)
	assert.Equal(t,
		"2014-05-05 * \"Cafe Mogador\" \"Lamb tagine with wine\"\n"+
			"\tLiabilities:CreditCard:CapitalOne\t-37.45 USD\n"+
			"\tExpenses:Restaurant\t\n",
		out)
}

func TestRenderTransactionTagsLinksAndMeta(t *testing.T) {
	txn := bc.Transaction{
		Date:      "2014-05-08",
		Flag:      bc.FlagWarning,
		Narration: "Tickets",
		Tags:      bc.NewTags("trip", "fun"),
		Links:     bc.NewLinks("invoice-42"),
		Postings: []bc.Posting{
			{
				Account: bc.NewAccount(bc.Liabilities, "CreditCard"),
				Units:   units("-80.00", "USD"),
				Flag:    bc.Ptr(bc.ParseFlag("!")),
				Meta:    bc.NewMeta(bc.MetaEntry{Key: "seat", Value: bc.Text(`"12A"`)}),
			},
		},
		Meta: bc.NewMeta(bc.MetaEntry{Key: "confirmed", Value: bc.Bool(false)}),
	}

	out, err := String(txn)
	require.NoError(t, err)
	assert.Equal(t,
		"2014-05-08 ! \"Tickets\" #fun #trip ^invoice-42\n"+
			"\t! Liabilities:CreditCard\t-80.00 USD\n"+
			"\t\tseat: \"12A\"\n"+
			"\tconfirmed: false\n",
		out)
}

func TestRenderOtherFlagVerbatim(t *testing.T) {
	out, err := String(bc.Transaction{Date: "2014-05-08", Flag: bc.ParseFlag("P"), Narration: "Padding"})
	require.NoError(t, err)
	assert.Equal(t, "2014-05-08 P \"Padding\"\n", out)
}

func TestFormatIncompleteAmount(t *testing.T) {
	usd := bc.Ptr(bc.Currency("USD"))
	num := decimal.NewNullDecimal(dec("10.50"))

	assert.Equal(t, "10.50 USD", FormatIncompleteAmount(bc.IncompleteAmount{Num: num, Currency: usd}))
	assert.Equal(t, "USD", FormatIncompleteAmount(bc.IncompleteAmount{Currency: usd}))
	assert.Equal(t, "10.50", FormatIncompleteAmount(bc.IncompleteAmount{Num: num}))
	assert.Equal(t, "", FormatIncompleteAmount(bc.IncompleteAmount{}))
}

func TestFormatCostSpec(t *testing.T) {
	cad := bc.Ptr(bc.Currency("CAD"))

	tests := []struct {
		name     string
		spec     bc.CostSpec
		expected string
	}{
		{
			name:     "total number uses double braces",
			spec:     bc.CostSpec{NumberTotal: decimal.NewNullDecimal(dec("436.01")), Currency: cad},
			expected: "{{436.01 CAD}}",
		},
		{
			name: "total takes precedence over per unit",
			spec: bc.CostSpec{
				NumberPer:   decimal.NewNullDecimal(dec("1.09")),
				NumberTotal: decimal.NewNullDecimal(dec("436.01")),
				Currency:    cad,
			},
			expected: "{{436.01 CAD}}",
		},
		{
			name:     "per unit",
			spec:     bc.CostSpec{NumberPer: decimal.NewNullDecimal(dec("518.73")), Currency: cad},
			expected: "{518.73 CAD}",
		},
		{
			name: "all fields",
			spec: bc.CostSpec{
				NumberPer: decimal.NewNullDecimal(dec("518.73")),
				Currency:  cad,
				Date:      bc.Ptr(bc.Date("2014-02-11")),
				Label:     bc.Ptr("lot-1"),
			},
			expected: `{518.73 CAD, 2014-02-11, "lot-1"}`,
		},
		{
			name:     "date only has no leading comma",
			spec:     bc.CostSpec{Date: bc.Ptr(bc.Date("2014-02-11"))},
			expected: "{2014-02-11}",
		},
		{
			name:     "number without currency is dropped",
			spec:     bc.CostSpec{NumberPer: decimal.NewNullDecimal(dec("1")), Label: bc.Ptr("x")},
			expected: `{"x"}`,
		},
		{
			name:     "merge",
			spec:     bc.CostSpec{MergeCost: true},
			expected: "{*}",
		},
		{
			name:     "empty",
			spec:     bc.CostSpec{},
			expected: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCostSpec(tt.spec))
		})
	}
}

func TestFormatPostingWithCostAndPrice(t *testing.T) {
	p := bc.Posting{
		Account: bc.NewAccount(bc.Assets, "MyBank", "Checking"),
		Units:   units("-400.00", "USD"),
		Cost:    &bc.CostSpec{NumberPer: decimal.NewNullDecimal(dec("1.00")), Currency: bc.Ptr(bc.Currency("USD"))},
		Price:   bc.PerUnitPrice{Amount: units("1.09", "CAD")},
	}
	assert.Equal(t, "\tAssets:MyBank:Checking\t-400.00 USD {1.00 USD} @ 1.09 CAD\n", FormatPosting(p))

	p.Cost = nil
	p.Price = bc.TotalPrice{Amount: units("436.01", "CAD")}
	assert.Equal(t, "\tAssets:MyBank:Checking\t-400.00 USD @@ 436.01 CAD\n", FormatPosting(p))
}

func TestFormatMetaValue(t *testing.T) {
	tests := []struct {
		name     string
		value    bc.MetaValue
		expected string
	}{
		{"account", bc.NewAccount(bc.Assets, "Cash"), "Assets:Cash"},
		{"amount", bc.NewAmount(dec("45.30"), "USD"), "45.30 USD"},
		{"true", bc.Bool(true), "true"},
		{"false", bc.Bool(false), "false"},
		{"currency", bc.Currency("EUR"), "EUR"},
		{"date", bc.Date("2014-01-01"), "2014-01-01"},
		{"number", bc.Number{Decimal: dec("3.140")}, "3.140"},
		{"tag", bc.Tag("trip"), "#trip"},
		{"text", bc.Text(`"Canadian Dollar"`), `"Canadian Dollar"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMetaValue(tt.value))
		})
	}
}

func TestRenderMetaInInsertionOrder(t *testing.T) {
	c := bc.Commodity{
		Date: "1867-01-01",
		Name: "CAD",
		Meta: bc.NewMeta(
			bc.MetaEntry{Key: "name", Value: bc.Text(`"Canadian Dollar"`)},
			bc.MetaEntry{Key: "asset-class", Value: bc.Text(`"cash"`)},
		),
	}

	out, err := String(c)
	require.NoError(t, err)
	assert.Equal(t, "1867-01-01 commodity CAD\n\tname: \"Canadian Dollar\"\n\tasset-class: \"cash\"\n", out)
}

func TestFormatNumberKeepsScale(t *testing.T) {
	assert.Equal(t, "562.00", FormatNumber(dec("562.00")))
	assert.Equal(t, "-0.5", FormatNumber(dec("-0.5")))
	assert.Equal(t, "100", FormatNumber(dec("100")))
	assert.Equal(t, "500", FormatNumber(decimal.New(5, 2)))
	assert.Equal(t, "0", FormatNumber(decimal.Decimal{}))
}

func TestRenderLedger(t *testing.T) {
	ledger := bc.NewLedger(
		bc.BcOption{Name: "title", Val: "Test"},
		bc.Open{Date: "2014-01-01", Account: bc.NewAccount(bc.Assets, "Cash")},
	)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ledger))
	assert.Equal(t, "option \"title\" \"Test\"\n\n2014-01-01 open Assets:Cash\n\n", buf.String())
}

func TestRenderUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDirective(&buf, bc.Unsupported{})
	assert.True(t, errors.Is(err, ErrUnsupportedDirective))
	assert.Empty(t, buf.String())

	err = RenderDirective(&buf, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedDirective))

	_, err = String(bc.Unsupported{})
	assert.True(t, errors.Is(err, ErrUnsupportedDirective))
}

func TestRenderLedgerWithUnsupportedWritesNothing(t *testing.T) {
	ledger := bc.NewLedger(
		bc.Include{Filename: "a.beancount"},
		bc.Unsupported{},
		bc.Include{Filename: "b.beancount"},
	)

	var buf bytes.Buffer
	err := Render(&buf, ledger)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDirective))
	assert.Contains(t, err.Error(), "directive 1")
	assert.Empty(t, buf.String())
}

type failingWriter struct {
	writes int
	failAt int
}

var errSink = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes >= w.failAt {
		return 0, errSink
	}
	return len(p), nil
}

func TestRenderWriteFailureAborts(t *testing.T) {
	ledger := bc.NewLedger(
		bc.Include{Filename: "a.beancount"},
		bc.Include{Filename: "b.beancount"},
		bc.Include{Filename: "c.beancount"},
	)

	w := &failingWriter{failAt: 2}
	err := Render(w, ledger)
	require.Error(t, err)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.True(t, errors.Is(err, errSink))
	assert.Equal(t, 2, w.writes, "render must stop at the first failed write")
}

func TestRenderPointerDirectives(t *testing.T) {
	cash := bc.NewAccount(bc.Assets, "Cash")
	ledger := bc.NewLedger(
		bc.Include{Filename: "a.beancount"},
		&bc.Open{Date: "2014-01-01", Account: cash},
		&bc.Transaction{Date: "2014-01-02", Narration: "Coffee"},
	)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ledger))
	assert.Equal(t,
		"include \"a.beancount\"\n\n"+
			"2014-01-01 open Assets:Cash\n\n"+
			"2014-01-02 * \"Coffee\"\n\n",
		buf.String())

	assert.True(t, Supported(&bc.Close{Date: "2014-12-31", Account: cash}))
	assert.True(t, Supported(bc.Close{Date: "2014-12-31", Account: cash}))
	assert.False(t, Supported(bc.Unsupported{}))
	assert.False(t, Supported(&bc.Unsupported{}))
	assert.False(t, Supported(nil))
}

func TestRenderNilPointerDirectiveWritesNothing(t *testing.T) {
	var missing *bc.Open
	ledger := bc.NewLedger(bc.Include{Filename: "a.beancount"}, missing)

	var buf bytes.Buffer
	err := Render(&buf, ledger)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDirective))
	assert.Empty(t, buf.String())
	assert.False(t, Supported(missing))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain", "Cafe Mogador", `"Cafe Mogador"`},
		{"apostrophe", "Joe's", `"Joe's"`},
		{"double quotes", `Joe's "best" cafe`, `"Joe's \"best\" cafe"`},
		{"backslash", `C:\ledger`, `"C:\\ledger"`},
		{"empty", "", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Quote(tt.in))
		})
	}
}

func TestRenderEscapesQuotedFields(t *testing.T) {
	tests := []struct {
		name      string
		directive bc.Directive
		expected  string
	}{
		{
			name:      "narration and payee",
			directive: bc.Transaction{Date: "2014-05-05", Payee: bc.Ptr(`The "Spot"`), Narration: `Joe's "best" cafe`},
			expected:  "2014-05-05 * \"The \\\"Spot\\\"\" \"Joe's \\\"best\\\" cafe\"\n",
		},
		{
			name:      "option",
			directive: bc.BcOption{Name: "title", Val: `My "Ledger"`},
			expected:  "option \"title\" \"My \\\"Ledger\\\"\"\n",
		},
		{
			name:      "event",
			directive: bc.Event{Date: "2014-05-05", Name: "location", Description: `Paris "FR"`},
			expected:  "2014-05-05 event \"location\" \"Paris \\\"FR\\\"\"\n",
		},
		{
			name:      "query",
			directive: bc.Query{Date: "2014-05-05", Name: "cash", QueryString: `SELECT account WHERE narration ~ "x"`},
			expected:  "2014-05-05 query \"cash\" \"SELECT account WHERE narration ~ \\\"x\\\"\"\n",
		},
		{
			name:      "document path",
			directive: bc.Document{Date: "2014-05-05", Account: bc.NewAccount(bc.Assets, "Cash"), Path: `C:\docs\a.pdf`},
			expected:  "2014-05-05 document Assets:Cash \"C:\\\\docs\\\\a.pdf\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := String(tt.directive)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRenderPostingMetaNestedUnderItsPosting(t *testing.T) {
	txn := bc.Transaction{
		Date:      "2014-05-05",
		Narration: "Split",
		Postings: []bc.Posting{
			{
				Account: bc.NewAccount(bc.Expenses, "Food"),
				Units:   units("10.00", "USD"),
				Meta:    bc.NewMeta(bc.MetaEntry{Key: "receipt", Value: bc.Text(`"r-1"`)}),
			},
			{
				Account: bc.NewAccount(bc.Assets, "Cash"),
				Units:   units("-10.00", "USD"),
				Meta: bc.NewMeta(
					bc.MetaEntry{Key: "drawer", Value: bc.Number{Decimal: dec("2")}},
					bc.MetaEntry{Key: "counted", Value: bc.Bool(true)},
				),
			},
		},
		Meta: bc.NewMeta(bc.MetaEntry{Key: "source", Value: bc.Text(`"bank"`)}),
	}

	out, err := String(txn)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "\tExpenses:Food\t10.00 USD", lines[1])
	assert.Equal(t, "\t\treceipt: \"r-1\"", lines[2])
	assert.Equal(t, "\tAssets:Cash\t-10.00 USD", lines[3])
	assert.Equal(t, "\t\tdrawer: 2", lines[4])
	assert.Equal(t, "\t\tcounted: true", lines[5])
	assert.Equal(t, "\tsource: \"bank\"", lines[6])

	// Posting lines stay at one tab so each metadata block reads as nested under the line above it.
	for _, i := range []int{1, 3} {
		assert.False(t, strings.HasPrefix(lines[i], "\t\t"), "line %d", i)
	}
}
