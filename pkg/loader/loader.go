// Package loader builds beancount ledgers from YAML documents.
//
// It is the input side of the beanrender CLI: the grammar parser for ledger text lives
// elsewhere, so ledgers are described as a list of directives in YAML.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/beancount"
)

// document is the top-level YAML shape.
type document struct {
	Directives []yaml.Node `yaml:"directives"`
}

// rawDirective holds the union of fields used by every directive type.
type rawDirective struct {
	Type        string       `yaml:"type"`
	Date        string       `yaml:"date"`
	Account     string       `yaml:"account"`
	Currencies  []string     `yaml:"currencies"`
	Booking     string       `yaml:"booking"`
	Amount      string       `yaml:"amount"`
	Tolerance   string       `yaml:"tolerance"`
	Name        string       `yaml:"name"`
	Value       string       `yaml:"value"`
	Description string       `yaml:"description"`
	Path        string       `yaml:"path"`
	Filename    string       `yaml:"filename"`
	Module      string       `yaml:"module"`
	Config      *string      `yaml:"config"`
	Comment     string       `yaml:"comment"`
	Query       string       `yaml:"query"`
	Args        []yaml.Node  `yaml:"args"`
	PadFrom     string       `yaml:"pad_from"`
	Currency    string       `yaml:"currency"`
	Flag        string       `yaml:"flag"`
	Payee       *string      `yaml:"payee"`
	Narration   string       `yaml:"narration"`
	Tags        []string     `yaml:"tags"`
	Links       []string     `yaml:"links"`
	Postings    []rawPosting `yaml:"postings"`
	Meta        yaml.Node    `yaml:"meta"`
	Source      *string      `yaml:"source"`
}

type rawPosting struct {
	Account string    `yaml:"account"`
	Units   string    `yaml:"units"`
	Flag    *string   `yaml:"flag"`
	Cost    *rawCost  `yaml:"cost"`
	Price   *rawPrice `yaml:"price"`
	Meta    yaml.Node `yaml:"meta"`
}

type rawCost struct {
	PerUnit  string  `yaml:"per_unit"`
	Total    string  `yaml:"total"`
	Currency *string `yaml:"currency"`
	Date     *string `yaml:"date"`
	Label    *string `yaml:"label"`
	Merge    bool    `yaml:"merge"`
}

type rawPrice struct {
	PerUnit string `yaml:"per_unit"`
	Total   string `yaml:"total"`
}

// Loader converts YAML ledger documents into beancount.Ledger values.
type Loader struct {
	logger *slog.Logger
}

// New creates a Loader. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadFile reads and loads a YAML ledger file.
func (l *Loader) LoadFile(path string) (beancount.Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return beancount.Ledger{}, fmt.Errorf("failed to read ledger file: %w", err)
	}
	return l.Load(bytes.NewReader(data))
}

// Load decodes a YAML ledger document.
//
// Directives with an unknown type become beancount.Unsupported. Options renaming
// root accounts apply to the accounts of every later directive.
func (l *Loader) Load(r io.Reader) (beancount.Ledger, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return beancount.Ledger{}, nil
		}
		return beancount.Ledger{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	b := &builder{names: beancount.DefaultAccountNames()}
	directives := make([]beancount.Directive, 0, len(doc.Directives))

	for i := range doc.Directives {
		node := &doc.Directives[i]

		var raw rawDirective
		if err := node.Decode(&raw); err != nil {
			return beancount.Ledger{}, fmt.Errorf("directive %d (line %d): %w", i, node.Line, err)
		}

		d, err := b.directive(raw)
		if err != nil {
			return beancount.Ledger{}, fmt.Errorf("directive %d (line %d): %w", i, node.Line, err)
		}
		if d.Kind() == beancount.KindUnsupported {
			l.logger.Warn("Unsupported directive type", "index", i, "line", node.Line, "type", raw.Type)
		}

		directives = append(directives, d)
	}

	l.logger.Debug("Loaded ledger", "directives", len(directives))
	return beancount.NewLedger(directives...), nil
}
