// Package render writes beancount document model values as ledger source text.
//
// Every directive is formatted into a buffer and written to the sink in one call, so a
// failed write aborts the render at the directive that could not be written.
//
// Quoted strings are escaped with Quote, except the fields documented as verbatim
// (note comments, custom arguments and Text metadata), which carry their own quotes.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/beancount"
)

// ErrUnsupportedDirective is returned when asked to render beancount.Unsupported.
var ErrUnsupportedDirective = errors.New("could not render unsupported directive")

// WriteError wraps a failure of the output sink.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write ledger output: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Render writes the whole ledger to w, each directive followed by a blank line.
//
// Every directive is formatted before anything is written, so a directive that cannot be
// rendered leaves w untouched. After a write error the output written so far is
// incomplete and should be discarded.
func Render(w io.Writer, ledger beancount.Ledger) error {
	chunks := make([]string, 0, len(ledger.Directives))
	for i, d := range ledger.Directives {
		var sb strings.Builder
		if err := formatDirective(&sb, d); err != nil {
			return fmt.Errorf("directive %d: %w", i, err)
		}
		sb.WriteString("\n")
		chunks = append(chunks, sb.String())
	}

	for _, chunk := range chunks {
		if err := write(w, chunk); err != nil {
			return err
		}
	}

	return nil
}

// RenderDirective writes a single directive to w.
func RenderDirective(w io.Writer, d beancount.Directive) error {
	var sb strings.Builder
	if err := formatDirective(&sb, d); err != nil {
		return err
	}
	return write(w, sb.String())
}

// String returns the source text of a single directive.
func String(d beancount.Directive) (string, error) {
	var sb strings.Builder
	if err := formatDirective(&sb, d); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Supported reports whether d can be rendered.
// Pointers to directive values are supported; nil and Unsupported are not.
func Supported(d beancount.Directive) bool {
	var sb strings.Builder
	return formatDirective(&sb, d) == nil
}

func write(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}
