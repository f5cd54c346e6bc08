package lsp

import (
	"errors"

	"github.com/sandlang/sand/internal/ast"
	"github.com/sandlang/sand/internal/parser"
)

// toDiagnostics converts a parse failure into protocol diagnostics. Grammar
// failures come from the scanner as a single diagnostic under the parser
// source; everything later is a batch under the validator source. A nil err
// yields the empty, non-nil slice that clears previous squiggles.
func toDiagnostics(d *document, err error) []Diagnostic {
	diags := []Diagnostic{}
	if err == nil {
		return diags
	}

	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		return append(diags, Diagnostic{
			Range:    diagRange(d, serr.Span),
			Severity: 1,
			Source:   sourceParser,
			Message:  serr.Error(),
		})
	}

	var batch parser.Errors
	if errors.As(err, &batch) {
		for _, pd := range batch {
			diags = append(diags, Diagnostic{
				Range:    diagRange(d, pd.Span),
				Severity: 1,
				Source:   sourceValidator,
				Message:  pd.Message(),
			})
		}
	}
	return diags
}

// diagRange widens zero-width spans to one byte so the marker is visible.
// The missing-names diagnostic has no source position and lands on the
// first byte this way.
func diagRange(d *document, sp ast.Span) Range {
	end := sp.End
	if end <= sp.Start {
		end = sp.Start + 1
	}
	return rangeOf(d.lines, d.text, sp.Start, end)
}
