package parser

import (
	"fmt"
	"strings"

	"github.com/sandlang/sand/internal/ast"
)

// Kind classifies a semantic diagnostic.
type Kind int

const (
	// MultipleNameDefine: more than one name declaration; reported once
	// per declaration span.
	MultipleNameDefine Kind = iota
	// DuplicateName: the same name twice within one declaration.
	DuplicateName
	// DuplicateAlias: two siblings share an alias; reported at both spans.
	DuplicateAlias
	// AliasConflict: an alias equals a declared name, which would make
	// trailing-segment resolution ambiguous.
	AliasConflict
	// MissingNames: the document declares no names at all. Always fatal.
	MissingNames
	// BadSelector: a selector cannot resolve; Detail carries the walk
	// failure description.
	BadSelector
)

// Diag is one semantic problem found while building or validating a
// document. Detail holds the offending name, alias, or selector failure
// description, depending on Kind.
type Diag struct {
	Kind   Kind
	Detail string
	Span   ast.Span
}

// Message renders the user-facing diagnostic text.
func (d Diag) Message() string {
	switch d.Kind {
	case MultipleNameDefine:
		return "names are defined more than once"
	case DuplicateName:
		return fmt.Sprintf("duplicate name: `%s`", d.Detail)
	case DuplicateAlias:
		return fmt.Sprintf("duplicate alias: `%s`", d.Detail)
	case AliasConflict:
		return fmt.Sprintf("alias `%s` conflicts with a name", d.Detail)
	case MissingNames:
		return "names are not defined"
	case BadSelector:
		return "selector syntax is incorrect: " + d.Detail
	}
	return d.Detail
}

// Errors is the accumulated diagnostic batch for one source snapshot.
// Either a document builds cleanly or the caller receives the whole batch;
// a partial document never leaks.
type Errors []Diag

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, d := range e {
		msgs[i] = d.Message()
	}
	return strings.Join(msgs, "; ")
}

// dedupe drops diagnostics repeating the same kind, payload and span,
// keeping first-seen order.
func dedupe(diags []Diag) Errors {
	if len(diags) == 0 {
		return nil
	}
	seen := make(map[Diag]struct{}, len(diags))
	out := make(Errors, 0, len(diags))
	for _, d := range diags {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// SyntaxError is a grammar-level failure: scanning stops at the first
// construct it cannot read and no AST is produced.
type SyntaxError struct {
	Span ast.Span
	Msg  string
}

func (e *SyntaxError) Error() string {
	return "failed to parse input: " + e.Msg
}
