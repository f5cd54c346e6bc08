// Package parser turns sand source text into a validated document tree.
// Parsing runs in three stages: a scanner lifts the `#` constructs out of
// the surrounding prose, a builder folds them into a tree of containers,
// and a validator checks names, aliases, and selectors over the finished
// tree. Scan failures abort immediately; everything after that accumulates.
package parser

import (
	"strings"

	"github.com/sandlang/sand/internal/ast"
	"github.com/sandlang/sand/internal/selector"
)

// Parse builds the document for src. On failure the document is nil and
// the error is either a *SyntaxError from the scanner or an Errors list
// from the later stages.
func Parse(src string) (*ast.Document, error) {
	items, serr := scanItems(src)
	if serr != nil {
		return nil, serr
	}
	doc, diags := build(src, items)
	if errs := validate(doc, diags); len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

// ParseSelector parses a selector given on its own, outside any document,
// and resolves it against doc. Local selectors only mean something inside
// a container, so they are rejected here.
func ParseSelector(doc *ast.Document, src string) (*ast.Selector, error) {
	trimmed := strings.TrimSpace(src)
	sc := &scanner{src: trimmed}
	if sc.peek() != '#' {
		return nil, sc.errAt(0, "a selector must start with `#.`")
	}
	sc.pos++
	if sc.peek() != '.' {
		return nil, sc.errAt(sc.pos, "a selector must start with `#.`")
	}
	it, serr := sc.scanSelector(0)
	if serr != nil {
		return nil, serr
	}
	if sc.pos != len(trimmed) {
		return nil, sc.errAt(sc.pos, "unexpected trailing characters after the selector")
	}
	sel := &ast.Selector{
		Meta:     ast.Meta{Span: it.span},
		Local:    it.local,
		Path:     it.path,
		Wildcard: it.wildcard,
	}
	if _, _, err := selector.Resolve(doc, sel); err != nil {
		return nil, Errors{{Kind: BadSelector, Detail: err.Error(), Span: sel.Span}}
	}
	return sel, nil
}
