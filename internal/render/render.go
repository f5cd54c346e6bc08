// Package render projects a document tree into per-name output text.
// Rendering walks the subtree a selector picked, keeps only the content
// addressed to a name, and normalizes whitespace before escape sequences
// are decoded. Decoding runs last so `\n` survives the collapsing and can
// introduce real line breaks.
package render

import (
	"fmt"
	"strings"

	"github.com/sandlang/sand/internal/ast"
	"github.com/sandlang/sand/internal/selector"
)

// Render resolves sel against doc and renders the result. With a name in
// the selector the slice has one entry; a trailing-dot selector yields one
// entry per declared name, in declaration order.
func Render(doc *ast.Document, sel *ast.Selector, markdown bool) ([]string, error) {
	node, nameIndex, err := selector.Resolve(doc, sel)
	if err != nil {
		return nil, fmt.Errorf("resolve selector: %w", err)
	}
	return Node(doc, node, nameIndex, markdown), nil
}

// Node renders an already resolved node. nameIndex < 0 renders once per
// declared name.
func Node(doc *ast.Document, n ast.Node, nameIndex int, markdown bool) []string {
	if nameIndex >= 0 {
		return []string{renderOne(doc, n, nameIndex, markdown)}
	}
	out := make([]string, len(doc.Names))
	for i := range doc.Names {
		out[i] = renderOne(doc, n, i, markdown)
	}
	return out
}

func renderOne(doc *ast.Document, n ast.Node, idx int, markdown bool) string {
	var b strings.Builder
	emit(&b, doc, n, idx, markdown)
	return decodeEscapes(flatten(b.String()))
}

// emit writes the raw projection for one name. Containers separate their
// children with single spaces; only markdown headings introduce line
// breaks. Whatever mess this produces is cleaned up by flatten.
func emit(b *strings.Builder, doc *ast.Document, n ast.Node, idx int, markdown bool) {
	switch t := n.(type) {
	case *ast.Sentences:
		if idx < len(t.Texts) {
			b.WriteString(trim(t.Texts[idx]))
		}
	case *ast.Filtered:
		if appliesTo(t, doc, idx) {
			b.WriteString(trim(t.Content))
		}
	case *ast.Section:
		if markdown {
			b.WriteString("\n")
			b.WriteString(strings.Repeat("#", t.Level+1))
			b.WriteString(" ")
			b.WriteString(trim(t.Title))
			b.WriteString("\n")
		}
		emitChildren(b, doc, &t.Body, idx, markdown)
	case *ast.Root:
		emitChildren(b, doc, &t.Body, idx, markdown)
	case *ast.Selector:
		// Selectors are queries, not content.
	}
}

func emitChildren(b *strings.Builder, doc *ast.Document, body *ast.Body, idx int, markdown bool) {
	for _, c := range body.Children {
		b.WriteString(" ")
		emit(b, doc, c, idx, markdown)
	}
}

func appliesTo(f *ast.Filtered, doc *ast.Document, idx int) bool {
	if f.Targets == nil {
		return true
	}
	for _, t := range f.Targets {
		if t == doc.Names[idx] {
			return true
		}
	}
	return false
}

// trim collapses every whitespace run, line breaks included, to a single
// space.
func trim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// flatten trims each line and drops the empty ones.
func flatten(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if t := trim(l); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

// decodeEscapes resolves backslash sequences in one left-to-right pass, so
// the output of one replacement is never re-read as another escape. `\n`
// becomes a newline; `\#`, `\\`, `\/`, `\]` and `\}` drop the backslash;
// anything else passes through untouched.
func decodeEscapes(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
			case '#', '\\', '/', ']', '}':
				b.WriteByte(s[i+1])
			default:
				b.WriteByte(s[i])
				b.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
