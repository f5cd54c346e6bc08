package lsp

import (
	"fmt"
	"strings"

	"github.com/sandlang/sand/internal/ast"
	"github.com/sandlang/sand/internal/render"
	"github.com/sandlang/sand/internal/selector"
)

func (s *Server) hover(uri string, pos Position) *Hover {
	d := s.snapshot(uri)
	if d == nil || d.doc == nil {
		return nil
	}
	return buildHover(d, posToOffset(d.lines, d.text, pos))
}

// buildHover describes whatever construct sits under the cursor. The name
// declaration is special-cased first: it never becomes a tree node. Prose
// between items falls through to the document root, whose span covers the
// whole source.
func buildHover(d *document, off int) *Hover {
	if d.doc.NamesSpan.Contains(off) {
		return hoverAt(d, d.doc.NamesSpan, namesContent(d.doc))
	}

	node := ast.FindNodeAt(d.doc.Root, off)
	switch t := node.(type) {
	case *ast.Selector:
		return hoverAt(d, t.Span, selectorContent(d, t))
	case *ast.Sentences:
		return hoverAt(d, t.Span, leafContent("Sentence set",
			"One bracket group per declared name, in declaration order.", t.Alias))
	case *ast.Filtered:
		return hoverAt(d, t.Span, filteredContent(t))
	case *ast.Section:
		return hoverAt(d, t.Span, sectionContent(t))
	case *ast.Root:
		return hoverAt(d, t.Span, leafContent("Document root",
			"Holds every top-level item; children are addressable by alias or by position.", ""))
	}
	return nil
}

func hoverAt(d *document, sp ast.Span, content string) *Hover {
	rng := rangeOf(d.lines, d.text, sp.Start, sp.End)
	return &Hover{
		Contents: markupContent{Kind: "markdown", Value: content},
		Range:    &rng,
	}
}

func namesContent(doc *ast.Document) string {
	quoted := make([]string, len(doc.Names))
	for i, n := range doc.Names {
		quoted[i] = "`" + n + "`"
	}
	return "**Name declaration**\n\n" +
		"Declares the targets this document renders for: " + strings.Join(quoted, ", ") + ".\n" +
		"Sentence sets carry one bracket group per name, in this order."
}

func leafContent(title, body, alias string) string {
	s := "**" + title + "**\n\n" + body
	if alias != "" {
		s += "\n\nAlias: `" + alias + "`"
	}
	return s
}

func filteredContent(f *ast.Filtered) string {
	applies := "every name"
	if f.Targets != nil {
		quoted := make([]string, len(f.Targets))
		for i, t := range f.Targets {
			quoted[i] = "`" + t + "`"
		}
		applies = strings.Join(quoted, ", ")
	}
	return leafContent("Filtered block", "Applies to: "+applies+".", f.Alias)
}

func sectionContent(sec *ast.Section) string {
	body := fmt.Sprintf("Level %d. Children are addressable by alias or by position.", sec.Level)
	if sec.Title != "" {
		return leafContent("Section: "+sec.Title, body, sec.Alias)
	}
	return leafContent("Section", body, sec.Alias)
}

// selectorContent resolves the selector the same way rendering would and
// previews the addressed content ahead of the selector notes. Local
// selectors start from the section they appear in.
func selectorContent(d *document, sel *ast.Selector) string {
	source := strings.TrimSpace(d.text[sel.Span.Start:sel.Span.End])
	notes := "**Selector** `" + source + "`\n\n"
	if sel.Local {
		notes += "Resolves from the enclosing section. "
	}
	notes += "The addressed content renders here in its place."

	start := ast.Node(d.doc.Root)
	if sel.Local {
		start = ast.FindParentAt(d.doc.Root, sel.Span.Start)
	}
	node, nameIndex, err := selector.ResolveFrom(d.doc, start, sel)
	if err != nil {
		return notes + "\n\nUnresolvable: " + err.Error()
	}

	outputs := render.Node(d.doc, node, nameIndex, true)
	names := d.doc.Names
	if nameIndex >= 0 {
		names = names[nameIndex : nameIndex+1]
	}
	var b strings.Builder
	for i, out := range outputs {
		b.WriteString("**" + names[i] + "**\n\n" + out + "\n\n")
	}
	b.WriteString("---\n\n")
	b.WriteString(notes)
	return b.String()
}
