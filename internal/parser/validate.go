package parser

import (
	"github.com/sandlang/sand/internal/ast"
	"github.com/sandlang/sand/internal/selector"
)

// validate runs the post-build checks over the finished tree and merges
// their findings with the builder's. The result is deduplicated but keeps
// first-seen order so reports stay stable across runs.
func validate(doc *ast.Document, diags []Diag) Errors {
	diags = append(diags, checkAliasConflicts(doc, doc.Root)...)
	diags = append(diags, checkSelectors(doc, doc.Root)...)
	return dedupe(diags)
}

// checkAliasConflicts flags aliases that shadow a declared name. Names and
// aliases share the lookup position in a selector segment, so a colliding
// alias would make `#.path.name` ambiguous. Only the alias that won its
// container's table is reported; a losing duplicate was already flagged by
// the builder.
func checkAliasConflicts(doc *ast.Document, n ast.Node) []Diag {
	b := ast.BodyOf(n)
	if b == nil {
		return nil
	}
	var diags []Diag
	for i, child := range b.Children {
		a := child.NodeAlias()
		if a != "" && doc.NameIndex(a) >= 0 && b.Aliases[a] == i {
			diags = append(diags, Diag{Kind: AliasConflict, Detail: a, Span: child.NodeSpan()})
		}
		diags = append(diags, checkAliasConflicts(doc, child)...)
	}
	return diags
}

// checkSelectors resolves every selector in the tree against its scope and
// reports the ones that cannot address anything. Local selectors resolve
// from their enclosing container, the rest from the root.
func checkSelectors(doc *ast.Document, n ast.Node) []Diag {
	b := ast.BodyOf(n)
	if b == nil {
		return nil
	}
	var diags []Diag
	for _, child := range b.Children {
		if sel, ok := child.(*ast.Selector); ok {
			start := ast.Node(doc.Root)
			if sel.Local {
				start = n
			}
			if err := selector.Check(doc, start, sel); err != nil {
				diags = append(diags, Diag{Kind: BadSelector, Detail: err.Error(), Span: sel.Span})
			}
			continue
		}
		diags = append(diags, checkSelectors(doc, child)...)
	}
	return diags
}
