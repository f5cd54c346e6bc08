package parser

import "github.com/sandlang/sand/internal/ast"

// build turns the scanned item sequence into a document tree. It keeps an
// explicit stack of open containers with the root at the bottom: a section
// at level L closes every open section at level >= L, and closing a node
// attaches it to the then-current top, registering its alias there. Leaves
// attach to the current top directly. All problems accumulate; nothing
// fails fast here.
func build(src string, items []item) (*ast.Document, []Diag) {
	root := &ast.Root{
		Meta: ast.Meta{Span: ast.Span{Start: 0, End: len(src)}},
		Body: ast.Body{Aliases: map[string]int{}},
	}

	type frame struct {
		node  ast.Node
		level int
	}
	stack := []frame{{node: root, level: 0}}

	var (
		diags     []Diag
		names     []string
		namesSpan ast.Span
		declSpans []ast.Span
	)

	// attach appends child to parent, recording an alias collision at both
	// the new and the pre-existing span. The new entry still wins in the
	// table so later lookups stay deterministic.
	attach := func(parent, child ast.Node) {
		b := ast.BodyOf(parent)
		if alias := child.NodeAlias(); alias != "" {
			if prev, ok := b.Aliases[alias]; ok {
				diags = append(diags,
					Diag{Kind: DuplicateAlias, Detail: alias, Span: child.NodeSpan()},
					Diag{Kind: DuplicateAlias, Detail: alias, Span: b.Children[prev].NodeSpan()},
				)
			}
			b.Aliases[alias] = len(b.Children)
		}
		b.Children = append(b.Children, child)
	}

	closeTop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		attach(stack[len(stack)-1].node, top.node)
	}

	for _, it := range items {
		switch it.kind {
		case itemNames:
			declSpans = append(declSpans, it.span)
			if len(declSpans) > 1 {
				// Every declaration span is reported below; the first
				// declaration stays authoritative.
				continue
			}
			names = it.names
			namesSpan = it.span
			seen := make(map[string]bool, len(it.names))
			for i, n := range it.names {
				if seen[n] {
					diags = append(diags, Diag{Kind: DuplicateName, Detail: n, Span: it.nameSpans[i]})
				}
				seen[n] = true
			}

		case itemSection:
			for len(stack) > 1 && stack[len(stack)-1].level >= it.level {
				closeTop()
			}
			sec := &ast.Section{
				Meta:  ast.Meta{Span: it.span, Alias: it.alias},
				Level: it.level,
				Title: it.title,
				Body:  ast.Body{Aliases: map[string]int{}},
			}
			stack = append(stack, frame{node: sec, level: it.level})

		case itemSentences:
			attach(stack[len(stack)-1].node, &ast.Sentences{
				Meta:  ast.Meta{Span: it.span, Alias: it.alias},
				Texts: it.texts,
			})

		case itemFiltered:
			attach(stack[len(stack)-1].node, &ast.Filtered{
				Meta:    ast.Meta{Span: it.span, Alias: it.alias},
				Targets: it.targets,
				Content: it.content,
			})

		case itemSelector:
			attach(stack[len(stack)-1].node, &ast.Selector{
				Meta:     ast.Meta{Span: it.span},
				Local:    it.local,
				Path:     it.path,
				Wildcard: it.wildcard,
			})
		}
	}

	// Close every still-open section down to the root, preserving source
	// order.
	for len(stack) > 1 {
		closeTop()
	}

	if len(declSpans) > 1 {
		for _, sp := range declSpans {
			diags = append(diags, Diag{Kind: MultipleNameDefine, Span: sp})
		}
	}
	if len(declSpans) == 0 {
		diags = append(diags, Diag{Kind: MissingNames})
	}

	doc := &ast.Document{Names: names, NamesSpan: namesSpan, Root: root}
	return doc, diags
}
