// Package selector resolves path queries against a built document tree.
// The same walk serves execution (Resolve) and validation replay (Check):
// each segment is looked up as an alias first, then as a 0-based index over
// the addressable (non-selector) children.
package selector

import (
	"fmt"
	"strconv"

	"github.com/sandlang/sand/internal/ast"
)

// Reason classifies why a selector cannot be resolved.
type Reason int

const (
	// LastSegment: the path neither ends in a wildcard nor names a
	// declared target.
	LastSegment Reason = iota
	// Neither: a prefix segment is not an alias and not a number.
	Neither
	// OutOfRange: a numeric segment exceeds the addressable children.
	OutOfRange
	// Local: a local selector reached a context that only permits
	// global ones.
	Local
)

// Error describes one unresolvable selector. Its text is the description
// embedded in the user-facing "selector syntax is incorrect" diagnostic.
type Error struct {
	Reason  Reason
	Segment string
}

func (e *Error) Error() string {
	switch e.Reason {
	case LastSegment:
		return "the last segment must be a declared name or a trailing dot"
	case Neither:
		return fmt.Sprintf("`%s` is neither an alias nor an index", e.Segment)
	case OutOfRange:
		return fmt.Sprintf("index %s is out of range", e.Segment)
	case Local:
		return "local selectors are not allowed here"
	}
	return "unresolvable selector"
}

// Resolve walks sel from the document root and returns the addressed node
// plus the index of the selected name. nameIndex is -1 when the selector
// addresses every declared name (wildcard or empty path). Local selectors
// are rejected: outside the editor there is no enclosing section to start
// from.
func Resolve(doc *ast.Document, sel *ast.Selector) (node ast.Node, nameIndex int, err error) {
	if sel.Local {
		return nil, 0, &Error{Reason: Local}
	}
	return ResolveFrom(doc, doc.Root, sel)
}

// ResolveFrom walks sel from start instead of the root. Hover resolution of
// local selectors passes the enclosing section here.
func ResolveFrom(doc *ast.Document, start ast.Node, sel *ast.Selector) (node ast.Node, nameIndex int, err error) {
	prefix := sel.Path
	nameIndex = -1
	if !sel.Wildcard && len(sel.Path) > 0 {
		// The last segment selects a name; the rest is the traversal
		// prefix. While names are missing (already a fatal build error)
		// the declared-name test is skipped so validation of the prefix
		// can still contribute.
		last := sel.Path[len(sel.Path)-1]
		if len(doc.Names) > 0 {
			nameIndex = doc.NameIndex(last)
			if nameIndex < 0 {
				return nil, 0, &Error{Reason: LastSegment, Segment: last}
			}
		}
		prefix = sel.Path[:len(sel.Path)-1]
	}

	cur := start
	for _, seg := range prefix {
		b := ast.BodyOf(cur)
		if b == nil {
			// Descended into a leaf; remaining segments have nothing to
			// address and the walk stops early.
			break
		}
		if idx, ok := b.Aliases[seg]; ok {
			cur = b.Children[idx]
			continue
		}
		idx, convErr := strconv.Atoi(seg)
		if convErr != nil || idx < 0 {
			return nil, 0, &Error{Reason: Neither, Segment: seg}
		}
		kids := addressable(b.Children)
		if idx >= len(kids) {
			return nil, 0, &Error{Reason: OutOfRange, Segment: seg}
		}
		cur = kids[idx]
	}
	return cur, nameIndex, nil
}

// Check replays resolution in validate-only mode.
func Check(doc *ast.Document, start ast.Node, sel *ast.Selector) error {
	_, _, err := ResolveFrom(doc, start, sel)
	return err
}

// addressable filters out selector children: they hold child positions but
// indices never count them.
func addressable(children []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(children))
	for _, c := range children {
		if _, ok := c.(*ast.Selector); ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
