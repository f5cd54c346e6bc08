package ast

// Span is a byte range into the source document.
type Span struct {
	Start int
	End   int
}

// Contains reports whether off lies within the span, inclusive at both ends.
func (s Span) Contains(off int) bool {
	return off >= s.Start && off <= s.End
}

// Document is a fully built and validated source snapshot. Names are the
// declared target names, ordered and unique. NamesSpan covers the (first)
// name declaration in the source.
type Document struct {
	Names     []string
	NamesSpan Span
	Root      *Root
}

// NameIndex returns the position of name in Names, or -1.
func (d *Document) NameIndex(name string) int {
	for i, n := range d.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Meta carries the source span and optional alias every node has.
type Meta struct {
	Span  Span
	Alias string // "" when the node has no alias
}

func (m *Meta) NodeSpan() Span    { return m.Span }
func (m *Meta) NodeAlias() string { return m.Alias }
func (m *Meta) node()             {}

// Node is the closed set of tree node kinds: *Sentences, *Filtered,
// *Section, *Root, *Selector. Use sites switch exhaustively.
type Node interface {
	NodeSpan() Span
	NodeAlias() string
	node()
}

// Body holds the ordered children of a section-like node and the alias table
// mapping a child's alias to its position in Children. On an alias collision
// the last writer wins in the table; the collision itself is reported as a
// build error.
type Body struct {
	Aliases  map[string]int
	Children []Node
}

// BodyOf returns the mutable container parts of a section-like node
// (*Root or *Section), or nil for leaf nodes.
func BodyOf(n Node) *Body {
	switch t := n.(type) {
	case *Root:
		return &t.Body
	case *Section:
		return &t.Body
	}
	return nil
}

// Root is the document root: a section at level 0 with no title. Its span
// covers the whole source.
type Root struct {
	Meta
	Body
}

// Section is a heading-introduced container. Level is the heading depth,
// always >= 1; Title is the single-line heading text.
type Section struct {
	Meta
	Level int
	Title string
	Body
}

// Sentences carries one string per declared name, positionally parallel
// to Document.Names.
type Sentences struct {
	Meta
	Texts []string
}

// Filtered carries content applied to every name (Targets nil) or only to
// the listed names.
type Filtered struct {
	Meta
	Targets []string
	Content string
}

// Selector is a path query. Path segments are aliases or decimal indices,
// disambiguated at resolve time. Wildcard marks a trailing dot ("render once
// per declared name"). Local selectors resolve from the enclosing section
// instead of the root.
type Selector struct {
	Meta
	Local    bool
	Path     []string
	Wildcard bool
}
