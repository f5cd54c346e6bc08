package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandlang/sand/internal/ast"
)

// itemKind discriminates the flat top-level constructs the builder consumes.
type itemKind int

const (
	itemNames itemKind = iota
	itemSection
	itemSentences
	itemFiltered
	itemSelector
)

// item is one scanned construct with its byte span. Only the fields for its
// kind are set. Bracketed and braced content is kept raw: escape sequences
// are decoded at render time, never here.
type item struct {
	kind  itemKind
	span  ast.Span
	alias string

	names     []string   // itemNames
	nameSpans []ast.Span // itemNames, parallel to names

	level int    // itemSection, number of marker hashes after the alias
	title string // itemSection, rest of the heading line

	texts []string // itemSentences, one raw string per bracket group

	targets []string // itemFiltered, nil applies to every name
	content string   // itemFiltered, raw braced content

	local    bool     // itemSelector
	path     []string // itemSelector
	wildcard bool     // itemSelector
}

type scanner struct {
	src string
	pos int
}

// scanItems tokenizes a whole document. Text between items is prose and is
// skipped; a backslash escapes the following character, so `\#` never
// starts an item. The first construct that cannot be read aborts the scan.
func scanItems(src string) ([]item, *SyntaxError) {
	s := &scanner{src: src}
	var items []item
	for s.skipProse() {
		it, err := s.scanItem()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// skipProse advances to the next unescaped '#'. Returns false at EOF.
func (s *scanner) skipProse() bool {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			if s.pos > len(s.src) {
				s.pos = len(s.src)
			}
		case '#':
			return true
		default:
			s.pos++
		}
	}
	return false
}

// scanItem reads one construct starting at '#'.
func (s *scanner) scanItem() (item, *SyntaxError) {
	start := s.pos
	s.pos++ // '#'

	// An identifier directly after '#' is the alias of whatever follows.
	alias := s.scanIdent()

	switch {
	case s.peek() == '(' && alias == "":
		return s.scanNames(start)
	case s.peek() == '#':
		return s.scanSection(start, alias)
	case s.peek() == '[':
		return s.scanSentences(start, alias)
	case s.peek() == '{':
		return s.scanFiltered(start, alias)
	case s.peek() == '.' && alias == "":
		return s.scanSelector(start)
	}
	return item{}, s.errAt(start, "a `#` here starts no name declaration, section, sentence set, filtered block, or selector")
}

// scanNames reads `(n1, n2, ...)` after the '#'.
func (s *scanner) scanNames(start int) (item, *SyntaxError) {
	s.pos++ // '('
	it := item{kind: itemNames}
	for {
		s.skipSpaces()
		idStart := s.pos
		id := s.scanIdent()
		if id == "" {
			return item{}, s.errAt(idStart, "expected a name inside `#(...)`")
		}
		it.names = append(it.names, id)
		it.nameSpans = append(it.nameSpans, ast.Span{Start: idStart, End: s.pos})
		s.skipSpaces()
		switch s.peek() {
		case ',':
			s.pos++
		case ')':
			s.pos++
			it.span = ast.Span{Start: start, End: s.pos}
			return it, nil
		default:
			return item{}, s.errAt(s.pos, "expected `,` or `)` in the name declaration")
		}
	}
}

// scanSection reads the marker run and heading line. The run length after
// the alias is the level: `## T` is level 1, `#a## T` is level 2.
func (s *scanner) scanSection(start int, alias string) (item, *SyntaxError) {
	level := 0
	for s.peek() == '#' {
		level++
		s.pos++
	}
	rest := s.src[s.pos:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	title := strings.TrimSpace(rest)
	s.pos += len(rest)
	it := item{
		kind:  itemSection,
		span:  ast.Span{Start: start, End: s.pos},
		alias: alias,
		level: level,
		title: title,
	}
	if s.pos < len(s.src) {
		s.pos++ // the newline
	}
	return it, nil
}

// scanSentences reads adjacent `[...]` groups.
func (s *scanner) scanSentences(start int, alias string) (item, *SyntaxError) {
	it := item{kind: itemSentences, alias: alias}
	for s.peek() == '[' {
		s.pos++
		text, ok := s.scanUntil(']')
		if !ok {
			return item{}, s.errAt(start, "unterminated `[` in a sentence set")
		}
		it.texts = append(it.texts, text)
	}
	it.span = ast.Span{Start: start, End: s.pos}
	return it, nil
}

// scanFiltered reads `{{c}}`, `{all, {c}}` or `{[n1, n2], {c}}`.
func (s *scanner) scanFiltered(start int, alias string) (item, *SyntaxError) {
	s.pos++ // outer '{'
	it := item{kind: itemFiltered, alias: alias}
	s.skipSpaces()

	switch {
	case s.peek() == '{':
		// Applies to every name.
	case s.peek() == '[':
		s.pos++
		for {
			s.skipSpaces()
			idStart := s.pos
			id := s.scanIdent()
			if id == "" {
				return item{}, s.errAt(idStart, "expected a name inside the filter list")
			}
			it.targets = append(it.targets, id)
			s.skipSpaces()
			if s.peek() == ',' {
				s.pos++
				continue
			}
			break
		}
		if s.peek() != ']' {
			return item{}, s.errAt(s.pos, "expected `]` to close the filter list")
		}
		s.pos++
		if err := s.expectComma("the filter list"); err != nil {
			return item{}, err
		}
	default:
		idStart := s.pos
		if s.scanIdent() != "all" {
			return item{}, s.errAt(idStart, "expected `{`, `[`, or `all` in a filtered block")
		}
		if err := s.expectComma("`all`"); err != nil {
			return item{}, err
		}
	}

	if s.peek() != '{' {
		return item{}, s.errAt(s.pos, "expected `{` to open the filtered content")
	}
	s.pos++
	content, ok := s.scanUntil('}')
	if !ok {
		return item{}, s.errAt(start, "unterminated `{` in a filtered block")
	}
	it.content = content

	s.skipSpaces()
	if s.peek() != '}' {
		return item{}, s.errAt(s.pos, "expected `}` to close the filtered block")
	}
	s.pos++
	it.span = ast.Span{Start: start, End: s.pos}
	return it, nil
}

// scanSelector reads the path after the introducing `#.`: an optional `/`
// (local), dot-separated segments, and an optional trailing dot (wildcard).
// The selector ends at the first character that cannot extend it; the rest
// of the line is prose.
func (s *scanner) scanSelector(start int) (item, *SyntaxError) {
	s.pos++ // the '.' after '#'
	it := item{kind: itemSelector}
	if s.peek() == '/' {
		it.local = true
		s.pos++
	}

	if isIdentRune(s.peekRune()) {
		for {
			it.path = append(it.path, s.scanIdent())
			if s.peek() != '.' {
				break
			}
			if !isIdentRune(s.runeAfter(s.pos + 1)) {
				s.pos++ // the dot is the trailing wildcard
				it.wildcard = true
				break
			}
			s.pos++ // segment separator
		}
	} else if s.peek() == '.' {
		s.pos++
		it.wildcard = true
	}

	it.span = ast.Span{Start: start, End: s.pos}
	return it, nil
}

// scanUntil consumes raw text up to the first unescaped close byte, which
// is consumed but not returned. Escapes stay in the text.
func (s *scanner) scanUntil(close byte) (string, bool) {
	start := s.pos
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			if s.pos > len(s.src) {
				s.pos = len(s.src)
			}
		case close:
			text := s.src[start:s.pos]
			s.pos++
			return text, true
		default:
			s.pos++
		}
	}
	return "", false
}

func (s *scanner) scanIdent() string {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !isIdentRune(r) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos]
}

func (s *scanner) skipSpaces() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) expectComma(after string) *SyntaxError {
	s.skipSpaces()
	if s.peek() != ',' {
		return s.errAt(s.pos, "expected `,` after "+after)
	}
	s.pos++
	s.skipSpaces()
	return nil
}

func (s *scanner) peek() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

func (s *scanner) peekRune() rune {
	return s.runeAfter(s.pos)
}

func (s *scanner) runeAfter(off int) rune {
	if off >= len(s.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.src[off:])
	return r
}

func (s *scanner) errAt(off int, msg string) *SyntaxError {
	end := off + 1
	if end > len(s.src) {
		end = len(s.src)
	}
	return &SyntaxError{Span: ast.Span{Start: off, End: end}, Msg: msg}
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
