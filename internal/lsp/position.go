package lsp

import "unicode/utf8"

// lineOffsets returns the byte offset of every line start. A "\r\n" pair
// counts as one line break.
func lineOffsets(text string) []int {
	offs := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offs = append(offs, i+1)
		}
	}
	return offs
}

func u16Len(r rune) int {
	if r < 0x10000 {
		return 1
	}
	return 2
}

// offsetToPos converts a byte offset into a protocol position. Offsets
// outside the text clamp to its bounds.
func offsetToPos(lines []int, text string, off int) Position {
	if off < 0 {
		off = 0
	}
	if off > len(text) {
		off = len(text)
	}
	line := 0
	for line+1 < len(lines) && lines[line+1] <= off {
		line++
	}
	col := 0
	for i := lines[line]; i < off; {
		r, sz := utf8.DecodeRuneInString(text[i:])
		if r == '\r' || r == '\n' {
			break
		}
		col += u16Len(r)
		i += sz
	}
	return Position{Line: line, Character: col}
}

// posToOffset converts a protocol position into a byte offset, clamping to
// the addressed line.
func posToOffset(lines []int, text string, p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(lines) {
		return len(text)
	}
	i := lines[p.Line]
	need := p.Character
	for i < len(text) && need > 0 {
		r, sz := utf8.DecodeRuneInString(text[i:])
		if r == '\n' {
			break
		}
		if r != '\r' {
			need -= u16Len(r)
		}
		i += sz
	}
	return i
}

func rangeOf(lines []int, text string, start, end int) Range {
	return Range{
		Start: offsetToPos(lines, text, start),
		End:   offsetToPos(lines, text, end),
	}
}
