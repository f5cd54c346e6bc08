package parser

import (
	"testing"

	"github.com/sandlang/sand/internal/ast"
)

func TestScanItems_ConstructsBetweenProse(t *testing.T) {
	src := "An escaped \\# stays prose.\n" +
		"#(en, ja)\n" +
		"#s1[Hi][Yo]\n" +
		"#note{{shared}}\n" +
		"#.s1.en\n" +
		"#greet# Greeting\n"

	items, serr := scanItems(src)
	if serr != nil {
		t.Fatalf("unexpected scan error: %v", serr)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}

	want := []itemKind{itemNames, itemSentences, itemFiltered, itemSelector, itemSection}
	for i, k := range want {
		if items[i].kind != k {
			t.Errorf("item %d: expected kind %d, got %d", i, k, items[i].kind)
		}
	}

	names := items[0]
	if len(names.names) != 2 || names.names[0] != "en" || names.names[1] != "ja" {
		t.Errorf("expected names [en ja], got %v", names.names)
	}

	s1 := items[1]
	if s1.alias != "s1" {
		t.Errorf("expected alias %q, got %q", "s1", s1.alias)
	}
	if len(s1.texts) != 2 || s1.texts[0] != "Hi" || s1.texts[1] != "Yo" {
		t.Errorf("expected texts [Hi Yo], got %v", s1.texts)
	}

	note := items[2]
	if note.alias != "note" || note.targets != nil || note.content != "shared" {
		t.Errorf("unexpected filtered item: %+v", note)
	}

	sel := items[3]
	if sel.local || sel.wildcard || len(sel.path) != 2 || sel.path[0] != "s1" || sel.path[1] != "en" {
		t.Errorf("unexpected selector item: %+v", sel)
	}

	greet := items[4]
	if greet.alias != "greet" || greet.level != 1 || greet.title != "Greeting" {
		t.Errorf("unexpected section item: %+v", greet)
	}
}

func TestScanItems_NameSpans(t *testing.T) {
	items, serr := scanItems("#(en, ja)")
	if serr != nil {
		t.Fatalf("unexpected scan error: %v", serr)
	}
	it := items[0]
	if it.span != (ast.Span{Start: 0, End: 9}) {
		t.Errorf("expected declaration span {0 9}, got %+v", it.span)
	}
	wantSpans := []ast.Span{{Start: 2, End: 4}, {Start: 6, End: 8}}
	for i, sp := range wantSpans {
		if it.nameSpans[i] != sp {
			t.Errorf("name %d: expected span %+v, got %+v", i, sp, it.nameSpans[i])
		}
	}
}

func TestScanItems_SectionLevels(t *testing.T) {
	tests := []struct {
		src   string
		alias string
		level int
		title string
	}{
		{"## T", "", 1, "T"},
		{"#a# One", "a", 1, "One"},
		{"#intro### Deep", "intro", 3, "Deep"},
		{"##   Spaced title  ", "", 1, "Spaced title"},
	}
	for _, tt := range tests {
		items, serr := scanItems(tt.src)
		if serr != nil {
			t.Fatalf("%q: unexpected scan error: %v", tt.src, serr)
		}
		it := items[0]
		if it.alias != tt.alias || it.level != tt.level || it.title != tt.title {
			t.Errorf("%q: expected (%q, %d, %q), got (%q, %d, %q)",
				tt.src, tt.alias, tt.level, tt.title, it.alias, it.level, it.title)
		}
	}
}

func TestScanItems_SelectorForms(t *testing.T) {
	tests := []struct {
		src      string
		local    bool
		path     []string
		wildcard bool
	}{
		{"#.", false, nil, false},
		{"#..", false, nil, true},
		{"#.a.b.c", false, []string{"a", "b", "c"}, false},
		{"#.a.", false, []string{"a"}, true},
		{"#./greet", true, []string{"greet"}, false},
		{"#./0.ja", true, []string{"0", "ja"}, false},
		{"#..after the dot this is prose", false, nil, true},
	}
	for _, tt := range tests {
		items, serr := scanItems(tt.src)
		if serr != nil {
			t.Fatalf("%q: unexpected scan error: %v", tt.src, serr)
		}
		it := items[0]
		if it.local != tt.local || it.wildcard != tt.wildcard {
			t.Errorf("%q: expected local=%v wildcard=%v, got local=%v wildcard=%v",
				tt.src, tt.local, tt.wildcard, it.local, it.wildcard)
		}
		if len(it.path) != len(tt.path) {
			t.Errorf("%q: expected path %v, got %v", tt.src, tt.path, it.path)
			continue
		}
		for i := range tt.path {
			if it.path[i] != tt.path[i] {
				t.Errorf("%q: expected path %v, got %v", tt.src, tt.path, it.path)
				break
			}
		}
	}
}

func TestScanItems_FilteredForms(t *testing.T) {
	items, serr := scanItems("#{[en, ja], {Both}}\n#{all, {Everyone}}\n#x{{Share}}")
	if serr != nil {
		t.Fatalf("unexpected scan error: %v", serr)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	listed := items[0]
	if len(listed.targets) != 2 || listed.targets[0] != "en" || listed.targets[1] != "ja" {
		t.Errorf("expected targets [en ja], got %v", listed.targets)
	}
	if listed.content != "Both" {
		t.Errorf("expected content %q, got %q", "Both", listed.content)
	}

	// `all` and the bare `{{...}}` form both mean every name: targets nil.
	if items[1].targets != nil || items[1].content != "Everyone" {
		t.Errorf("unexpected `all` item: %+v", items[1])
	}
	if items[2].targets != nil || items[2].alias != "x" || items[2].content != "Share" {
		t.Errorf("unexpected bare item: %+v", items[2])
	}
}

func TestScanItems_BracketContentStaysRaw(t *testing.T) {
	items, serr := scanItems("#s[Line one\n  line two][A \\] b]")
	if serr != nil {
		t.Fatalf("unexpected scan error: %v", serr)
	}
	texts := items[0].texts
	if len(texts) != 2 {
		t.Fatalf("expected 2 texts, got %d", len(texts))
	}
	if texts[0] != "Line one\n  line two" {
		t.Errorf("expected raw multi-line text, got %q", texts[0])
	}
	// Escapes are decoded at render time, not here.
	if texts[1] != "A \\] b" {
		t.Errorf("expected escape kept raw, got %q", texts[1])
	}
}

func TestScanItems_Errors(t *testing.T) {
	tests := []struct {
		src     string
		wantMsg string
	}{
		{"#()", "expected a name inside `#(...)`"},
		{"#(en ja)", "expected `,` or `)` in the name declaration"},
		{"#s[unclosed", "unterminated `[` in a sentence set"},
		{"#f{{x", "unterminated `{` in a filtered block"},
		{"#f{{x}", "expected `}` to close the filtered block"},
		{"#f{nope, {x}}", "expected `{`, `[`, or `all` in a filtered block"},
		{"#f{[], {x}}", "expected a name inside the filter list"},
		{"# plain prose hash", "a `#` here starts no name declaration, section, sentence set, filtered block, or selector"},
		{"see #3 for details", "a `#` here starts no name declaration, section, sentence set, filtered block, or selector"},
	}
	for _, tt := range tests {
		_, serr := scanItems(tt.src)
		if serr == nil {
			t.Errorf("%q: expected a scan error", tt.src)
			continue
		}
		if serr.Msg != tt.wantMsg {
			t.Errorf("%q: expected message %q, got %q", tt.src, tt.wantMsg, serr.Msg)
		}
	}
}

func TestScanItems_ErrorPrefix(t *testing.T) {
	_, serr := scanItems("#s[unclosed")
	if serr == nil {
		t.Fatal("expected a scan error")
	}
	want := "failed to parse input: unterminated `[` in a sentence set"
	if serr.Error() != want {
		t.Errorf("expected %q, got %q", want, serr.Error())
	}
}
