package diffview

import (
	"regexp"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/lipgloss"

	"prreview/internal/model"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func sampleHunks() []model.Hunk {
	return []model.Hunk{{
		Header: "@@ -1,2 +1,3 @@",
		Lines: []model.DiffLine{
			model.Expansion(model.LineRange{Start: 1, End: 4}, 0),
			model.Context("before", 5, 5),
			model.Deletion("old", 6),
			model.Addition("new", 6),
		},
	}}
}

func TestRenderRowsMarksCursorAndComments(t *testing.T) {
	hunks := sampleHunks()
	rows := FlattenHunks(hunks)

	out := RenderRows(hunks, rows, 0, len(rows), RenderOptions{
		Width:      40,
		Cursor:     4,
		HasComment: func(line int) bool { return line == 6 },
	})
	if len(out) != len(rows) {
		t.Fatalf("rendered %d lines, want %d", len(out), len(rows))
	}

	if got := stripANSI(out[0]); !strings.Contains(got, "@@ -1,2 +1,3 @@") {
		t.Fatalf("header row = %q", got)
	}
	if got := stripANSI(out[1]); !strings.Contains(got, "4 hidden lines (1-4)") {
		t.Fatalf("expansion row = %q", got)
	}
	if got := stripANSI(out[3]); !strings.HasPrefix(got, " "+commentMarker+" ") || !strings.Contains(got, "6     - old") {
		t.Fatalf("deletion row = %q", got)
	}
	if got := stripANSI(out[4]); !strings.HasPrefix(got, cursorMarker+commentMarker+" ") {
		t.Fatalf("cursor row = %q", got)
	}
	for i, line := range out {
		if lipgloss.Width(line) > 40 {
			t.Fatalf("line %d exceeds width: %q", i, line)
		}
	}
}

func TestRenderRowsTruncatesToWidth(t *testing.T) {
	hunks := []model.Hunk{{Lines: []model.DiffLine{model.Context(strings.Repeat("x", 200), 1, 1)}}}
	rows := FlattenHunks(hunks)

	out := RenderRows(hunks, rows, 0, len(rows), RenderOptions{Width: 25, Cursor: -1})
	for i, line := range out {
		if w := lipgloss.Width(line); w != 25 {
			t.Fatalf("line %d width = %d, want 25", i, w)
		}
	}
	if !strings.HasSuffix(stripANSI(out[1]), "…") {
		t.Fatalf("expected ellipsis, got %q", out[1])
	}
}

func TestRenderRowsClampsWindow(t *testing.T) {
	hunks := sampleHunks()
	rows := FlattenHunks(hunks)

	if got := RenderRows(hunks, rows, 3, 99, RenderOptions{Width: 30}); len(got) != 2 {
		t.Fatalf("rendered %d lines, want 2", len(got))
	}
	if got := RenderRows(hunks, rows, -5, 1, RenderOptions{Width: 30}); len(got) != 1 {
		t.Fatalf("rendered %d lines, want 1", len(got))
	}
}

func TestRenderRowsShowsPendingExpansion(t *testing.T) {
	hunks := sampleHunks()
	hunks[0].Lines[0].IsExpanded = true
	rows := FlattenHunks(hunks)

	out := RenderRows(hunks, rows, 1, 2, RenderOptions{Width: 40})
	if got := stripANSI(out[0]); !strings.Contains(got, "loading") {
		t.Fatalf("pending expansion row = %q", got)
	}
}

func TestPlainLine(t *testing.T) {
	if got := PlainLine(model.Addition("x := 1", 3)); got != "+x := 1" {
		t.Fatalf("PlainLine = %q", got)
	}
	if got := PlainLine(model.Expansion(model.LineRange{Start: 2, End: 8}, 0)); got != "⋯ 2-8" {
		t.Fatalf("PlainLine = %q", got)
	}
}

func TestSyntaxSpansForPathUsesChromaLexerByExtension(t *testing.T) {
	if spans := syntaxSpansForPath("example.go", `if n > 10 { return "x" }`); len(spans) == 0 {
		t.Fatalf("expected syntax spans for Go file")
	}
	if spans := syntaxSpansForPath("example.txt", `if n > 10 { return "x" }`); len(spans) != 0 {
		t.Fatalf("expected no syntax spans for text file, got %v", spans)
	}
}

func TestSyntaxSpansForPathClassifiesKeywordAndString(t *testing.T) {
	code := `if n == 1 { return "x" }`
	spans := syntaxSpansForPath("example.go", code)

	hasKeyword := false
	hasString := false
	for _, s := range spans {
		if s.end > len(code) || s.start >= s.end {
			t.Fatalf("span %+v outside %q", s, code)
		}
		if s.token.InCategory(chroma.Keyword) {
			hasKeyword = true
		}
		if s.token.InSubCategory(chroma.LiteralString) {
			hasString = true
		}
	}
	if !hasKeyword || !hasString {
		t.Fatalf("keyword=%v string=%v in %v", hasKeyword, hasString, spans)
	}
}

func TestHighlighterPreservesText(t *testing.T) {
	h := NewHighlighter("monokai")
	code := `func main() { fmt.Println("hi") }`

	if got := stripANSI(h.Highlight("main.go", code)); got != code {
		t.Fatalf("highlight changed text: %q", got)
	}
	if got := stripANSI(h.Highlight("main.go", code)); got != code {
		t.Fatalf("cached highlight changed text: %q", got)
	}
	if got := NewHighlighter("no-such-theme").Highlight("notes.txt", "plain"); got != "plain" {
		t.Fatalf("plain text = %q", got)
	}
}
