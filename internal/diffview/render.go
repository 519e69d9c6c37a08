package diffview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"prreview/internal/model"
)

const (
	cursorMarker  = "▸"
	commentMarker = "◉"
)

var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	expansionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	addStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	delStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	numberStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	commentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("24"))
	selectionStyle = lipgloss.NewStyle().Background(lipgloss.Color("238"))
)

// RenderOptions controls RenderRows. Selection bounds are inclusive and
// only used when Selecting is set.
type RenderOptions struct {
	Path      string
	Width     int
	Cursor    int
	Focused   bool
	Selecting bool
	SelStart  int
	SelEnd    int

	HasComment  func(line int) bool
	Highlighter *Highlighter
}

// RenderRows renders rows[from:to] of a file's flattened view as one string
// per row, each at most opts.Width cells wide.
func RenderRows(hunks []model.Hunk, rows []Row, from, to int, opts RenderOptions) []string {
	width := maxInt(1, opts.Width)
	from = clampInt(from, 0, len(rows))
	to = clampInt(to, from, len(rows))

	numW := maxInt(3, digits(maxLineNumber(hunks)))
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		line := renderRow(hunks, rows[i], i, numW, width, opts)
		out = append(out, line)
	}
	return out
}

func renderRow(hunks []model.Hunk, row Row, idx, numW, width int, opts RenderOptions) string {
	cursorMark := " "
	if idx == opts.Cursor {
		cursorMark = cursorMarker
	}

	var body string
	commentMark := " "
	if row.IsHeader() {
		body = headerStyle.Render(HeaderAt(hunks, row))
	} else if line, ok := LineAt(hunks, row); ok {
		if n, ok := line.EffectiveLine(); ok && opts.HasComment != nil && opts.HasComment(n) {
			commentMark = commentStyle.Render(commentMarker)
		}
		body = renderLine(line, numW, opts)
	}

	text := cursorMark + commentMark + " " + body
	text = ansi.Truncate(text, width, "…")
	if pad := width - lipgloss.Width(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}

	switch {
	case idx == opts.Cursor && opts.Focused:
		return cursorStyle.Render(text)
	case opts.Selecting && idx >= opts.SelStart && idx <= opts.SelEnd:
		return selectionStyle.Render(text)
	}
	return text
}

func renderLine(line model.DiffLine, numW int, opts RenderOptions) string {
	if line.Kind == model.LineExpansion {
		if line.IsExpanded {
			return expansionStyle.Render("⋯ loading context…")
		}
		return expansionStyle.Render(fmt.Sprintf("⋯ %d hidden lines (%d-%d), enter to expand",
			line.Gap.Len(), line.Gap.Start, line.Gap.End))
	}

	nums := fmt.Sprintf("%*s %*s", numW, lineNumber(line.OldLine), numW, lineNumber(line.NewLine))
	content := expandTabs(line.Content)
	if opts.Highlighter != nil {
		content = opts.Highlighter.Highlight(opts.Path, content)
	}

	marker := line.Kind.Prefix()
	switch line.Kind {
	case model.LineAddition:
		marker = addStyle.Render(marker)
		if opts.Highlighter == nil {
			content = addStyle.Render(content)
		}
	case model.LineDeletion:
		marker = delStyle.Render(marker)
		if opts.Highlighter == nil {
			content = delStyle.Render(content)
		}
	}
	return numberStyle.Render(nums) + " " + marker + " " + content
}

// PlainLine renders a line without styling, for exports and tests.
func PlainLine(line model.DiffLine) string {
	if line.Kind == model.LineExpansion {
		return fmt.Sprintf("⋯ %d-%d", line.Gap.Start, line.Gap.End)
	}
	return line.Kind.Prefix() + line.Content
}

func maxLineNumber(hunks []model.Hunk) int {
	m := 0
	for _, h := range hunks {
		for _, l := range h.Lines {
			if l.OldLine != nil && *l.OldLine > m {
				m = *l.OldLine
			}
			if l.NewLine != nil && *l.NewLine > m {
				m = *l.NewLine
			}
		}
	}
	return m
}

func lineNumber(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func digits(n int) int {
	if n <= 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
