package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// paneWidths returns the content widths of the tree and diff panes. Each
// visible pane costs two columns of border.
func paneWidths(totalWidth, desiredLeft int, hideLeft bool) (int, int) {
	if hideLeft {
		available := totalWidth - 2
		if available < 1 {
			return 0, 1
		}
		return 0, available
	}

	available := totalWidth - 4
	if available < 2 {
		return 1, 1
	}

	left := max(1, desiredLeft)
	if left > available-1 {
		left = available - 1
	}
	return left, available - left
}

// overlayCentered draws overlay over the middle of base.
func overlayCentered(base, overlay string, width, height int) string {
	baseLines := normalizeCanvas(base, width, height)
	overlayLines := strings.Split(overlay, "\n")
	overlayW := lipgloss.Width(overlay)
	if overlayW <= 0 || len(overlayLines) == 0 {
		return strings.Join(baseLines, "\n")
	}

	x := max(0, (width-overlayW)/2)
	y := max(0, (height-len(overlayLines))/2)
	for i, ol := range overlayLines {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		baseLines[row] = overlayLine(baseLines[row], ol, x, overlayW, width)
	}
	return strings.Join(baseLines, "\n")
}

// normalizeCanvas pads or cuts s to exactly height lines of width cells.
func normalizeCanvas(s string, width, height int) []string {
	width = max(1, width)
	height = max(1, height)

	raw := strings.Split(s, "\n")
	lines := make([]string, height)
	for i := range lines {
		line := ""
		if i < len(raw) {
			line = raw[i]
		}
		switch w := lipgloss.Width(line); {
		case w > width:
			line = ansi.Truncate(line, width, "")
		case w < width:
			line += strings.Repeat(" ", width-w)
		}
		lines[i] = line
	}
	return lines
}

// overlayLine splices overlay into baseLine at column x. The base loses its
// styling around the overlay.
func overlayLine(baseLine, overlay string, x, overlayW, totalW int) string {
	if x >= totalW {
		return baseLine
	}
	if x+overlayW > totalW {
		overlay = ansi.Truncate(overlay, totalW-x, "")
		overlayW = lipgloss.Width(overlay)
	}

	plain := []rune(ansi.Strip(baseLine))
	if len(plain) < totalW {
		plain = append(plain, []rune(strings.Repeat(" ", totalW-len(plain)))...)
	}
	right := min(x+overlayW, len(plain))
	return string(plain[:x]) + overlay + string(plain[right:])
}
