package comments

import (
	"fmt"
	"strings"
)

// ExportMarkdown renders a review as Markdown for pasting into a PR or chat.
func ExportMarkdown(title string, event Event, body string, comments []PendingComment) string {
	if title == "" {
		title = "Review comments"
	}

	lines := []string{"# " + title, "", fmt.Sprintf("**Verdict:** %s", event.Label())}
	if b := strings.TrimSpace(body); b != "" {
		lines = append(lines, "", b)
	}

	current := ""
	for _, c := range comments {
		if c.Path != current {
			current = c.Path
			lines = append(lines, "", "## "+c.Path, "")
		}
		bodyLines := strings.Split(c.Body, "\n")
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", c.LineLabel(), c.Side, bodyLines[0]))
		for _, ln := range bodyLines[1:] {
			lines = append(lines, "  "+ln)
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}
