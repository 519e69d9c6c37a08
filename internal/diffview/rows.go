package diffview

import "prreview/internal/model"

// Row addresses one entry of a file's flattened hunk view: the header of
// hunk Hunk when Line is negative, otherwise line Line of that hunk.
type Row struct {
	Hunk int
	Line int
}

// IsHeader reports whether the row is a hunk header.
func (r Row) IsHeader() bool {
	return r.Line < 0
}

// FlattenHunks emits one header row per hunk followed by one row per line,
// in stored order.
func FlattenHunks(hunks []model.Hunk) []Row {
	n := 0
	for _, h := range hunks {
		n += 1 + len(h.Lines)
	}
	rows := make([]Row, 0, n)
	for i, h := range hunks {
		rows = append(rows, Row{Hunk: i, Line: -1})
		for j := range h.Lines {
			rows = append(rows, Row{Hunk: i, Line: j})
		}
	}
	return rows
}

// LineAt resolves a row to its diff line. Header rows and stale rows report false.
func LineAt(hunks []model.Hunk, r Row) (model.DiffLine, bool) {
	if r.IsHeader() || r.Hunk < 0 || r.Hunk >= len(hunks) {
		return model.DiffLine{}, false
	}
	lines := hunks[r.Hunk].Lines
	if r.Line >= len(lines) {
		return model.DiffLine{}, false
	}
	return lines[r.Line], true
}

// HeaderAt returns the header text of the row's hunk.
func HeaderAt(hunks []model.Hunk, r Row) string {
	if r.Hunk < 0 || r.Hunk >= len(hunks) {
		return ""
	}
	return hunks[r.Hunk].Header
}
