package viewer

import (
	"fmt"

	"prreview/internal/diffview"
	"prreview/internal/model"
)

// expandAtCursor marks the placeholder under the content cursor as pending
// and asks for its lines. A pending placeholder is not requested twice.
func (s *State) expandAtCursor() []Intent {
	if s.content.Cursor >= len(s.rows) {
		return nil
	}
	row := s.rows[s.content.Cursor]
	line, ok := diffview.LineAt(s.hunks, row)
	if !ok || line.Kind != model.LineExpansion || line.IsExpanded || line.Gap.Len() == 0 {
		return nil
	}

	hunks := s.mutableHunks(s.activePath)
	if hunks == nil {
		return nil
	}
	hunks[row.Hunk].Lines[row.Line].IsExpanded = true

	r := line.Gap
	if limit := s.opts.ExpandLimit; limit > 0 && r.Len() > limit {
		r.Start = r.End - limit + 1
	}
	return []Intent{ExpandIntent{
		Path:      s.activePath,
		GapStart:  line.Gap.Start,
		Range:     r,
		OldOffset: line.OldOffset,
	}}
}

// mutableHunks returns the copy-on-write hunks for path, creating them from
// the loaded snapshot on first use.
func (s *State) mutableHunks(path string) []model.Hunk {
	if hunks, ok := s.expanded[path]; ok {
		return hunks
	}
	f, ok := s.diff.File(path)
	if !ok {
		return nil
	}
	hunks := f.CloneHunks()
	s.expanded[path] = hunks
	if path == s.activePath {
		s.hunks = hunks
	}
	return hunks
}

// fulfillExpansion splices fetched lines over their pending placeholder.
// Lines before the fetched block stay hidden behind a smaller placeholder.
// Results with no pending placeholder are stale and dropped.
func (s *State) fulfillExpansion(a ExpansionFetched) {
	hunks, ok := s.expanded[a.Path]
	if !ok {
		return
	}
	hi, li, ok := findPending(hunks, a.GapStart)
	if !ok {
		return
	}
	placeholder := hunks[hi].Lines[li]

	if a.Err != nil {
		hunks[hi].Lines[li].IsExpanded = false
		s.notice = fmt.Sprintf("expand %s: %v", a.Path, a.Err)
		return
	}

	var fetched []model.DiffLine
	for _, l := range a.Lines {
		if l.NewLine == nil || *l.NewLine < placeholder.Gap.Start || *l.NewLine > placeholder.Gap.End {
			continue
		}
		l.Kind = model.LineContext
		l.IsExpanded = true
		fetched = append(fetched, l)
	}

	var replacement []model.DiffLine
	if len(fetched) > 0 {
		if first := *fetched[0].NewLine; first > placeholder.Gap.Start {
			rest := model.Expansion(model.LineRange{Start: placeholder.Gap.Start, End: first - 1}, placeholder.OldOffset)
			replacement = append(replacement, rest)
		}
		replacement = append(replacement, fetched...)
	}

	lines := hunks[hi].Lines
	spliced := make([]model.DiffLine, 0, len(lines)-1+len(replacement))
	spliced = append(spliced, lines[:li]...)
	spliced = append(spliced, replacement...)
	spliced = append(spliced, lines[li+1:]...)
	hunks[hi].Lines = spliced

	if a.Path != s.activePath {
		return
	}
	at := rowIndex(s.rows, diffview.Row{Hunk: hi, Line: li})
	s.rows = diffview.FlattenHunks(s.hunks)
	if at >= 0 {
		delta := len(replacement) - 1
		s.content.Cursor = shiftAfter(s.content.Cursor, at, delta)
		s.content.Anchor = shiftAfter(s.content.Anchor, at, delta)
		s.content.Scroll = shiftAfter(s.content.Scroll, at, delta)
	}
	s.clampContent()
}

func findPending(hunks []model.Hunk, gapStart int) (int, int, bool) {
	for hi, h := range hunks {
		for li, l := range h.Lines {
			if l.Kind == model.LineExpansion && l.IsExpanded && l.Gap.Start == gapStart {
				return hi, li, true
			}
		}
	}
	return 0, 0, false
}

func rowIndex(rows []diffview.Row, r diffview.Row) int {
	for i, row := range rows {
		if row == r {
			return i
		}
	}
	return -1
}

// shiftAfter moves indices past the splice point by delta.
func shiftAfter(idx, at, delta int) int {
	if idx > at {
		return idx + delta
	}
	return idx
}
