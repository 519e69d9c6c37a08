package viewer

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"prreview/internal/diffview"
	"prreview/internal/model"
)

var pathSegments = []string{"a", "b", "cmd", "internal", "x.go", "y.go", "z.md"}

func genDiff(t *rapid.T) *model.PullRequestDiff {
	d := &model.PullRequestDiff{Repo: "o/r", Number: 1}
	seen := map[string]bool{}
	n := rapid.IntRange(0, 8).Draw(t, "files")
	for i := 0; i < n; i++ {
		depth := rapid.IntRange(1, 3).Draw(t, "depth")
		parts := make([]string, depth)
		for j := range parts {
			parts[j] = rapid.SampledFrom(pathSegments).Draw(t, "seg")
		}
		parts[depth-1] = fmt.Sprintf("f%d_%s", i, parts[depth-1])
		p := strings.Join(parts, "/")
		if seen[p] {
			continue
		}
		seen[p] = true
		d.Files = append(d.Files, genFile(t, p))
	}
	d.RecalculateTotals()
	return d
}

func genFile(t *rapid.T, path string) model.FileDiff {
	f := model.FileDiff{Path: path}
	next := 1
	hunks := rapid.IntRange(0, 3).Draw(t, "hunks")
	for h := 0; h < hunks; h++ {
		hunk := model.Hunk{Header: fmt.Sprintf("@@ hunk %d @@", h)}
		if gap := rapid.IntRange(0, 12).Draw(t, "gap"); gap > 0 {
			hunk.Lines = append(hunk.Lines, model.Expansion(model.LineRange{Start: next, End: next + gap - 1}, 0))
			next += gap
		}
		lines := rapid.IntRange(0, 6).Draw(t, "lines")
		for l := 0; l < lines; l++ {
			switch rapid.IntRange(0, 2).Draw(t, "kind") {
			case 0:
				hunk.Lines = append(hunk.Lines, model.Context("c", next, next))
				next++
			case 1:
				hunk.Lines = append(hunk.Lines, model.Addition("a", next))
				next++
			default:
				hunk.Lines = append(hunk.Lines, model.Deletion("d", next))
			}
		}
		f.Hunks = append(f.Hunks, hunk)
	}
	f.RecalculateStats()
	return f
}

var userActions = []Action{
	MoveDown{}, MoveUp{}, CursorFirst{}, CursorLast{}, PageDown{}, PageUp{},
	FocusTree{}, FocusContent{}, ToggleFocus{}, ToggleFileTree{},
	Confirm{}, ToggleNode{}, ExpandAll{}, CollapseAll{},
	EnterVisual{}, ExitVisual{}, ExpandContext{},
	StartComment{}, CancelComment{}, CommitComment{}, CommentInsert{Rune: 'x'}, CommentBackspace{},
	DeleteComment{}, ShowReviewPopup{}, HideReviewPopup{}, ReviewOptionNext{}, SubmitReview{},
	Reload{},
}

func checkInvariants(t *rapid.T, s *State) {
	entries := s.Entries()
	tree := s.Tree()
	if len(entries) == 0 {
		if tree != (TreePane{}) {
			t.Fatalf("empty tree with pane %+v", tree)
		}
	} else {
		if tree.Cursor < 0 || tree.Cursor >= len(entries) {
			t.Fatalf("tree cursor %d outside [0,%d)", tree.Cursor, len(entries))
		}
		if entries[tree.Cursor].Key != tree.Key {
			t.Fatalf("tree key %q does not match row %d (%q)", tree.Key, tree.Cursor, entries[tree.Cursor].Key)
		}
		checkScroll(t, "tree", tree.Cursor, tree.Scroll, s.Height(), len(entries))
	}

	rows := s.Rows()
	c := s.Content()
	if len(rows) == 0 {
		if c.Cursor != 0 || c.Scroll != 0 {
			t.Fatalf("empty content with pane %+v", c)
		}
	} else {
		if c.Cursor < 0 || c.Cursor >= len(rows) {
			t.Fatalf("content cursor %d outside [0,%d)", c.Cursor, len(rows))
		}
		if c.Anchor < 0 || c.Anchor >= len(rows) {
			t.Fatalf("anchor %d outside [0,%d)", c.Anchor, len(rows))
		}
		checkScroll(t, "content", c.Cursor, c.Scroll, s.Height(), len(rows))
	}
	if lo, hi, ok := s.Selection(); ok && (lo > hi || lo < 0 || hi >= len(rows)) {
		t.Fatalf("selection (%d,%d) invalid for %d rows", lo, hi, len(rows))
	}

	if f, ok := s.ActiveFile(); ok {
		hunks := s.Hunks()
		if len(hunks) != len(f.Hunks) {
			t.Fatalf("active hunks %d, file has %d", len(hunks), len(f.Hunks))
		}
		if want := diffview.FlattenHunks(hunks); len(want) != len(rows) {
			t.Fatalf("rows %d out of sync with hunks (%d)", len(rows), len(want))
		}
	} else if len(rows) != 0 {
		t.Fatalf("rows without an active file")
	}

	if (s.Mode() == ModeCommentEditing) != func() bool { _, ok := s.Draft(); return ok }() {
		t.Fatalf("mode %v with draft mismatch", s.Mode())
	}
}

func checkScroll(t *rapid.T, pane string, cursor, scroll, height, n int) {
	if scroll < 0 || scroll > max(0, n-height) {
		t.Fatalf("%s scroll %d outside [0,%d]", pane, scroll, max(0, n-height))
	}
	if cursor < scroll || cursor >= scroll+height {
		t.Fatalf("%s cursor %d not visible in [%d,%d)", pane, cursor, scroll, scroll+height)
	}
}

func TestRandomActionSequencesKeepIndicesInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := New(Options{ExpandLimit: rapid.IntRange(0, 6).Draw(rt, "limit")})
		s.Apply(SetViewport{Width: 80, Height: rapid.IntRange(1, 8).Draw(rt, "height")})
		s.Apply(Loaded{Diff: genDiff(rt)})
		checkInvariants(rt, s)

		var pending []Intent
		steps := rapid.IntRange(1, 80).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			var a Action
			switch choice := rapid.IntRange(0, 9).Draw(rt, "source"); {
			case choice == 0 && len(pending) > 0:
				idx := rapid.IntRange(0, len(pending)-1).Draw(rt, "intent")
				a = resolveIntent(rt, pending[idx])
				pending = append(pending[:idx], pending[idx+1:]...)
			case choice == 1:
				a = SetViewport{Width: 80, Height: rapid.IntRange(1, 8).Draw(rt, "resize")}
			default:
				a = rapid.SampledFrom(userActions).Draw(rt, "action")
			}
			pending = append(pending, s.Apply(a)...)
			checkInvariants(rt, s)
		}
	})
}

func resolveIntent(t *rapid.T, in Intent) Action {
	fail := rapid.Bool().Draw(t, "fail")
	switch in := in.(type) {
	case LoadIntent:
		if fail {
			return LoadFailed{Err: errors.New("load failed")}
		}
		return Loaded{Diff: genDiff(t)}
	case ExpandIntent:
		if fail {
			return ExpansionFetched{Path: in.Path, GapStart: in.GapStart, Err: errors.New("fetch failed")}
		}
		r := in.Range
		r.Start += rapid.IntRange(0, r.Len()).Draw(t, "short")
		return ExpansionFetched{Path: in.Path, GapStart: in.GapStart, Lines: fetchedLines(r, in.OldOffset)}
	case ReviewIntent:
		if fail {
			return ReviewSubmitted{Err: errors.New("submit failed")}
		}
		return ReviewSubmitted{}
	}
	return SetViewport{Width: 80, Height: 5}
}
