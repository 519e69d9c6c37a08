package viewer

import (
	"prreview/internal/diffview"
	"prreview/internal/filetree"
	"prreview/internal/model"
)

// Apply runs one action to completion and returns the intents it produced.
// It never blocks and leaves every stored index inside its current range.
func (s *State) Apply(a Action) []Intent {
	switch a := a.(type) {
	case LoadStarted:
		s.loading = true
		s.loadErr = nil
		return nil
	case Loaded:
		s.load(a.Diff)
		return nil
	case LoadFailed:
		s.loading = false
		s.loadErr = a.Err
		return nil
	case ExpansionFetched:
		s.fulfillExpansion(a)
		return nil
	case ReviewSubmitted:
		s.finishReview(a.Err)
		return nil
	case SetViewport:
		s.setViewport(a.Width, a.Height)
		return nil
	}

	s.notice = ""
	s.refusal = nil

	switch s.mode {
	case ModeCommentEditing:
		s.applyEditing(a)
		return nil
	case ModeReviewPopup:
		return s.applyPopup(a)
	}
	return s.applyNav(a)
}

func (s *State) applyNav(a Action) []Intent {
	switch a := a.(type) {
	case MoveDown:
		s.move(1)
	case MoveUp:
		s.move(-1)
	case CursorFirst:
		s.jump(false)
	case CursorLast:
		s.jump(true)
	case PageDown:
		s.page(1)
	case PageUp:
		s.page(-1)
	case FocusTree:
		s.focusTree()
	case FocusContent:
		s.focus = PaneContent
	case ToggleFocus:
		if s.focus == PaneTree {
			s.focus = PaneContent
		} else {
			s.focusTree()
		}
	case ToggleFileTree:
		s.showTree = !s.showTree
		if !s.showTree {
			s.focus = PaneContent
		}
	case Confirm:
		return s.confirm()
	case ToggleNode:
		if s.focus == PaneTree {
			s.toggleAtCursor()
		}
	case ExpandAll:
		filetree.SetExpandedAll(s.tree, true)
		s.reflattenTree()
	case CollapseAll:
		filetree.SetExpandedAll(s.tree, false)
		s.reflattenTree()
	case SelectFile:
		s.selectFile(a.Path)
		if i := filetree.IndexOfKey(s.entries, a.Path); i >= 0 {
			s.treePane.Key = a.Path
			s.treePane.Cursor = i
			s.treePane.Scroll = ensureVisible(i, s.treePane.Scroll, s.pageSize(), len(s.entries))
		}
	case EnterVisual:
		if s.focus == PaneContent && len(s.rows) > 0 && s.mode == ModeNormal {
			s.mode = ModeVisual
			s.content.Anchor = s.content.Cursor
		}
	case ExitVisual:
		s.exitVisual()
	case ExpandContext:
		return s.expandAtCursor()
	case Reload:
		if s.loading {
			return nil
		}
		s.loading = true
		s.loadErr = nil
		return []Intent{LoadIntent{}}
	case StartComment:
		s.startComment()
	case DeleteComment:
		s.deleteComment()
	case ShowReviewPopup:
		s.exitVisual()
		s.mode = ModeReviewPopup
		s.review.err = nil
	}
	return nil
}

func (s *State) focusTree() {
	s.exitVisual()
	s.showTree = true
	s.focus = PaneTree
}

func (s *State) exitVisual() {
	if s.mode == ModeVisual {
		s.mode = ModeNormal
	}
}

func (s *State) confirm() []Intent {
	if s.focus == PaneContent {
		return s.expandAtCursor()
	}
	if len(s.entries) == 0 {
		return nil
	}
	e := s.entries[s.treePane.Cursor]
	if e.IsDir {
		s.toggleAtCursor()
		return nil
	}
	s.selectFile(e.Path)
	s.focus = PaneContent
	return nil
}

func (s *State) setViewport(width, height int) {
	s.width = width
	s.height = max(1, height)
	s.treePane.Scroll = ensureVisible(s.treePane.Cursor, s.treePane.Scroll, s.pageSize(), len(s.entries))
	s.content.Scroll = ensureVisible(s.content.Cursor, s.content.Scroll, s.pageSize(), len(s.rows))
}

// load replaces the diff wholesale. Collapsed directories, the tree cursor
// and the active file survive when they still exist.
func (s *State) load(d *model.PullRequestDiff) {
	s.loading = false
	s.loadErr = nil
	if d == nil {
		d = &model.PullRequestDiff{}
	}

	collapsed := filetree.CollapsedKeys(s.tree)
	s.diff = d
	s.expanded = make(map[string][]model.Hunk)
	s.tree = filetree.Build(d.Files)
	filetree.Collapse(s.tree, collapsed)
	s.entries = filetree.Flatten(s.tree)
	s.resolveTreeCursor()
	s.exitVisual()

	if f, ok := d.File(s.activePath); ok {
		s.hunks = f.Hunks
		s.rows = diffview.FlattenHunks(s.hunks)
		s.clampContent()
		return
	}

	s.activePath = ""
	s.hunks = nil
	s.rows = nil
	s.content = ContentPane{}
	if paths := filetree.FilePaths(s.tree); len(paths) > 0 {
		s.selectFile(paths[0])
	}
}

// selectFile makes path the active file and resets the content pane.
func (s *State) selectFile(path string) {
	f, ok := s.diff.File(path)
	if !ok {
		return
	}
	s.activePath = path
	if hunks, ok := s.expanded[path]; ok {
		s.hunks = hunks
	} else {
		s.hunks = f.Hunks
	}
	s.rows = diffview.FlattenHunks(s.hunks)
	s.content = ContentPane{}
	if s.mode == ModeVisual {
		s.mode = ModeNormal
	}
}

func (s *State) move(delta int) {
	if s.focus == PaneTree {
		if len(s.entries) == 0 {
			return
		}
		s.setTreeCursor(clamp(s.treePane.Cursor+delta, 0, len(s.entries)-1))
		return
	}
	if len(s.rows) == 0 {
		return
	}
	s.content.Cursor = clamp(s.content.Cursor+delta, 0, len(s.rows)-1)
	s.content.Scroll = ensureVisible(s.content.Cursor, s.content.Scroll, s.pageSize(), len(s.rows))
}

func (s *State) jump(last bool) {
	n := len(s.rows)
	if s.focus == PaneTree {
		n = len(s.entries)
	}
	if n == 0 {
		return
	}
	target := 0
	if last {
		target = n - 1
	}
	if s.focus == PaneTree {
		s.setTreeCursor(target)
		return
	}
	s.content.Cursor = target
	s.content.Scroll = ensureVisible(target, s.content.Scroll, s.pageSize(), n)
}

func (s *State) page(dir int) {
	h := s.pageSize()
	if s.focus == PaneTree {
		n := len(s.entries)
		if n == 0 {
			return
		}
		s.treePane.Scroll = clamp(s.treePane.Scroll+dir*h, 0, max(0, n-h))
		s.setTreeCursor(clamp(s.treePane.Cursor+dir*h, 0, n-1))
		return
	}
	n := len(s.rows)
	if n == 0 {
		return
	}
	s.content.Scroll = clamp(s.content.Scroll+dir*h, 0, max(0, n-h))
	s.content.Cursor = clamp(s.content.Cursor+dir*h, 0, n-1)
	s.content.Scroll = ensureVisible(s.content.Cursor, s.content.Scroll, h, n)
}

// setTreeCursor moves the tree cursor to idx and opens the file there.
func (s *State) setTreeCursor(idx int) {
	s.treePane.Cursor = idx
	s.treePane.Key = s.entries[idx].Key
	s.treePane.Scroll = ensureVisible(idx, s.treePane.Scroll, s.pageSize(), len(s.entries))
	if e := s.entries[idx]; !e.IsDir && e.Path != s.activePath {
		s.selectFile(e.Path)
	}
}

func (s *State) toggleAtCursor() bool {
	if len(s.entries) == 0 {
		return false
	}
	e := s.entries[s.treePane.Cursor]
	if !e.IsDir || !filetree.FindAndToggle(s.tree, e.Key) {
		return false
	}
	s.reflattenTree()
	return true
}

func (s *State) reflattenTree() {
	s.entries = filetree.Flatten(s.tree)
	s.resolveTreeCursor()
}

// resolveTreeCursor re-derives the tree cursor index from its key, walking
// up to the nearest visible ancestor when the entry is hidden.
func (s *State) resolveTreeCursor() {
	n := len(s.entries)
	if n == 0 {
		s.treePane = TreePane{}
		return
	}
	for key := s.treePane.Key; key != ""; key = filetree.ParentKey(key) {
		if i := filetree.IndexOfKey(s.entries, key); i >= 0 {
			s.treePane.Key = key
			s.treePane.Cursor = i
			s.treePane.Scroll = ensureVisible(i, s.treePane.Scroll, s.pageSize(), n)
			return
		}
	}
	i := clamp(s.treePane.Cursor, 0, n-1)
	s.treePane.Key = s.entries[i].Key
	s.treePane.Cursor = i
	s.treePane.Scroll = ensureVisible(i, s.treePane.Scroll, s.pageSize(), n)
}

func (s *State) clampContent() {
	n := len(s.rows)
	if n == 0 {
		s.content = ContentPane{}
		return
	}
	s.content.Cursor = clamp(s.content.Cursor, 0, n-1)
	s.content.Anchor = clamp(s.content.Anchor, 0, n-1)
	s.content.Scroll = ensureVisible(s.content.Cursor, s.content.Scroll, s.pageSize(), n)
}

// ensureVisible returns the scroll offset closest to scroll that keeps
// cursor inside [scroll, scroll+height).
func ensureVisible(cursor, scroll, height, n int) int {
	if height < 1 {
		height = 1
	}
	if cursor < scroll {
		scroll = cursor
	}
	if cursor >= scroll+height {
		scroll = cursor - height + 1
	}
	return clamp(scroll, 0, max(0, n-height))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
