// Package viewer is the navigation and annotation state machine behind the
// review UI. State.Apply is its only mutator.
package viewer

import (
	"prreview/internal/comments"
	"prreview/internal/diffview"
	"prreview/internal/filetree"
	"prreview/internal/model"
)

const defaultPageHeight = 20

// Mode is the interaction mode. It decides which actions Apply honors.
type Mode int

const (
	ModeNormal Mode = iota
	ModeVisual
	ModeCommentEditing
	ModeReviewPopup
)

// String is the label shown in the status bar.
func (m Mode) String() string {
	switch m {
	case ModeVisual:
		return "VISUAL"
	case ModeCommentEditing:
		return "COMMENT"
	case ModeReviewPopup:
		return "REVIEW"
	default:
		return "NORMAL"
	}
}

// Focus names the pane that receives navigation.
type Focus int

const (
	PaneTree Focus = iota
	PaneContent
)

// TreePane is the file tree's cursor, identified by entry key, plus the
// derived row index and scroll offset.
type TreePane struct {
	Key    string
	Cursor int
	Scroll int
}

// ContentPane holds row indices into the active file's flattened hunks.
// Anchor is only meaningful in visual mode.
type ContentPane struct {
	Cursor int
	Scroll int
	Anchor int
}

// Options are fixed at construction.
type Options struct {
	ExpandLimit     int
	DefaultEvent    comments.Event
	ApprovalMessage string
	HideFileTree    bool
}

type reviewState struct {
	event      comments.Event
	body       string
	submitting bool
	err        error
	// submitted holds the IDs of the comments carried by the in-flight review.
	submitted []int
}

// State is the whole engine state. The zero value is not usable; call New.
type State struct {
	opts Options

	diff    *model.PullRequestDiff
	loading bool
	loadErr error

	tree     *filetree.Node
	entries  []filetree.FlatFileEntry
	treePane TreePane
	showTree bool

	activePath string
	hunks      []model.Hunk
	rows       []diffview.Row
	content    ContentPane
	// expanded holds copy-on-write hunks for files with spliced context.
	expanded map[string][]model.Hunk

	focus  Focus
	mode   Mode
	width  int
	height int

	book   *comments.Book
	draft  *comments.Draft
	review reviewState

	notice  string
	refusal error
}

// New returns an empty State with the tree focused. Nothing is loaded until
// a Loaded action arrives.
func New(opts Options) *State {
	if opts.DefaultEvent == "" {
		opts.DefaultEvent = comments.EventComment
	}
	return &State{
		opts:     opts,
		showTree: !opts.HideFileTree,
		focus:    PaneTree,
		expanded: make(map[string][]model.Hunk),
		book:     comments.NewBook(),
		review:   reviewState{event: opts.DefaultEvent},
	}
}

// Diff is the loaded diff, or nil before the first load.
func (s *State) Diff() *model.PullRequestDiff { return s.diff }

// Loading reports whether a load is in flight.
func (s *State) Loading() bool { return s.loading }

// LoadErr is the error of the last failed load.
func (s *State) LoadErr() error { return s.loadErr }

// Entries are the visible tree rows.
func (s *State) Entries() []filetree.FlatFileEntry { return s.entries }

// Tree is the tree pane's cursor and scroll.
func (s *State) Tree() TreePane { return s.treePane }

// ShowTree reports whether the tree pane is visible.
func (s *State) ShowTree() bool { return s.showTree }

// ActivePath is the path of the file shown in the content pane.
func (s *State) ActivePath() string { return s.activePath }

// Hunks are the active file's hunks, including spliced context.
func (s *State) Hunks() []model.Hunk { return s.hunks }

// Rows address the active file's hunks one display row at a time.
func (s *State) Rows() []diffview.Row { return s.rows }

// Content is the content pane's cursor, scroll and visual anchor.
func (s *State) Content() ContentPane { return s.content }

// Focus is the pane receiving navigation.
func (s *State) Focus() Focus { return s.focus }

// Mode is the current interaction mode.
func (s *State) Mode() Mode { return s.mode }

// Height is the page size used for scrolling, in rows.
func (s *State) Height() int { return s.pageSize() }

// Width is the content pane width from the last SetViewport.
func (s *State) Width() int { return s.width }

// Notice is the message produced by the last action, if any.
func (s *State) Notice() string { return s.notice }

// Refusal is the reason the last user action was rejected, if it was.
func (s *State) Refusal() error { return s.refusal }

// ReviewEvent is the event selected in the review popup.
func (s *State) ReviewEvent() comments.Event { return s.review.event }

// ReviewBody is the review summary typed so far.
func (s *State) ReviewBody() string { return s.review.body }

// Submitting reports whether a review is in flight.
func (s *State) Submitting() bool { return s.review.submitting }

// ReviewErr is the error of the last failed submission.
func (s *State) ReviewErr() error { return s.review.err }

// PendingCount is the number of pending comments across all files.
func (s *State) PendingCount() int { return s.book.Count() }

// PendingFor returns the pending comments on path.
func (s *State) PendingFor(path string) []comments.PendingComment {
	return s.book.ForPath(path)
}

// ActiveFile returns the selected file.
func (s *State) ActiveFile() (*model.FileDiff, bool) {
	if s.activePath == "" {
		return nil, false
	}
	return s.diff.File(s.activePath)
}

// Selection is the normalized visual range. ok is false outside visual mode.
func (s *State) Selection() (lo, hi int, ok bool) {
	if s.mode != ModeVisual {
		return 0, 0, false
	}
	lo, hi = s.content.Anchor, s.content.Cursor
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// Draft returns a copy of the comment being edited.
func (s *State) Draft() (comments.Draft, bool) {
	if s.draft == nil {
		return comments.Draft{}, false
	}
	return *s.draft, true
}

// CurrentLine resolves the content cursor to a diff line.
func (s *State) CurrentLine() (model.DiffLine, bool) {
	if s.content.Cursor < 0 || s.content.Cursor >= len(s.rows) {
		return model.DiffLine{}, false
	}
	return diffview.LineAt(s.hunks, s.rows[s.content.Cursor])
}

// HasComment reports whether the active file has a pending comment at line.
func (s *State) HasComment(line int) bool {
	if s.activePath == "" {
		return false
	}
	return s.book.HasLine(s.activePath, line)
}

// PendingComments lists every pending comment in diff file order.
func (s *State) PendingComments() []comments.PendingComment {
	return s.book.Ordered(s.fileOrder())
}

// CommentCounts maps file paths to their pending comment count.
func (s *State) CommentCounts() map[string]int {
	out := make(map[string]int)
	for _, c := range s.PendingComments() {
		out[c.Path]++
	}
	return out
}

func (s *State) fileOrder() []string {
	if s.diff == nil {
		return nil
	}
	out := make([]string, len(s.diff.Files))
	for i, f := range s.diff.Files {
		out[i] = f.Path
	}
	return out
}

func (s *State) pageSize() int {
	if s.height <= 0 {
		return defaultPageHeight
	}
	return s.height
}

func (s *State) refuse(err error) {
	s.refusal = err
	s.notice = err.Error()
}
