package viewer

import (
	"prreview/internal/comments"
	"prreview/internal/model"
)

// Action is an input to State.Apply. User input and collaborator results
// are both actions.
type Action interface {
	isAction()
}

// Collaborator results.
type (
	LoadStarted struct{}
	Loaded      struct{ Diff *model.PullRequestDiff }
	LoadFailed  struct{ Err error }

	// ExpansionFetched fulfils the ExpandIntent whose placeholder starts at GapStart.
	ExpansionFetched struct {
		Path     string
		GapStart int
		Lines    []model.DiffLine
		Err      error
	}

	ReviewSubmitted struct{ Err error }
)

// Layout.
type (
	// SetViewport carries the number of rows each pane can show.
	SetViewport    struct{ Width, Height int }
	ToggleFileTree struct{}
)

// Navigation.
type (
	MoveDown     struct{}
	MoveUp       struct{}
	CursorFirst  struct{}
	CursorLast   struct{}
	PageDown     struct{}
	PageUp       struct{}
	FocusTree    struct{}
	FocusContent struct{}
	ToggleFocus  struct{}

	// Confirm toggles a directory or opens a file in the tree, and expands a
	// placeholder in the content pane.
	Confirm     struct{}
	ToggleNode  struct{}
	ExpandAll   struct{}
	CollapseAll struct{}
	SelectFile  struct{ Path string }

	EnterVisual   struct{}
	ExitVisual    struct{}
	ExpandContext struct{}
	Reload        struct{}
)

// Comment editing.
type (
	StartComment     struct{}
	CancelComment    struct{}
	CommitComment    struct{}
	CommentInsert    struct{ Rune rune }
	CommentBackspace struct{}
	CommentNewline   struct{}
	SetDraftBody     struct{ Body string }
	DeleteComment    struct{}
)

// Review.
type (
	ShowReviewPopup  struct{}
	HideReviewPopup  struct{}
	ReviewOptionNext struct{}
	ReviewOptionPrev struct{}
	SetReviewBody    struct{ Body string }
	SubmitReview     struct{}
)

func (LoadStarted) isAction()      {}
func (Loaded) isAction()           {}
func (LoadFailed) isAction()       {}
func (ExpansionFetched) isAction() {}
func (ReviewSubmitted) isAction()  {}
func (SetViewport) isAction()      {}
func (ToggleFileTree) isAction()   {}
func (MoveDown) isAction()         {}
func (MoveUp) isAction()           {}
func (CursorFirst) isAction()      {}
func (CursorLast) isAction()       {}
func (PageDown) isAction()         {}
func (PageUp) isAction()           {}
func (FocusTree) isAction()        {}
func (FocusContent) isAction()     {}
func (ToggleFocus) isAction()      {}
func (Confirm) isAction()          {}
func (ToggleNode) isAction()       {}
func (ExpandAll) isAction()        {}
func (CollapseAll) isAction()      {}
func (SelectFile) isAction()       {}
func (EnterVisual) isAction()      {}
func (ExitVisual) isAction()       {}
func (ExpandContext) isAction()    {}
func (Reload) isAction()           {}
func (StartComment) isAction()     {}
func (CancelComment) isAction()    {}
func (CommitComment) isAction()    {}
func (CommentInsert) isAction()    {}
func (CommentBackspace) isAction() {}
func (CommentNewline) isAction()   {}
func (SetDraftBody) isAction()     {}
func (DeleteComment) isAction()    {}
func (ShowReviewPopup) isAction()  {}
func (HideReviewPopup) isAction()  {}
func (ReviewOptionNext) isAction() {}
func (ReviewOptionPrev) isAction() {}
func (SetReviewBody) isAction()    {}
func (SubmitReview) isAction()     {}

// Intent is work State.Apply asks a collaborator to do. Results come back
// as actions.
type Intent interface {
	isIntent()
}

// LoadIntent asks for the diff to be (re)loaded.
type LoadIntent struct{}

// ExpandIntent asks for new-side lines Range of Path. OldOffset maps a new
// line number to its old one.
type ExpandIntent struct {
	Path      string
	GapStart  int
	Range     model.LineRange
	OldOffset int
}

// ReviewIntent asks for a review to be submitted.
type ReviewIntent struct {
	Repo     string
	Number   int
	CommitID string
	Event    comments.Event
	Body     string
	Comments []comments.PendingComment
}

func (LoadIntent) isIntent()   {}
func (ExpandIntent) isIntent() {}
func (ReviewIntent) isIntent() {}
