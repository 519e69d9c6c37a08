package viewer

import "errors"

// Refusals recorded by State.Refusal. None of them mutate state.
var (
	ErrNoFileSelected    = errors.New("no file selected")
	ErrNoLineUnderCursor = errors.New("no diff line under cursor")
	ErrEmptyComment      = errors.New("comment is empty")
	ErrSelectionSpans    = errors.New("a comment range must stay inside one hunk")
	ErrNothingToSubmit   = errors.New("a comment review needs at least one comment")
	ErrSubmitInFlight    = errors.New("a review submission is already in progress")
)
