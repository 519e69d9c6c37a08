package viewer

import (
	"fmt"

	"prreview/internal/comments"
	"prreview/internal/diffview"
	"prreview/internal/model"
)

func (s *State) applyEditing(a Action) {
	if s.draft == nil {
		s.mode = ModeNormal
		return
	}
	switch a := a.(type) {
	case CommentInsert:
		s.draft.Insert(a.Rune)
	case CommentBackspace:
		s.draft.Backspace()
	case CommentNewline:
		s.draft.Insert('\n')
	case SetDraftBody:
		s.draft.SetBody(a.Body)
	case CommitComment:
		if s.draft.Empty() {
			s.refuse(ErrEmptyComment)
			return
		}
		s.book.Add(s.draft.Comment())
		s.draft = nil
		s.mode = ModeNormal
	case CancelComment:
		s.draft = nil
		s.mode = ModeNormal
	}
}

func (s *State) applyPopup(a Action) []Intent {
	switch a := a.(type) {
	case ReviewOptionNext:
		s.review.event = s.review.event.Next()
	case ReviewOptionPrev:
		s.review.event = s.review.event.Prev()
	case SetReviewBody:
		s.review.body = a.Body
	case HideReviewPopup:
		s.mode = ModeNormal
	case SubmitReview:
		return s.submitReview()
	}
	return nil
}

// startComment opens a draft on the line under the content cursor, or on
// the numbered lines of the visual selection.
func (s *State) startComment() {
	if s.activePath == "" {
		s.refuse(ErrNoFileSelected)
		return
	}

	lo, hi := s.content.Cursor, s.content.Cursor
	if sLo, sHi, ok := s.Selection(); ok {
		lo, hi = sLo, sHi
	}

	var numbered []model.DiffLine
	hunk := -1
	for i := lo; i <= hi && i < len(s.rows); i++ {
		line, ok := diffview.LineAt(s.hunks, s.rows[i])
		if !ok || line.Kind == model.LineExpansion {
			continue
		}
		if hunk >= 0 && s.rows[i].Hunk != hunk {
			s.refuse(ErrSelectionSpans)
			return
		}
		hunk = s.rows[i].Hunk
		numbered = append(numbered, line)
	}
	if len(numbered) == 0 {
		s.refuse(ErrNoLineUnderCursor)
		return
	}

	last := numbered[len(numbered)-1]
	d := &comments.Draft{Path: s.activePath}
	d.Line, d.Side = anchorOf(last)
	if len(numbered) > 1 {
		start, side := anchorOf(numbered[0])
		if side == comments.SideRight && d.Side == comments.SideLeft {
			start, side = firstOldLine(numbered)
		}
		if side != d.Side || start < d.Line {
			d.StartLine, d.StartSide = start, side
		}
	}

	s.draft = d
	s.mode = ModeCommentEditing
}

// anchorOf is the effective line and the side it lives on.
func anchorOf(l model.DiffLine) (int, comments.Side) {
	if l.NewLine != nil {
		return *l.NewLine, comments.SideRight
	}
	n, _ := l.EffectiveLine()
	return n, comments.SideLeft
}

// firstOldLine anchors a range ending on the LEFT side at its first line
// that exists in the old file. Ranges never run from RIGHT to LEFT.
func firstOldLine(lines []model.DiffLine) (int, comments.Side) {
	for _, l := range lines {
		if l.OldLine != nil {
			return *l.OldLine, comments.SideLeft
		}
	}
	return anchorOf(lines[len(lines)-1])
}

func (s *State) deleteComment() {
	line, ok := s.CurrentLine()
	if !ok {
		s.refuse(ErrNoLineUnderCursor)
		return
	}
	n, ok := line.EffectiveLine()
	if !ok || !s.book.RemoveLast(s.activePath, n) {
		return
	}
	s.notice = fmt.Sprintf("deleted comment on %s:%d", s.activePath, n)
}

func (s *State) submitReview() []Intent {
	if s.review.submitting {
		s.refuse(ErrSubmitInFlight)
		return nil
	}
	pending := s.PendingComments()
	if s.review.event == comments.EventComment && len(pending) == 0 {
		s.refuse(ErrNothingToSubmit)
		return nil
	}

	body := s.review.body
	if body == "" && s.review.event == comments.EventApprove {
		body = s.opts.ApprovalMessage
	}

	intent := ReviewIntent{
		Event:    s.review.event,
		Body:     body,
		Comments: pending,
	}
	if s.diff != nil {
		intent.Repo = s.diff.Repo
		intent.Number = s.diff.Number
		intent.CommitID = s.diff.HeadSHA
	}
	s.review.submitting = true
	s.review.err = nil
	s.review.submitted = make([]int, len(pending))
	for i, c := range pending {
		s.review.submitted[i] = c.ID
	}
	s.notice = "submitting review…"
	return []Intent{intent}
}

// finishReview removes the submitted comments only when the sink succeeded.
// Comments added while the review was in flight stay pending.
func (s *State) finishReview(err error) {
	if !s.review.submitting {
		return
	}
	s.review.submitting = false
	if err != nil {
		s.review.err = err
		s.review.submitted = nil
		s.notice = "review failed: " + err.Error()
		return
	}
	s.book.Remove(s.review.submitted...)
	s.review = reviewState{event: s.opts.DefaultEvent}
	if s.mode == ModeReviewPopup {
		s.mode = ModeNormal
	}
	s.notice = "review submitted"
}
