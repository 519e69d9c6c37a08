// Package source declares the collaborators the review UI talks to: where
// the diff comes from, where hidden context lines come from and where a
// finished review goes.
package source

import (
	"context"
	"strings"

	"prreview/internal/comments"
	"prreview/internal/model"
)

type DiffSource interface {
	LoadDiff(ctx context.Context) (*model.PullRequestDiff, error)
}

// ContextSource returns the new-side lines in r of path, numbered on both
// sides. oldOffset is added to a new line number to get its old one.
type ContextSource interface {
	FetchContext(ctx context.Context, path string, r model.LineRange, oldOffset int) ([]model.DiffLine, error)
}

type ReviewSink interface {
	SubmitReview(ctx context.Context, review Review) error
}

// Review is a finished review ready to be sent.
type Review struct {
	Repo     string
	Number   int
	Title    string
	CommitID string
	Event    comments.Event
	Body     string
	Comments []comments.PendingComment
}

// ContextLines slices r out of a file's content. Lines past the end of the
// file are left out.
func ContextLines(content string, r model.LineRange, oldOffset int) []model.DiffLine {
	if r.Len() == 0 {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")

	start := max(r.Start, 1)
	end := min(r.End, len(lines))
	if start > end {
		return nil
	}
	out := make([]model.DiffLine, 0, end-start+1)
	for n := start; n <= end; n++ {
		l := model.Context(strings.TrimSuffix(lines[n-1], "\r"), n+oldOffset, n)
		l.IsExpanded = true
		out = append(out, l)
	}
	return out
}
