// Package clipboard copies review text to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"prreview/internal/comments"
	"prreview/internal/source"
)

var ErrUnsupported = errors.New("no clipboard utility available")

// CopyText replaces the clipboard contents with text.
func CopyText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Sink "submits" a review by copying it to the clipboard as Markdown.
// It stands in for GitHub when reviewing local changes.
type Sink struct {
	write func(string) error
	log   zerolog.Logger
}

var _ source.ReviewSink = (*Sink)(nil)

func NewSink(logger zerolog.Logger) *Sink {
	return &Sink{
		write: CopyText,
		log:   logger.With().Str("component", "clipboard").Logger(),
	}
}

func (s *Sink) SubmitReview(_ context.Context, review source.Review) error {
	md := comments.ExportMarkdown(review.Title, review.Event, review.Body, review.Comments)
	if err := s.write(md); err != nil {
		return fmt.Errorf("copy review: %w", err)
	}
	s.log.Info().Int("comments", len(review.Comments)).Int("bytes", len(md)).Msg("review copied")
	return nil
}
