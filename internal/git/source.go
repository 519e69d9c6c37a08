// Package git reviews local changes: a commit range, or the working tree
// against HEAD.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"prreview/internal/diffview"
	"prreview/internal/model"
	"prreview/internal/source"
	"prreview/internal/util"
)

const (
	contentExpiration = 10 * time.Minute
	contentCleanup    = 30 * time.Minute
)

// WorkingTree is the range value selecting uncommitted changes.
const WorkingTree = ""

var ErrBadRange = errors.New("range must look like base..head")

// ParseRange splits "base..head". A bare ref means ref..HEAD.
func ParseRange(s string) (base, head string, err error) {
	s = strings.TrimSpace(s)
	if s == WorkingTree {
		return "", "", nil
	}
	if strings.Contains(s, "...") {
		return "", "", fmt.Errorf("%w: %q", ErrBadRange, s)
	}
	base, head, found := strings.Cut(s, "..")
	if !found {
		return s, "HEAD", nil
	}
	if base == "" || head == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadRange, s)
	}
	return base, head, nil
}

type Options struct {
	GitPath string
	Dir     string
	Range   string
	Logger  zerolog.Logger
}

// Source serves a local diff and the context lines around it.
type Source struct {
	runner util.Runner
	git    string
	dir    string
	base   string
	head   string
	log    zerolog.Logger
	files  *gocache.Cache
}

var (
	_ source.DiffSource    = (*Source)(nil)
	_ source.ContextSource = (*Source)(nil)
)

// New resolves the checkout root of opts.Dir and validates the range.
func New(ctx context.Context, runner util.Runner, opts Options) (*Source, error) {
	base, head, err := ParseRange(opts.Range)
	if err != nil {
		return nil, err
	}
	gitPath := opts.GitPath
	if gitPath == "" {
		gitPath = "git"
	}
	root, err := DiscoverRepoRoot(ctx, runner, gitPath, opts.Dir)
	if err != nil {
		return nil, err
	}
	return &Source{
		runner: runner,
		git:    gitPath,
		dir:    root,
		base:   base,
		head:   head,
		log:    opts.Logger.With().Str("component", "git").Logger(),
		files:  gocache.New(contentExpiration, contentCleanup),
	}, nil
}

// Root is the checkout top level.
func (s *Source) Root() string { return s.dir }

// Title describes what is being reviewed.
func (s *Source) Title() string {
	if s.head == "" {
		return "working tree"
	}
	return s.base + ".." + s.head
}

func (s *Source) LoadDiff(ctx context.Context) (*model.PullRequestDiff, error) {
	s.files.Flush()

	var (
		files []model.FileDiff
		err   error
	)
	if s.head == "" {
		files, err = s.workingTreeFiles(ctx)
	} else {
		files, err = s.rangeFiles(ctx)
	}
	if err != nil {
		return nil, err
	}

	d := &model.PullRequestDiff{
		Repo:  filepath.Base(s.dir),
		Title: s.Title(),
		Files: files,
	}
	if s.head != "" {
		if d.BaseSHA, err = RevParse(ctx, s.runner, s.git, s.dir, s.base); err != nil {
			return nil, err
		}
		if d.HeadSHA, err = RevParse(ctx, s.runner, s.git, s.dir, s.head); err != nil {
			return nil, err
		}
	}
	d.RecalculateTotals()

	s.log.Info().
		Str("range", s.Title()).
		Int("files", len(files)).
		Int("additions", d.Additions).
		Int("deletions", d.Deletions).
		Msg("local diff loaded")
	return d, nil
}

func (s *Source) rangeFiles(ctx context.Context) ([]model.FileDiff, error) {
	raw, err := RangeDiff(ctx, s.runner, s.git, s.dir, s.base, s.head)
	if err != nil {
		return nil, err
	}
	return diffview.ParseUnifiedDiff([]byte(raw))
}

func (s *Source) workingTreeFiles(ctx context.Context) ([]model.FileDiff, error) {
	raw, err := WorkingTreeDiff(ctx, s.runner, s.git, s.dir)
	if err != nil {
		return nil, err
	}
	files, err := diffview.ParseUnifiedDiff([]byte(raw))
	if err != nil {
		return nil, err
	}

	entries, err := Status(ctx, s.runner, s.git, s.dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.Untracked() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(e.Path)))
		if err != nil {
			s.log.Warn().Err(err).Str("path", e.Path).Msg("skipping unreadable untracked file")
			continue
		}
		files = append(files, addedFile(e.Path, content))
	}
	return files, nil
}

// FetchContext reads path on the new side: the head commit of a range, or
// the file on disk for the working tree.
func (s *Source) FetchContext(ctx context.Context, path string, r model.LineRange, oldOffset int) ([]model.DiffLine, error) {
	key := s.head + ":" + path
	if v, ok := s.files.Get(key); ok {
		if content, ok := v.(string); ok {
			return source.ContextLines(content, r, oldOffset), nil
		}
	}

	var content string
	if s.head == "" {
		data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(path)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		content = string(data)
	} else {
		var err error
		if content, err = ShowFile(ctx, s.runner, s.git, s.dir, s.head, path); err != nil {
			return nil, err
		}
	}
	s.files.SetDefault(key, content)
	return source.ContextLines(content, r, oldOffset), nil
}
