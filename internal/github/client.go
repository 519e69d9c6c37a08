// Package github loads pull requests and submits reviews through the gh CLI.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"prreview/internal/comments"
	"prreview/internal/diffview"
	"prreview/internal/model"
	"prreview/internal/source"
	"prreview/internal/util"
)

const (
	contentExpiration = 30 * time.Minute
	contentCleanup    = time.Hour
)

var (
	ErrNotLoaded    = errors.New("pull request not loaded")
	ErrBodyRequired = errors.New("requesting changes needs a review body")
)

// Options configure a Client.
type Options struct {
	GHPath string
	Repo   string // owner/name
	Number int
	Dir    string
	Logger zerolog.Logger
}

// Client talks to one pull request.
type Client struct {
	runner util.Runner
	gh     string
	repo   string
	number int
	dir    string
	log    zerolog.Logger

	files *gocache.Cache

	mu      sync.Mutex
	headSHA string
}

var (
	_ source.DiffSource    = (*Client)(nil)
	_ source.ContextSource = (*Client)(nil)
	_ source.ReviewSink    = (*Client)(nil)
)

func New(runner util.Runner, opts Options) *Client {
	gh := opts.GHPath
	if gh == "" {
		gh = "gh"
	}
	return &Client{
		runner: runner,
		gh:     gh,
		repo:   opts.Repo,
		number: opts.Number,
		dir:    opts.Dir,
		log:    opts.Logger.With().Str("component", "github").Logger(),
		files:  gocache.New(contentExpiration, contentCleanup),
	}
}

// ResolveRepo asks gh which repository the checkout in dir belongs to.
func ResolveRepo(ctx context.Context, runner util.Runner, ghPath, dir string) (string, error) {
	if ghPath == "" {
		ghPath = "gh"
	}
	out, err := runner.Run(ctx, dir, ghPath, "repo", "view", "--json", "nameWithOwner")
	if err != nil {
		return "", fmt.Errorf("resolve repo: %w", err)
	}
	var resp struct {
		NameWithOwner string `json:"nameWithOwner"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return "", fmt.Errorf("resolve repo: decode: %w", err)
	}
	if resp.NameWithOwner == "" {
		return "", errors.New("resolve repo: gh returned no repository")
	}
	return resp.NameWithOwner, nil
}

type prMeta struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	BaseRefOid string `json:"baseRefOid"`
	HeadRefOid string `json:"headRefOid"`
}

// LoadDiff fetches the pull request metadata and patch.
func (c *Client) LoadDiff(ctx context.Context) (*model.PullRequestDiff, error) {
	num := strconv.Itoa(c.number)
	c.log.Debug().Str("repo", c.repo).Int("pr", c.number).Msg("loading pull request")

	out, err := c.runner.Run(ctx, c.dir, c.gh, "pr", "view", num, "--repo", c.repo,
		"--json", "number,title,url,baseRefOid,headRefOid")
	if err != nil {
		return nil, fmt.Errorf("load pr %s#%d: %w", c.repo, c.number, err)
	}
	var meta prMeta
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return nil, fmt.Errorf("load pr %s#%d: decode metadata: %w", c.repo, c.number, err)
	}

	patch, err := c.runner.Run(ctx, c.dir, c.gh, "pr", "diff", num, "--repo", c.repo, "--color=never")
	if err != nil {
		return nil, fmt.Errorf("load pr %s#%d: diff: %w", c.repo, c.number, err)
	}
	files, err := diffview.ParseUnifiedDiff([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("load pr %s#%d: %w", c.repo, c.number, err)
	}

	d := &model.PullRequestDiff{
		Repo:    c.repo,
		Number:  meta.Number,
		Title:   meta.Title,
		URL:     meta.URL,
		BaseSHA: meta.BaseRefOid,
		HeadSHA: meta.HeadRefOid,
		Files:   files,
	}
	if d.Number == 0 {
		d.Number = c.number
	}
	d.RecalculateTotals()

	c.mu.Lock()
	c.headSHA = d.HeadSHA
	c.mu.Unlock()

	c.log.Info().
		Str("repo", c.repo).
		Int("pr", d.Number).
		Int("files", len(files)).
		Int("additions", d.Additions).
		Int("deletions", d.Deletions).
		Msg("pull request loaded")
	return d, nil
}

// FetchContext reads path at the head commit and returns the lines in r.
// File contents are cached per commit.
func (c *Client) FetchContext(ctx context.Context, path string, r model.LineRange, oldOffset int) ([]model.DiffLine, error) {
	c.mu.Lock()
	ref := c.headSHA
	c.mu.Unlock()
	if ref == "" {
		return nil, ErrNotLoaded
	}

	content, err := c.fileAt(ctx, path, ref)
	if err != nil {
		return nil, err
	}
	return source.ContextLines(content, r, oldOffset), nil
}

func (c *Client) fileAt(ctx context.Context, path, ref string) (string, error) {
	key := ref + ":" + path
	if v, ok := c.files.Get(key); ok {
		if s, ok := v.(string); ok {
			c.log.Debug().Str("path", path).Msg("content cache hit")
			return s, nil
		}
	}

	endpoint := fmt.Sprintf("repos/%s/contents/%s?ref=%s", c.repo, escapePath(path), url.QueryEscape(ref))
	out, err := c.runner.Run(ctx, c.dir, c.gh, "api", "-H", "Accept: application/vnd.github.raw", endpoint)
	if err != nil {
		return "", fmt.Errorf("fetch %s@%s: %w", path, shortSHA(ref), err)
	}
	c.files.SetDefault(key, out)
	return out, nil
}

type reviewPayload struct {
	CommitID string          `json:"commit_id,omitempty"`
	Body     string          `json:"body,omitempty"`
	Event    string          `json:"event"`
	Comments []reviewComment `json:"comments,omitempty"`
}

type reviewComment struct {
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Side      string `json:"side"`
	StartLine int    `json:"start_line,omitempty"`
	StartSide string `json:"start_side,omitempty"`
	Body      string `json:"body"`
}

// SubmitReview posts a review with its inline comments in a single request.
func (c *Client) SubmitReview(ctx context.Context, review source.Review) error {
	if review.Event == comments.EventRequestChanges && strings.TrimSpace(review.Body) == "" {
		return ErrBodyRequired
	}
	repo := review.Repo
	if repo == "" {
		repo = c.repo
	}
	number := review.Number
	if number == 0 {
		number = c.number
	}

	payload, err := json.Marshal(newReviewPayload(review))
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}

	endpoint := fmt.Sprintf("repos/%s/pulls/%d/reviews", repo, number)
	_, err = c.runner.RunWithStdin(ctx, c.dir, string(payload), c.gh, "api", "--method", "POST", endpoint, "--input", "-")
	if err != nil {
		c.log.Error().Err(err).Str("repo", repo).Int("pr", number).Msg("review submission failed")
		return fmt.Errorf("submit review: %w", err)
	}
	c.log.Info().
		Str("repo", repo).
		Int("pr", number).
		Str("event", string(review.Event)).
		Int("comments", len(review.Comments)).
		Msg("review submitted")
	return nil
}

func newReviewPayload(review source.Review) reviewPayload {
	p := reviewPayload{
		CommitID: review.CommitID,
		Body:     review.Body,
		Event:    string(review.Event),
	}
	for _, pc := range review.Comments {
		rc := reviewComment{
			Path: pc.Path,
			Line: pc.Line,
			Side: string(pc.Side),
			Body: pc.Body,
		}
		if pc.IsMultiLine() {
			rc.StartLine = pc.StartLine
			rc.StartSide = string(pc.StartSide)
		}
		p.Comments = append(p.Comments, rc)
	}
	return p
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
