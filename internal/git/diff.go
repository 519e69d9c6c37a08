package git

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"prreview/internal/model"
	"prreview/internal/util"
)

// RangeDiff is the patch between two commits, with renames detected.
func RangeDiff(ctx context.Context, runner util.Runner, gitPath, dir, base, head string) (string, error) {
	out, err := runner.Run(ctx, dir, gitPath, "diff", "--no-color", "--no-ext-diff", "-M", "-U3", base, head)
	if err != nil {
		return "", fmt.Errorf("git diff %s..%s: %w", base, head, err)
	}
	return out, nil
}

// WorkingTreeDiff is the patch of tracked changes against HEAD.
func WorkingTreeDiff(ctx context.Context, runner util.Runner, gitPath, dir string) (string, error) {
	out, err := runner.Run(ctx, dir, gitPath, "diff", "--no-color", "--no-ext-diff", "-M", "-U3", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git diff HEAD: %w", err)
	}
	return out, nil
}

// ShowFile returns the content of path at ref.
func ShowFile(ctx context.Context, runner util.Runner, gitPath, dir, ref, path string) (string, error) {
	out, err := runner.Run(ctx, dir, gitPath, "show", ref+":"+path)
	if err != nil {
		return "", fmt.Errorf("git show %s:%s: %w", ref, path, err)
	}
	return out, nil
}

// addedFile renders an untracked file as a diff adding every line.
func addedFile(path string, content []byte) model.FileDiff {
	f := model.NewFileDiff(path)
	f.Status = model.StatusAdded
	if bytes.IndexByte(content, 0) >= 0 {
		f.Binary = true
		return f
	}

	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return f
	}
	lines := strings.Split(text, "\n")
	h := model.Hunk{
		NewStart: 1,
		NewLines: len(lines),
		Header:   fmt.Sprintf("@@ -0,0 +1,%d @@", len(lines)),
	}
	for i, l := range lines {
		h.Lines = append(h.Lines, model.Addition(strings.TrimSuffix(l, "\r"), i+1))
	}
	f.Hunks = []model.Hunk{h}
	f.RecalculateStats()
	return f
}
