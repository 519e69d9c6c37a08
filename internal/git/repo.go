package git

import (
	"context"
	"fmt"
	"strings"

	"prreview/internal/util"
)

// DiscoverRepoRoot returns the top level of the checkout containing cwd.
func DiscoverRepoRoot(ctx context.Context, runner util.Runner, gitPath, cwd string) (string, error) {
	out, err := runner.Run(ctx, cwd, gitPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("discover repo root: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RevParse resolves ref to a full commit id.
func RevParse(ctx context.Context, runner util.Runner, gitPath, dir, ref string) (string, error) {
	out, err := runner.Run(ctx, dir, gitPath, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref, err)
	}
	return strings.TrimSpace(out), nil
}
