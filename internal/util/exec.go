// Package util runs external commands for the gh and git collaborators.
package util

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const maxStderrLen = 500

// Runner executes a command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, cwd, name string, args ...string) (string, error)
	RunWithStdin(ctx context.Context, cwd, stdin, name string, args ...string) (string, error)
}

// ExecRunner runs real processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cwd, name string, args ...string) (string, error) {
	return run(ctx, cwd, nil, name, args...)
}

func (ExecRunner) RunWithStdin(ctx context.Context, cwd, stdin, name string, args ...string) (string, error) {
	return run(ctx, cwd, strings.NewReader(stdin), name, args...)
}

func run(ctx context.Context, cwd string, stdin *strings.Reader, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderrLen {
			msg = msg[:maxStderrLen]
		}
		return "", fmt.Errorf("command failed: %s %s: %w (%s)", name, strings.Join(args, " "), err, msg)
	}
	return stdout.String(), nil
}
