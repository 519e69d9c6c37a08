package util

import (
	"context"
	"strings"
	"sync"
)

// RecordedCommand is one invocation seen by a RecordingRunner.
type RecordedCommand struct {
	Dir   string
	Name  string
	Args  []string
	Stdin string
}

// Line joins the command name and arguments with spaces.
func (c RecordedCommand) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// RecordingRunner captures commands for tests. Respond, when set, decides
// the output of each call.
type RecordingRunner struct {
	mu       sync.Mutex
	Commands []RecordedCommand
	Respond  func(cmd RecordedCommand) (string, error)
}

func (r *RecordingRunner) Run(ctx context.Context, cwd, name string, args ...string) (string, error) {
	return r.record(RecordedCommand{Dir: cwd, Name: name, Args: args})
}

func (r *RecordingRunner) RunWithStdin(ctx context.Context, cwd, stdin, name string, args ...string) (string, error) {
	return r.record(RecordedCommand{Dir: cwd, Name: name, Args: args, Stdin: stdin})
}

func (r *RecordingRunner) record(cmd RecordedCommand) (string, error) {
	r.mu.Lock()
	r.Commands = append(r.Commands, cmd)
	respond := r.Respond
	r.mu.Unlock()
	if respond == nil {
		return "", nil
	}
	return respond(cmd)
}

// Calls returns a copy of the recorded commands.
func (r *RecordingRunner) Calls() []RecordedCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedCommand(nil), r.Commands...)
}
