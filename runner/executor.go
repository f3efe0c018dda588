// Package runner executes external CLI commands and interprets their
// textual output. All on-chain state transitions performed by this
// repository go through it; nothing here knows what a command does
// semantically.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Outcome is the result of one external command invocation.
type Outcome struct {
	// Process exit code. 0 on success.
	ExitCode int
	// Combined stdout and stderr.
	Output string
}

// Executor runs a single external command synchronously.
// Implemented by shellExecutor in production; tests inject scripted fakes.
type Executor interface {
	Run(ctx context.Context, command string) (Outcome, error)
}

var _ Executor = (*shellExecutor)(nil)

type shellExecutor struct{}

// NewShellExecutor returns an Executor that runs commands through `sh -c`.
func NewShellExecutor() Executor {
	return &shellExecutor{}
}

func (*shellExecutor) Run(ctx context.Context, command string) (Outcome, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	outcome := Outcome{Output: string(out)}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The command couldn't run at all (e.g. sh missing).
			return outcome, fmt.Errorf("couldn't run command %q: %w", command, err)
		}
		outcome.ExitCode = exitErr.ExitCode()
	}
	return outcome, nil
}
