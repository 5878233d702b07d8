// Package git wraps git commands and go-git for local repository operations.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	ghchainerrors "ghchain.dev/ghchain/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// CommandRunner handles execution of git commands
type CommandRunner struct {
	workingDir string
}

// NewCommandRunner creates a new CommandRunner rooted at the given directory
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir}
}

// Run executes a git command and returns trimmed stdout
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	stdout, _, err := r.RunCapture(ctx, args...)
	return stdout, err
}

// RunCapture executes a git command and returns trimmed stdout and stderr.
// Stderr is returned even on success; rebase reports updated refs there.
func (r *CommandRunner) RunCapture(ctx context.Context, args ...string) (string, string, error) {
	return r.runInternal(ctx, nil, args...)
}

// RunWithEnv executes a git command with extra environment variables
func (r *CommandRunner) RunWithEnv(ctx context.Context, env []string, args ...string) (string, string, error) {
	return r.runInternal(ctx, env, args...)
}

func (r *CommandRunner) runInternal(ctx context.Context, env []string, args ...string) (string, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outStr := strings.TrimSpace(stdout.String())
	errStr := strings.TrimSpace(stderr.String())
	if err != nil {
		return outStr, errStr, ghchainerrors.NewGitCommandError(args, outStr, errStr, err)
	}
	return outStr, errStr, nil
}
