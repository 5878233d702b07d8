// Package errors provides sentinel errors and custom error types for ghchain.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotARepository indicates the working directory is not inside a git repository
	ErrNotARepository = errors.New("not a git repository")

	// ErrAmbiguousBranchMapping indicates a commit is pointed to by more than one branch
	ErrAmbiguousBranchMapping = errors.New("ambiguous branch mapping")

	// ErrBranchOutOfDate indicates a local branch has diverged from its remote counterpart
	ErrBranchOutOfDate = errors.New("branch out of date")

	// ErrNoFixupState indicates `fixup done` was run without a prior `fixup start`
	ErrNoFixupState = errors.New("no fixup in progress")

	// ErrRebaseConflict indicates a rebase stopped on a conflict
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrStaleRemote indicates a force-with-lease push was rejected because the remote moved
	ErrStaleRemote = errors.New("remote has changed since last fetch")
)

// AmbiguousBranchMappingError reports a commit that maps to more than one
// candidate branch. One branch per commit is load-bearing for processing,
// so this aborts the whole run.
type AmbiguousBranchMappingError struct {
	CommitSHA string
	Branches  []string
}

func (e *AmbiguousBranchMappingError) Error() string {
	return fmt.Sprintf("commit %s is pointed to by multiple branches (%s): one branch per commit is required",
		shortSHA(e.CommitSHA), strings.Join(e.Branches, ", "))
}

// Is returns true if the target error is ErrAmbiguousBranchMapping
func (e *AmbiguousBranchMappingError) Is(target error) bool {
	return target == ErrAmbiguousBranchMapping
}

// BranchOutOfDateError reports a local branch whose tip no longer matches the remote.
type BranchOutOfDateError struct {
	BranchName string
}

func (e *BranchOutOfDateError) Error() string {
	return fmt.Sprintf("local branch %s does not match its remote counterpart", e.BranchName)
}

// Is returns true if the target error is ErrBranchOutOfDate
func (e *BranchOutOfDateError) Is(target error) bool {
	return target == ErrBranchOutOfDate
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: git %s", strings.Join(e.Args, " "))
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\nerror: %v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{Args: args, Stdout: stdout, Stderr: stderr, Err: err}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
