package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	ghchainerrors "ghchain.dev/ghchain/internal/errors"
)

// RebaseResult classifies the outcome of a rebase invocation
type RebaseResult int

const (
	// RebaseDone indicates the rebase completed
	RebaseDone RebaseResult = iota
	// RebaseConflict indicates the rebase stopped on a conflict and is in progress
	RebaseConflict
	// RebaseFailed indicates the rebase failed for a reason other than a conflict
	RebaseFailed
)

// RebaseRun is the raw outcome of one rebase invocation
type RebaseRun struct {
	Result          RebaseResult
	Output          string
	UpdatedBranches []string
}

// RebaseOnto rebases the current branch onto target with --update-refs, so
// every branch pointing into the rebased range moves with its commits.
func (r *Repo) RebaseOnto(ctx context.Context, target string, interactive bool) (*RebaseRun, error) {
	if interactive {
		return r.rebaseInteractive(ctx, "--update-refs", "-i", target)
	}

	stdout, stderr, err := r.runner.RunCapture(ctx, "rebase", "--update-refs", target)
	return r.classifyRebase(ctx, stdout, stderr, err)
}

// RebaseRange rebases the commits between oldBase and branch onto newBase,
// following refs. Used by the fixup workflow: git rebase --update-refs --onto
// <newBase> <oldBase> <branch>.
func (r *Repo) RebaseRange(ctx context.Context, newBase, oldBase, branch string) (*RebaseRun, error) {
	stdout, stderr, err := r.runner.RunCapture(ctx, "rebase", "--update-refs", "--onto", newBase, oldBase, branch)
	return r.classifyRebase(ctx, stdout, stderr, err)
}

// RebaseContinue resumes an in-progress rebase after the operator resolved a
// conflict. The editor is suppressed so the commit message is kept as-is.
func (r *Repo) RebaseContinue(ctx context.Context) (*RebaseRun, error) {
	stdout, stderr, err := r.runner.RunCapture(ctx, "-c", "core.editor=true", "rebase", "--continue")
	return r.classifyRebase(ctx, stdout, stderr, err)
}

// RebaseAbort aborts an in-progress rebase
func (r *Repo) RebaseAbort(ctx context.Context) error {
	_, err := r.runner.Run(ctx, "rebase", "--abort")
	return err
}

func (r *Repo) classifyRebase(ctx context.Context, stdout, stderr string, err error) (*RebaseRun, error) {
	output := strings.TrimSpace(stdout + "\n" + stderr)

	if err != nil {
		if r.IsRebaseInProgress(ctx) {
			return &RebaseRun{Result: RebaseConflict, Output: output}, nil
		}
		var cmdErr *ghchainerrors.GitCommandError
		if errors.As(err, &cmdErr) {
			return &RebaseRun{Result: RebaseFailed, Output: output}, nil
		}
		return nil, err
	}

	return &RebaseRun{
		Result:          RebaseDone,
		Output:          output,
		UpdatedBranches: ParseUpdatedRefs(stderr),
	}, nil
}

// rebaseInteractive runs the rebase with inherited stdio so the operator can
// edit the todo list. Touched branches cannot be parsed from inherited
// stderr, so they are computed by diffing branch tips around the run.
func (r *Repo) rebaseInteractive(ctx context.Context, args ...string) (*RebaseRun, error) {
	before, err := r.BranchTips()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "git", append([]string{"rebase"}, args...)...)
	cmd.Dir = r.root
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if r.IsRebaseInProgress(ctx) {
			return &RebaseRun{Result: RebaseConflict}, nil
		}
		return &RebaseRun{Result: RebaseFailed, Output: err.Error()}, nil
	}

	after, err := r.BranchTips()
	if err != nil {
		return nil, err
	}

	return &RebaseRun{
		Result:          RebaseDone,
		UpdatedBranches: diffBranchTips(before, after),
	}, nil
}

// IsRebaseInProgress checks for the rebase-merge / rebase-apply state
// directories under the git dir
func (r *Repo) IsRebaseInProgress(ctx context.Context) bool {
	gitDir, err := r.runner.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return false
	}
	if _, err := os.Stat(gitDir + "/rebase-merge"); err == nil {
		return true
	}
	if _, err := os.Stat(gitDir + "/rebase-apply"); err == nil {
		return true
	}
	return false
}

// ParseUpdatedRefs extracts branch names from the refs/heads/ lines a
// successful --update-refs rebase prints to stderr
func ParseUpdatedRefs(stderr string) []string {
	var branches []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "refs/heads/") {
			continue
		}
		if strings.Contains(line, "Successfully rebased") {
			continue
		}
		name := line[strings.Index(line, "refs/heads/")+len("refs/heads/"):]
		name = strings.TrimRight(name, ".,")
		if name != "" {
			branches = append(branches, name)
		}
	}
	return branches
}

func diffBranchTips(before, after map[string][]string) []string {
	tip := make(map[string]string)
	for sha, names := range before {
		for _, name := range names {
			tip[name] = sha
		}
	}

	var changed []string
	for sha, names := range after {
		for _, name := range names {
			if old, ok := tip[name]; ok && old != sha {
				changed = append(changed, name)
			}
		}
	}
	return changed
}
