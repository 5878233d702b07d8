package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	ghchainerrors "ghchain.dev/ghchain/internal/errors"
)

// Repo is a handle to a local git repository. It combines a shell-out command
// runner with a go-git repository for ref enumeration.
type Repo struct {
	root   string
	runner *CommandRunner
	gogit  *gogit.Repository
}

// Open opens the repository containing dir.
// Returns errors.ErrNotARepository when dir is not inside a git repository.
func Open(dir string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ghchainerrors.ErrNotARepository, dir)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	return &Repo{
		root:   root,
		runner: NewCommandRunner(root),
		gogit:  repo,
	}, nil
}

// Root returns the repository root directory
func (r *Repo) Root() string {
	return r.root
}

// Runner returns the command runner rooted at the repository
func (r *Repo) Runner() *CommandRunner {
	return r.runner
}

// CurrentBranch returns the name of the currently checked-out branch
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if out == "HEAD" {
		return "", fmt.Errorf("not on a branch (detached HEAD)")
	}
	return out, nil
}

// ResolveSHA resolves a ref to a full commit sha
func (r *Repo) ResolveSHA(ctx context.Context, ref string) (string, error) {
	return r.runner.Run(ctx, "rev-parse", ref)
}

// BranchTips returns a map of commit sha to the names of local branches whose
// tip is that commit, built from go-git ref iteration.
func (r *Repo) BranchTips() (map[string][]string, error) {
	tips := make(map[string][]string)

	iter, err := r.gogit.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate branches: %w", err)
	}
	defer iter.Close()

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		sha := ref.Hash().String()
		tips[sha] = append(tips[sha], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate branches: %w", err)
	}

	return tips, nil
}

// BranchNames returns the names of all local branches
func (r *Repo) BranchNames() ([]string, error) {
	var names []string

	iter, err := r.gogit.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate branches: %w", err)
	}
	defer iter.Close()

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate branches: %w", err)
	}

	return names, nil
}

// BranchExists reports whether a local branch with the given name exists
func (r *Repo) BranchExists(name string) bool {
	_, err := r.gogit.Reference(plumbing.NewBranchReferenceName(name), true)
	return err == nil
}

// UserName returns the configured git user name
func (r *Repo) UserName(ctx context.Context) (string, error) {
	return r.runner.Run(ctx, "config", "user.name")
}

// remoteURLPattern matches the owner and repository name in both
// https and ssh remote URL forms.
var remoteURLPattern = regexp.MustCompile(`(?:github\.com[:/])([^/]+)/([^/]+?)(?:\.git)?$`)

// OwnerRepo parses the owner and repository name from remote.origin.url
func (r *Repo) OwnerRepo(ctx context.Context) (string, string, error) {
	url, err := r.runner.Run(ctx, "config", "--get", "remote.origin.url")
	if err != nil {
		return "", "", fmt.Errorf("failed to get remote URL: %w", err)
	}

	m := remoteURLPattern.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return "", "", fmt.Errorf("cannot parse owner/repo from remote URL %q", url)
	}
	return m[1], m[2], nil
}
