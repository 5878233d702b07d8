package git

import (
	"context"
	"fmt"
)

// CreateBranch creates a local branch pointing at the given commit without
// checking it out
func (r *Repo) CreateBranch(ctx context.Context, name, sha string) error {
	_, err := r.runner.Run(ctx, "branch", name, sha)
	return err
}

// ForceBranch moves (or creates) a local branch to point at the given ref
func (r *Repo) ForceBranch(ctx context.Context, name, ref string) error {
	_, err := r.runner.Run(ctx, "branch", "-f", name, ref)
	return err
}

// DeleteBranch deletes a local branch
func (r *Repo) DeleteBranch(ctx context.Context, name string) error {
	_, err := r.runner.Run(ctx, "branch", "-D", name)
	return err
}

// DeleteRemoteBranch deletes a branch on the origin remote
func (r *Repo) DeleteRemoteBranch(ctx context.Context, name string) error {
	_, err := r.runner.Run(ctx, "push", "origin", "--delete", name)
	return err
}

// Checkout checks out a branch or commit
func (r *Repo) Checkout(ctx context.Context, ref string) error {
	_, err := r.runner.Run(ctx, "checkout", ref)
	return err
}

// SetUpstream sets a branch to track its origin counterpart
func (r *Repo) SetUpstream(ctx context.Context, branch string) error {
	_, err := r.runner.Run(ctx, "branch", "--set-upstream-to",
		fmt.Sprintf("origin/%s", branch), branch)
	return err
}

// Fetch fetches the origin remote
func (r *Repo) Fetch(ctx context.Context) error {
	_, err := r.runner.Run(ctx, "fetch", "origin")
	return err
}

// IsAncestor reports whether ancestor is reachable from descendant
func (r *Repo) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	_, err := r.runner.Run(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// LocalMatchesRemote reports whether a local branch points at the same commit
// as its origin counterpart. Returns the two shas for reporting; a branch with
// no remote counterpart is not in sync and reports an empty remote sha, so
// callers can tell "unpushed" from "diverged".
func (r *Repo) LocalMatchesRemote(ctx context.Context, branch string) (bool, string, string, error) {
	local, err := r.ResolveSHA(ctx, branch)
	if err != nil {
		return false, "", "", err
	}
	remote, err := r.ResolveSHA(ctx, "origin/"+branch)
	if err != nil {
		return false, local, "", nil
	}
	return local == remote, local, remote, nil
}
