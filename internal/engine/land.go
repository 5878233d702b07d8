package engine

import (
	"context"
	"fmt"

	gherrors "ghchain.dev/ghchain/internal/errors"
)

// LandOptions control the land operation.
type LandOptions struct {
	// ConfirmFastForward is consulted before the base branch is moved. A nil
	// callback proceeds without asking.
	ConfirmFastForward func(base, branch string) bool

	// ConfirmSyncToRemote is consulted when the local branch no longer matches
	// its remote tip, before the local branch is fast-forwarded to it. A nil
	// callback refuses: landing a stale local tip would silently discard
	// commits a collaborator pushed to the branch.
	ConfirmSyncToRemote func(branch, remoteSHA string) bool

	// DeleteBranch removes the landed branch locally and on the remote after
	// the base has been pushed.
	DeleteBranch bool
}

// Land fast-forwards the base branch to the named stack branch and pushes it.
// The local branch must match its remote tip (or be synced to it after
// confirmation), and must be reachable from an ancestor-checked position:
// landing a branch whose history does not contain the current base tip would
// rewrite published history, so Land refuses it.
//
// After the push, issues the landed PR closes are closed and any PR that was
// based on the landed branch is retargeted to the base. Both follow-ups are
// best-effort.
func (e *Engine) Land(ctx context.Context, stack *Stack, branch string, opts LandOptions) error {
	if err := e.syncWithRemote(ctx, branch, opts); err != nil {
		return err
	}

	ok, err := e.repo.IsAncestor(ctx, stack.BaseBranch, branch)
	if err != nil {
		return err
	}
	if !ok {
		return &gherrors.BranchOutOfDateError{BranchName: branch}
	}

	if opts.ConfirmFastForward != nil && !opts.ConfirmFastForward(stack.BaseBranch, branch) {
		return fmt.Errorf("landing of %s aborted", branch)
	}

	if err := e.repo.ForceBranch(ctx, stack.BaseBranch, branch); err != nil {
		return err
	}
	if err := e.repo.Push(ctx, stack.BaseBranch); err != nil {
		return fmt.Errorf("failed to push %s: %w", stack.BaseBranch, err)
	}
	e.log.Info("Landed %s onto %s", branch, stack.BaseBranch)

	landed := e.commitByBranch(stack, branch)
	if landed != nil && landed.PR != nil {
		e.closeLinkedIssues(ctx, landed.PR.Number)
	}

	e.retargetDependents(ctx, stack, branch)

	if opts.DeleteBranch {
		e.deleteLandedBranch(ctx, branch)
	}
	return nil
}

// syncWithRemote refuses to land a local branch whose tip no longer matches
// its remote counterpart, unless the operator confirms fast-forwarding the
// local branch to the remote tip first. A branch that was never pushed has
// nothing remote to lose and passes through.
func (e *Engine) syncWithRemote(ctx context.Context, branch string, opts LandOptions) error {
	inSync, _, remote, err := e.repo.LocalMatchesRemote(ctx, branch)
	if err != nil {
		return err
	}
	if inSync || remote == "" {
		return nil
	}

	if opts.ConfirmSyncToRemote == nil || !opts.ConfirmSyncToRemote(branch, remote) {
		return &gherrors.BranchOutOfDateError{BranchName: branch}
	}
	if err := e.repo.ForceBranch(ctx, branch, "origin/"+branch); err != nil {
		return err
	}
	e.log.Info("Fast-forwarded %s to its remote tip %.8s", branch, remote)
	return nil
}

func (e *Engine) commitByBranch(stack *Stack, branch string) *Commit {
	for _, c := range stack.Commits {
		if c.Branch() == branch {
			return c
		}
	}
	return nil
}

// closeLinkedIssues closes every issue the PR declares it closes. Failures
// are logged and swallowed: the land itself already succeeded.
func (e *Engine) closeLinkedIssues(ctx context.Context, prNumber int) {
	issues, err := e.host.ClosingIssues(ctx, prNumber)
	if err != nil {
		e.log.Warn("Failed to list issues closed by PR #%d: %v", prNumber, err)
		return
	}
	for _, issue := range issues {
		if err := e.host.CloseIssue(ctx, issue.Number); err != nil {
			e.log.Warn("Failed to close issue #%d: %v", issue.Number, err)
			continue
		}
		e.log.Info("Closed issue #%d", issue.Number)
	}
}

// retargetDependents points every open PR that was based on the landed branch
// at the base branch instead, so they stay mergeable once the landed branch is
// gone. The full open-PR list is consulted: a PR can depend on the landed
// branch without being attached to a stack commit, e.g. mid-rebase when its
// head sha matches nothing.
func (e *Engine) retargetDependents(ctx context.Context, stack *Stack, landedBranch string) {
	prs, err := e.host.ListOpenPullRequests(ctx)
	if err != nil {
		e.log.Warn("Failed to list open PRs for retargeting: %v", err)
		return
	}
	for _, pr := range prs {
		if pr.BaseBranch != landedBranch {
			continue
		}
		if err := e.host.UpdatePullRequestBase(ctx, pr.Number, stack.BaseBranch); err != nil {
			e.log.Warn("Failed to retarget PR #%d onto %s: %v", pr.Number, stack.BaseBranch, err)
			continue
		}
		e.log.Info("Retargeted PR #%d onto %s", pr.Number, stack.BaseBranch)
		for _, c := range stack.Commits {
			if c.PR != nil && c.PR.Number == pr.Number {
				c.PR.BaseBranch = stack.BaseBranch
			}
		}
	}
}

func (e *Engine) deleteLandedBranch(ctx context.Context, branch string) {
	if err := e.repo.DeleteBranch(ctx, branch); err != nil {
		e.log.Warn("Failed to delete local branch %s: %v", branch, err)
	}
	if err := e.repo.DeleteRemoteBranch(ctx, branch); err != nil {
		e.log.Warn("Failed to delete remote branch %s: %v", branch, err)
	}
}
