package engine

import (
	"context"
	"fmt"

	"ghchain.dev/ghchain/internal/github"
)

// ProcessOptions control what ProcessCommit is allowed to mutate
type ProcessOptions struct {
	CreatePR  bool
	Draft     bool
	WithTests bool
}

// ProcessCommit brings one commit up to date: creates and pushes its branch
// when missing, creates its pull request when requested, republishes the
// stack-list region of every PR below it, and triggers workflows.
//
// The operation is idempotent: an existing branch or PR is reused, never
// duplicated. Branch creation and push failures are fatal for the commit; PR
// creation is best-effort and processing continues without one.
func (e *Engine) ProcessCommit(ctx context.Context, stack *Stack, c *Commit, opts ProcessOptions) (bool, error) {
	if c.Branch() == "" {
		if err := e.createBranch(ctx, stack, c); err != nil {
			return false, err
		}
	}

	prCreated := false
	if !c.IsFixup && opts.CreatePR && c.PR == nil {
		pr := e.createPullRequest(ctx, stack, c, opts.Draft)
		if pr != nil {
			c.PR = pr
			prCreated = true
		}
	}

	if opts.CreatePR {
		if err := e.republishStackList(ctx, stack, c); err != nil {
			return prCreated, err
		}
	}

	if opts.WithTests {
		if err := e.RunWorkflows(ctx, c); err != nil {
			return prCreated, err
		}
	}

	return prCreated, nil
}

// ProcessStack processes every commit in order. When confirmContinue is
// non-nil it is consulted after each commit that produced a new PR, so the
// operator can stop mid-stack. The dev branch is checked out again at the
// end.
func (e *Engine) ProcessStack(ctx context.Context, stack *Stack, opts ProcessOptions, confirmContinue func() bool) error {
	for i, c := range stack.Commits {
		e.log.Info("Processing commit %.8s %s", c.SHA, c.Title)

		prCreated, err := e.ProcessCommit(ctx, stack, c, opts)
		if err != nil {
			return err
		}

		if prCreated && i < len(stack.Commits)-1 && confirmContinue != nil && !confirmContinue() {
			break
		}
	}

	return e.repo.Checkout(ctx, stack.DevBranch)
}

// createBranch names and creates the commit's branch and pushes it. The id is
// taken past both the hosting service's numbering and any branch id already
// present in the stack, so sequential runs never collide.
func (e *Engine) createBranch(ctx context.Context, stack *Stack, c *Commit) error {
	hostNext, err := e.host.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine next branch id: %w", err)
	}
	id := hostNext
	if localNext := stack.MaxBranchID(e.cfg) + 1; localNext > id {
		id = localNext
	}

	author, err := e.repo.UserName(ctx)
	if err != nil {
		return fmt.Errorf("failed to read git user.name: %w", err)
	}
	name := e.cfg.FormatBranchName(author, id)

	if c.IssueNumber > 0 {
		// The hosting service creates the branch and links it to the issue.
		created, err := e.host.CreateIssueBranch(ctx, c.IssueNumber, name, c.SHA)
		if err != nil {
			return err
		}
		name = created
		if err := e.repo.Fetch(ctx); err != nil {
			return err
		}
		if err := e.repo.ForceBranch(ctx, name, c.SHA); err != nil {
			return err
		}
		if err := e.repo.PushWithLease(ctx, name); err != nil {
			return fmt.Errorf("failed to push branch %s: %w", name, err)
		}
	} else {
		if err := e.repo.CreateBranch(ctx, name, c.SHA); err != nil {
			return err
		}
		if err := e.repo.Push(ctx, name); err != nil {
			return fmt.Errorf("failed to push branch %s: %w", name, err)
		}
	}

	e.log.Info("Created branch %s for commit %.8s", name, c.SHA)
	c.setBranch(name)
	return nil
}

// createPullRequest creates the PR for a commit, based on the previous
// commit's branch so the stack forms a chain. Returns nil on failure; PR
// creation is best-effort.
func (e *Engine) createPullRequest(ctx context.Context, stack *Stack, c *Commit, draft bool) *github.PullRequest {
	base := stack.BaseBranch
	for _, prev := range stack.Commits {
		if prev == c {
			break
		}
		if !prev.IsFixup && prev.Branch() != "" {
			base = prev.Branch()
		}
	}

	pr, err := e.host.CreatePullRequest(ctx, github.CreatePROptions{
		Base:  base,
		Head:  c.Branch(),
		Title: c.Title,
		Body:  c.Message(),
		Draft: draft,
	})
	if err != nil {
		e.log.Warn("Failed to create pull request for %s: %v", c.Branch(), err)
		return nil
	}

	e.log.Info("Pull request created: %s (draft: %v)", pr.URL, draft)
	return pr
}

// republishStackList rewrites the stack-list region of every PR from the
// bottom of the stack up to and including c. Any change to one PR's position
// must be reflected in all of its stack-siblings' descriptions.
func (e *Engine) republishStackList(ctx context.Context, stack *Stack, c *Commit) error {
	prs := stack.openPRs(c)
	if len(prs) == 0 {
		return nil
	}

	urls := make([]string, 0, len(prs))
	for _, pr := range prs {
		urls = append(urls, pr.URL)
	}

	for _, pr := range prs {
		updated := UpsertStackList(pr.Body, urls, pr.URL)
		if updated == pr.Body {
			continue
		}
		if err := e.host.UpdatePullRequestBody(ctx, pr.Number, updated); err != nil {
			e.log.Warn("Failed to update description of PR #%d: %v", pr.Number, err)
			continue
		}
		pr.Body = updated
		e.log.Debug("Updated stack list of PR #%d", pr.Number)
	}
	return nil
}

// RunWorkflows triggers the configured workflows for the commit's branch and
// rewrites the workflow-badges region of its PR. Trigger failures are soft.
func (e *Engine) RunWorkflows(ctx context.Context, c *Commit) error {
	if len(e.cfg.Workflows) == 0 {
		e.log.Warn("No workflows configured; nothing to run")
		return nil
	}

	branch := c.Branch()
	repoURL := e.host.RepoURL()

	var badges []string
	for _, workflow := range e.cfg.Workflows {
		if err := e.host.TriggerWorkflow(ctx, workflow, branch); err != nil {
			e.log.Warn("Failed to trigger workflow %s on %s: %v", workflow, branch, err)
			continue
		}
		badges = append(badges, workflowBadge(repoURL, workflow, branch))
	}

	if c.PR == nil || len(badges) == 0 {
		return nil
	}

	updated := UpsertWorkflowBadges(c.PR.Body, badges)
	if updated == c.PR.Body {
		return nil
	}
	if err := e.host.UpdatePullRequestBody(ctx, c.PR.Number, updated); err != nil {
		e.log.Warn("Failed to update badges of PR #%d: %v", c.PR.Number, err)
		return nil
	}
	c.PR.Body = updated
	return nil
}
