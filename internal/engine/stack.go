package engine

import (
	"context"
	"fmt"
	"strconv"

	ghchainerrors "ghchain.dev/ghchain/internal/errors"
	"ghchain.dev/ghchain/internal/github"
)

// BuildStack reconstructs the stack model from current repository and hosting
// state: the commits in baseBranch..dev (oldest first), each resolved to its
// branch and open pull request. Pull requests are enumerated once and indexed
// by head commit sha, so attaching them costs no extra remote queries.
//
// Building is not read-only: the commit annotation (git notes) is refreshed
// as a side effect, keeping the durable record current on every invocation.
func (e *Engine) BuildStack(ctx context.Context, baseBranch string) (*Stack, error) {
	if baseBranch == "" {
		baseBranch = e.cfg.BaseBranch
	}

	devBranch, err := e.repo.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	infos, err := e.repo.CommitsInRange(ctx, baseBranch, devBranch)
	if err != nil {
		return nil, err
	}

	prs, err := e.host.ListOpenPullRequests(ctx)
	if err != nil {
		return nil, err
	}
	prByHead := make(map[string]*github.PullRequest, len(prs))
	for _, pr := range prs {
		prByHead[pr.HeadSHA] = pr
	}

	tips, err := e.repo.BranchTips()
	if err != nil {
		return nil, err
	}

	stack := &Stack{BaseBranch: baseBranch, DevBranch: devBranch}

	for _, info := range infos {
		c := &Commit{
			SHA:     info.SHA,
			Title:   info.Title,
			Body:    info.Body,
			IsFixup: e.cfg.IsFixupMessage(info.Title),
		}

		branches := excludeBranch(tips[c.SHA], devBranch)
		if len(branches) > 1 {
			return nil, &ghchainerrors.AmbiguousBranchMappingError{CommitSHA: c.SHA, Branches: branches}
		}

		branch := ""
		if len(branches) == 1 {
			branch = branches[0]
		}

		if c.IsFixup {
			if err := stack.adoptFixup(c, branch); err != nil {
				return nil, err
			}
		} else {
			c.group = &branchGroup{name: branch}
		}

		if pr := prByHead[c.SHA]; pr != nil {
			c.PR = pr
		}

		e.extractIssueReference(c)

		stack.Commits = append(stack.Commits, c)
	}

	// A fixup whose sha carries the branch (it is the branch tip) found its
	// PR by sha; surface that PR on the group's non-fixup commit too.
	propagateFixupPRs(stack)

	for _, c := range stack.Commits {
		if err := e.refreshAnnotations(ctx, c); err != nil {
			return nil, err
		}
	}

	return stack, nil
}

// adoptFixup attaches a fixup commit to the branch group of the nearest
// preceding non-fixup commit that is still branchless. A fixup never gets a
// branch of its own; when the fixup's own sha is a branch tip (it was
// appended onto an existing branch), that branch name resolves the shared
// group.
func (s *Stack) adoptFixup(c *Commit, branch string) error {
	var target *Commit
	for i := len(s.Commits) - 1; i >= 0; i-- {
		prev := s.Commits[i]
		if prev.IsFixup {
			continue
		}
		if target == nil {
			target = prev
		}
		if prev.Branch() == "" {
			target = prev
			break
		}
	}

	if target == nil {
		return fmt.Errorf("fixup commit %.8s has no preceding commit to attach to", c.SHA)
	}

	c.group = target.group
	if branch != "" {
		if existing := c.group.name; existing != "" && existing != branch {
			// The fixup and its target each carry a branch: the group would
			// have two, and pushing either loses the other.
			return &ghchainerrors.AmbiguousBranchMappingError{
				CommitSHA: c.SHA,
				Branches:  []string{existing, branch},
			}
		}
		c.group.name = branch
	}
	return nil
}

func propagateFixupPRs(s *Stack) {
	for _, c := range s.Commits {
		if !c.IsFixup || c.PR == nil {
			continue
		}
		for _, other := range s.Commits {
			if other != c && !other.IsFixup && other.group == c.group && other.PR == nil {
				other.PR = c.PR
			}
		}
	}
}

// extractIssueReference pulls a linked-issue number out of the commit message
func (e *Engine) extractIssueReference(c *Commit) {
	m := e.cfg.IssueRegexp().FindStringSubmatch(c.Message())
	if m == nil {
		return
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}
	c.IssueNumber = number
	c.IssueURL = e.host.IssueURL(number)
}

// refreshAnnotations refreshes a commit's workflow run statuses and persists
// the rendered annotation onto the commit via git notes
func (e *Engine) refreshAnnotations(ctx context.Context, c *Commit) error {
	c.WorkflowRuns = nil
	for _, workflow := range e.cfg.Workflows {
		runs, err := e.host.ListWorkflowRuns(ctx, workflow, c.SHA)
		if err != nil {
			e.log.Debug("no runs for workflow %s on %.8s: %v", workflow, c.SHA, err)
			continue
		}
		c.WorkflowRuns = append(c.WorkflowRuns, runs...)
	}

	c.Notes = renderNotes(c)
	if err := e.repo.AddNote(ctx, c.SHA, c.Notes); err != nil {
		return fmt.Errorf("failed to update notes on %.8s: %w", c.SHA, err)
	}
	return nil
}

func excludeBranch(branches []string, name string) []string {
	var result []string
	for _, b := range branches {
		if b != name {
			result = append(result, b)
		}
	}
	return result
}
