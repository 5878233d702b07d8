package engine

import (
	"ghchain.dev/ghchain/internal/config"
	"ghchain.dev/ghchain/internal/github"
)

// branchGroup is the shared branch slot for a commit and its fixups. It is
// created unnamed during stack construction and resolved to a concrete branch
// name when the branch exists or gets created, so a fixup commit can point at
// a branch that does not exist yet without aliasing tricks.
type branchGroup struct {
	name string
}

// Commit is one stack entry, rebuilt from scratch on every stack construction.
// It becomes stale the moment the underlying history changes.
type Commit struct {
	SHA         string
	Title       string
	Body        string
	IsFixup     bool
	IssueNumber int
	IssueURL    string

	PR           *github.PullRequest
	WorkflowRuns []github.WorkflowRun
	Notes        string

	group *branchGroup
}

// Branch returns the branch associated with the commit, or "" if none is
// resolved yet
func (c *Commit) Branch() string {
	if c.group == nil {
		return ""
	}
	return c.group.name
}

// Message returns the full commit message
func (c *Commit) Message() string {
	if c.Body == "" {
		return c.Title
	}
	return c.Title + "\n\n" + c.Body
}

// setBranch resolves the commit's branch group to a concrete name. Fixup
// commits sharing the group see the same name.
func (c *Commit) setBranch(name string) {
	if c.group == nil {
		c.group = &branchGroup{}
	}
	c.group.name = name
}

// Stack is the ordered sequence of commits in base..dev, oldest first.
// It is a pure read-projection over current repository and hosting state,
// rebuilt in full on every invocation.
type Stack struct {
	Commits    []*Commit
	BaseBranch string
	DevBranch  string
}

// CommitBySHA returns the stack commit with the given sha, or nil
func (s *Stack) CommitBySHA(sha string) *Commit {
	for _, c := range s.Commits {
		if c.SHA == sha {
			return c
		}
	}
	return nil
}

// MaxBranchID returns the highest numeric id among the stack's branch names
// that match the configured template. Used to avoid id collisions with
// branches created earlier in the same run.
func (s *Stack) MaxBranchID(cfg *config.Config) int {
	maxID := 0
	for _, c := range s.Commits {
		name := c.Branch()
		if name == "" {
			continue
		}
		if id, ok := cfg.BranchNameID(name); ok && id > maxID {
			maxID = id
		}
	}
	return maxID
}

// openPRs returns the distinct pull requests attached to commits up to and
// including limit (the whole stack when limit is nil), in stack order
func (s *Stack) openPRs(limit *Commit) []*github.PullRequest {
	var prs []*github.PullRequest
	seen := make(map[int]bool)
	for _, c := range s.Commits {
		if c.PR != nil && !seen[c.PR.Number] {
			prs = append(prs, c.PR)
			seen[c.PR.Number] = true
		}
		if limit != nil && c == limit {
			break
		}
	}
	return prs
}
