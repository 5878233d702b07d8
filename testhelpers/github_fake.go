package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"ghchain.dev/ghchain/internal/github"
)

// FakeGitHub is an in-memory github.Client for tests. All mutations are
// recorded so assertions can inspect what the engine did.
type FakeGitHub struct {
	mu sync.Mutex

	Owner string
	Repo  string

	nextNumber int
	prs        map[int]*github.PullRequest
	issues     map[int]*github.Issue
	closed     map[int]bool

	// ClosingIssuesByPR maps a PR number to the issues it would close.
	ClosingIssuesByPR map[int][]github.Issue

	// WorkflowRunsBySHA seeds ListWorkflowRuns responses.
	WorkflowRunsBySHA map[string][]github.WorkflowRun

	// Dispatched records TriggerWorkflow calls as "workflow@ref".
	Dispatched []string

	// LinkedBranches records CreateIssueBranch calls by issue number.
	LinkedBranches map[int]string

	// HeadSHAResolver resolves a head branch to its tip sha, standing in for
	// the hosting service computing a PR's head commit. Tests back it with
	// the git fixture.
	HeadSHAResolver func(branch string) string
}

// NewFakeGitHub creates an empty fake for owner/repo with numbering starting
// at 1.
func NewFakeGitHub(owner, repo string) *FakeGitHub {
	return &FakeGitHub{
		Owner:             owner,
		Repo:              repo,
		nextNumber:        1,
		prs:               make(map[int]*github.PullRequest),
		issues:            make(map[int]*github.Issue),
		closed:            make(map[int]bool),
		ClosingIssuesByPR: make(map[int][]github.Issue),
		WorkflowRunsBySHA: make(map[string][]github.WorkflowRun),
		LinkedBranches:    make(map[int]string),
	}
}

// SeedPullRequest registers an existing open PR and bumps the numbering past
// it.
func (f *FakeGitHub) SeedPullRequest(pr *github.PullRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prs[pr.Number] = pr
	if pr.Number >= f.nextNumber {
		f.nextNumber = pr.Number + 1
	}
}

// PR returns a registered pull request, or nil.
func (f *FakeGitHub) PR(number int) *github.PullRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prs[number]
}

// IssueClosed reports whether CloseIssue was called for the number.
func (f *FakeGitHub) IssueClosed(number int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed[number]
}

func (f *FakeGitHub) ListOpenPullRequests(ctx context.Context) ([]*github.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var prs []*github.PullRequest
	for _, pr := range f.prs {
		if f.HeadSHAResolver != nil {
			if sha := f.HeadSHAResolver(pr.HeadBranch); sha != "" {
				pr.HeadSHA = sha
			}
		}
		prs = append(prs, pr)
	}
	return prs, nil
}

func (f *FakeGitHub) CreatePullRequest(ctx context.Context, opts github.CreatePROptions) (*github.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	number := f.nextNumber
	f.nextNumber++
	pr := &github.PullRequest{
		Number:     number,
		URL:        fmt.Sprintf("https://github.com/%s/%s/pull/%d", f.Owner, f.Repo, number),
		Title:      opts.Title,
		Body:       opts.Body,
		Draft:      opts.Draft,
		BaseBranch: opts.Base,
		HeadBranch: opts.Head,
		Mergeable:  github.MergeableUnknown,
	}
	if f.HeadSHAResolver != nil {
		pr.HeadSHA = f.HeadSHAResolver(opts.Head)
	}
	f.prs[number] = pr
	return pr, nil
}

func (f *FakeGitHub) UpdatePullRequestBody(ctx context.Context, number int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.prs[number]
	if !ok {
		return fmt.Errorf("no pull request #%d", number)
	}
	pr.Body = body
	return nil
}

func (f *FakeGitHub) UpdatePullRequestBase(ctx context.Context, number int, base string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.prs[number]
	if !ok {
		return fmt.Errorf("no pull request #%d", number)
	}
	pr.BaseBranch = base
	return nil
}

func (f *FakeGitHub) NextID(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextNumber, nil
}

func (f *FakeGitHub) TriggerWorkflow(ctx context.Context, workflow, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Dispatched = append(f.Dispatched, workflow+"@"+ref)
	return nil
}

func (f *FakeGitHub) ListWorkflowRuns(ctx context.Context, workflow, sha string) ([]github.WorkflowRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var runs []github.WorkflowRun
	for _, run := range f.WorkflowRunsBySHA[sha] {
		if run.Workflow == workflow {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func (f *FakeGitHub) CreateIssue(ctx context.Context, title, body string) (*github.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	number := f.nextNumber
	f.nextNumber++
	issue := &github.Issue{
		Number: number,
		URL:    github.BuildIssueURL(f.Owner, f.Repo, number),
		Title:  title,
	}
	f.issues[number] = issue
	return issue, nil
}

func (f *FakeGitHub) CloseIssue(ctx context.Context, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[number] = true
	return nil
}

func (f *FakeGitHub) ClosingIssues(ctx context.Context, prNumber int) ([]github.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ClosingIssuesByPR[prNumber], nil
}

func (f *FakeGitHub) CreateIssueBranch(ctx context.Context, issueNumber int, name, sha string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LinkedBranches[issueNumber] = name
	return name, nil
}

func (f *FakeGitHub) IssueURL(number int) string {
	return github.BuildIssueURL(f.Owner, f.Repo, number)
}

func (f *FakeGitHub) RepoURL() string {
	return github.BuildRepoURL(f.Owner, f.Repo)
}

func (f *FakeGitHub) GetOwnerRepo() (string, string) {
	return f.Owner, f.Repo
}
