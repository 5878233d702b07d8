// Package github provides a client for the GitHub API surface ghchain needs:
// pull request CRUD, workflow runs, and issues.
package github

import (
	"context"
	"fmt"
)

// ReviewDecision is the aggregated review state of a pull request
type ReviewDecision string

const (
	// ReviewNone indicates no review is required or given
	ReviewNone ReviewDecision = ""
	// ReviewRequired indicates a review is still outstanding
	ReviewRequired ReviewDecision = "REVIEW_REQUIRED"
	// ReviewChangesRequested indicates a reviewer requested changes
	ReviewChangesRequested ReviewDecision = "CHANGES_REQUESTED"
	// ReviewApproved indicates the pull request is approved
	ReviewApproved ReviewDecision = "APPROVED"
)

// Mergeable is the merge-state of a pull request
type Mergeable string

const (
	// MergeableUnknown indicates GitHub has not yet computed mergeability
	MergeableUnknown Mergeable = "UNKNOWN"
	// MergeableClean indicates the pull request can be merged
	MergeableClean Mergeable = "MERGEABLE"
	// MergeableConflicting indicates the pull request has conflicts
	MergeableConflicting Mergeable = "CONFLICTING"
)

// CheckStatus is one status check on a pull request's head commit
type CheckStatus struct {
	Name       string
	Status     string
	Conclusion string
	DetailsURL string
}

// WorkflowRun is the most recent run of a workflow for a commit or branch
type WorkflowRun struct {
	Workflow   string
	Status     string
	Conclusion string
	URL        string
}

// PullRequest contains the pull request state the reconciliation engine needs.
// All fields are mapped from API responses at the adapter boundary.
type PullRequest struct {
	Number         int
	URL            string
	Title          string
	Body           string
	Draft          bool
	BaseBranch     string
	HeadBranch     string
	HeadSHA        string
	ReviewDecision ReviewDecision
	Mergeable      Mergeable
	CommitSHAs     []string
	Checks         []CheckStatus
}

// Issue is a GitHub issue
type Issue struct {
	Number int
	URL    string
	Title  string
}

// CreatePROptions are the inputs for creating a pull request
type CreatePROptions struct {
	Base  string
	Head  string
	Title string
	Body  string
	Draft bool
}

// Client is the hosting-service surface consumed by the engine
type Client interface {
	// ListOpenPullRequests returns every open pull request with full state
	ListOpenPullRequests(ctx context.Context) ([]*PullRequest, error)

	// CreatePullRequest creates a new pull request
	CreatePullRequest(ctx context.Context, opts CreatePROptions) (*PullRequest, error)

	// UpdatePullRequestBody replaces a pull request's body
	UpdatePullRequestBody(ctx context.Context, number int, body string) error

	// UpdatePullRequestBase retargets a pull request onto a new base branch
	UpdatePullRequestBase(ctx context.Context, number int, base string) error

	// NextID returns one more than the highest pull request or issue number
	NextID(ctx context.Context) (int, error)

	// TriggerWorkflow dispatches a workflow run against a ref
	TriggerWorkflow(ctx context.Context, workflow, ref string) error

	// ListWorkflowRuns returns the most recent runs of a workflow for a commit
	ListWorkflowRuns(ctx context.Context, workflow, sha string) ([]WorkflowRun, error)

	// CreateIssue creates an issue
	CreateIssue(ctx context.Context, title, body string) (*Issue, error)

	// CloseIssue closes an issue
	CloseIssue(ctx context.Context, number int) error

	// ClosingIssues returns the issues a pull request would auto-close on merge
	ClosingIssues(ctx context.Context, prNumber int) ([]Issue, error)

	// CreateIssueBranch creates a branch linked to an issue, pointing at sha,
	// and returns the branch name chosen by the hosting service
	CreateIssueBranch(ctx context.Context, issueNumber int, name, sha string) (string, error)

	// IssueURL returns the web URL of an issue
	IssueURL(number int) string

	// RepoURL returns the web URL of the repository
	RepoURL() string

	// GetOwnerRepo returns the repository owner and name
	GetOwnerRepo() (owner, repo string)
}

// BuildIssueURL formats the canonical issue URL for a repository
func BuildIssueURL(owner, repo string, number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/issues/%d", owner, repo, number)
}

// BuildRepoURL formats the canonical web URL for a repository
func BuildRepoURL(owner, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s", owner, repo)
}
