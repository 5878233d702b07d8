package github

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// RealClient implements Client against the GitHub API
type RealClient struct {
	client *github.Client
	token  string
	owner  string
	repo   string
}

// NewRealClient creates a client for the given repository, authenticating
// with GITHUB_TOKEN or the gh CLI's stored token
func NewRealClient(ctx context.Context, owner, repo string) (*RealClient, error) {
	token, err := getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GitHub token: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return &RealClient{
		client: github.NewClient(tc),
		token:  token,
		owner:  owner,
		repo:   repo,
	}, nil
}

// getToken gets a GitHub token from the environment or the gh CLI
func getToken(ctx context.Context) (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	cmd := exec.CommandContext(ctx, "gh", "auth", "token")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("no GITHUB_TOKEN and gh auth token failed: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}
	return token, nil
}

// GetOwnerRepo returns the repository owner and name
func (c *RealClient) GetOwnerRepo() (string, string) {
	return c.owner, c.repo
}

// RepoURL returns the web URL of the repository
func (c *RealClient) RepoURL() string {
	return BuildRepoURL(c.owner, c.repo)
}

// IssueURL returns the web URL of an issue
func (c *RealClient) IssueURL(number int) string {
	return BuildIssueURL(c.owner, c.repo, number)
}

// ListOpenPullRequests returns every open pull request, with review decision,
// mergeability, head commits, and status checks resolved per PR
func (c *RealClient) ListOpenPullRequests(ctx context.Context) ([]*PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var result []*PullRequest
	for {
		prs, resp, err := c.client.PullRequests.List(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, pr := range prs {
			mapped, err := c.resolvePullRequest(ctx, pr)
			if err != nil {
				return nil, err
			}
			result = append(result, mapped)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// resolvePullRequest maps a go-github pull request to the adapter struct,
// filling fields the list endpoint does not populate
func (c *RealClient) resolvePullRequest(ctx context.Context, pr *github.PullRequest) (*PullRequest, error) {
	number := pr.GetNumber()

	// The list endpoint leaves Mergeable unset; Get computes it.
	full, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}

	decision, err := c.reviewDecision(ctx, full)
	if err != nil {
		return nil, err
	}

	shas, err := c.listCommitSHAs(ctx, number)
	if err != nil {
		return nil, err
	}

	checks, err := c.listChecks(ctx, full.GetHead().GetSHA())
	if err != nil {
		return nil, err
	}

	return &PullRequest{
		Number:         number,
		URL:            full.GetHTMLURL(),
		Title:          full.GetTitle(),
		Body:           full.GetBody(),
		Draft:          full.GetDraft(),
		BaseBranch:     full.GetBase().GetRef(),
		HeadBranch:     full.GetHead().GetRef(),
		HeadSHA:        full.GetHead().GetSHA(),
		ReviewDecision: decision,
		Mergeable:      mapMergeable(full),
		CommitSHAs:     shas,
		Checks:         checks,
	}, nil
}

func mapMergeable(pr *github.PullRequest) Mergeable {
	if pr.Mergeable == nil {
		return MergeableUnknown
	}
	if *pr.Mergeable {
		return MergeableClean
	}
	return MergeableConflicting
}

// reviewDecision aggregates the latest review per reviewer into one decision
func (c *RealClient) reviewDecision(ctx context.Context, pr *github.PullRequest) (ReviewDecision, error) {
	reviews, _, err := c.client.PullRequests.ListReviews(ctx, c.owner, c.repo, pr.GetNumber(), &github.ListOptions{PerPage: 100})
	if err != nil {
		return ReviewNone, fmt.Errorf("failed to list reviews for #%d: %w", pr.GetNumber(), err)
	}

	latest := make(map[string]string)
	for _, review := range reviews {
		state := review.GetState()
		if state != "APPROVED" && state != "CHANGES_REQUESTED" {
			continue
		}
		latest[review.GetUser().GetLogin()] = state
	}

	approved := false
	for _, state := range latest {
		if state == "CHANGES_REQUESTED" {
			return ReviewChangesRequested, nil
		}
		if state == "APPROVED" {
			approved = true
		}
	}
	if approved {
		return ReviewApproved, nil
	}
	if len(pr.RequestedReviewers) > 0 || len(pr.RequestedTeams) > 0 {
		return ReviewRequired, nil
	}
	return ReviewNone, nil
}

func (c *RealClient) listCommitSHAs(ctx context.Context, number int) ([]string, error) {
	commits, _, err := c.client.PullRequests.ListCommits(ctx, c.owner, c.repo, number, &github.ListOptions{PerPage: 250})
	if err != nil {
		return nil, fmt.Errorf("failed to list commits for #%d: %w", number, err)
	}

	shas := make([]string, 0, len(commits))
	for _, commit := range commits {
		shas = append(shas, commit.GetSHA())
	}
	return shas, nil
}

func (c *RealClient) listChecks(ctx context.Context, sha string) ([]CheckStatus, error) {
	if sha == "" {
		return nil, nil
	}

	runs, _, err := c.client.Checks.ListCheckRunsForRef(ctx, c.owner, c.repo, sha, &github.ListCheckRunsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list check runs for %s: %w", sha, err)
	}

	checks := make([]CheckStatus, 0, len(runs.CheckRuns))
	for _, run := range runs.CheckRuns {
		checks = append(checks, CheckStatus{
			Name:       run.GetName(),
			Status:     strings.ToUpper(run.GetStatus()),
			Conclusion: strings.ToUpper(run.GetConclusion()),
			DetailsURL: run.GetDetailsURL(),
		})
	}
	return checks, nil
}

// CreatePullRequest creates a new pull request
func (c *RealClient) CreatePullRequest(ctx context.Context, opts CreatePROptions) (*PullRequest, error) {
	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}
	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}

	created, _, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return &PullRequest{
		Number:         created.GetNumber(),
		URL:            created.GetHTMLURL(),
		Title:          created.GetTitle(),
		Body:           created.GetBody(),
		Draft:          created.GetDraft(),
		BaseBranch:     created.GetBase().GetRef(),
		HeadBranch:     created.GetHead().GetRef(),
		HeadSHA:        created.GetHead().GetSHA(),
		Mergeable:      MergeableUnknown,
		ReviewDecision: ReviewNone,
		CommitSHAs:     []string{created.GetHead().GetSHA()},
	}, nil
}

// UpdatePullRequestBody replaces a pull request's body
func (c *RealClient) UpdatePullRequestBody(ctx context.Context, number int, body string) error {
	_, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, number, &github.PullRequest{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to update body of pull request #%d: %w", number, err)
	}
	return nil
}

// UpdatePullRequestBase retargets a pull request onto a new base branch
func (c *RealClient) UpdatePullRequestBase(ctx context.Context, number int, base string) error {
	_, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, number, &github.PullRequest{
		Base: &github.PullRequestBranch{Ref: github.String(base)},
	})
	if err != nil {
		return fmt.Errorf("failed to retarget pull request #%d onto %s: %w", number, base, err)
	}
	return nil
}

// NextID returns one more than the highest pull request or issue number.
// The issues listing includes pull requests, but both are queried so neither
// numbering can lag the other.
func (c *RealClient) NextID(ctx context.Context) (int, error) {
	maxID := 0

	issues, _, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list issues: %w", err)
	}
	if len(issues) > 0 && issues[0].GetNumber() > maxID {
		maxID = issues[0].GetNumber()
	}

	prs, _, err := c.client.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list pull requests: %w", err)
	}
	if len(prs) > 0 && prs[0].GetNumber() > maxID {
		maxID = prs[0].GetNumber()
	}

	return maxID + 1, nil
}

// TriggerWorkflow dispatches a workflow run against a ref
func (c *RealClient) TriggerWorkflow(ctx context.Context, workflow, ref string) error {
	_, err := c.client.Actions.CreateWorkflowDispatchEventByFileName(ctx, c.owner, c.repo, workflow+".yml",
		github.CreateWorkflowDispatchEventRequest{Ref: ref})
	if err != nil {
		return fmt.Errorf("failed to trigger workflow %s on %s: %w", workflow, ref, err)
	}
	return nil
}

// ListWorkflowRuns returns the most recent run of a workflow for a commit
func (c *RealClient) ListWorkflowRuns(ctx context.Context, workflow, sha string) ([]WorkflowRun, error) {
	runs, _, err := c.client.Actions.ListWorkflowRunsByFileName(ctx, c.owner, c.repo, workflow+".yml",
		&github.ListWorkflowRunsOptions{
			HeadSHA:     sha,
			ListOptions: github.ListOptions{PerPage: 1},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs of workflow %s: %w", workflow, err)
	}

	result := make([]WorkflowRun, 0, len(runs.WorkflowRuns))
	for _, run := range runs.WorkflowRuns {
		result = append(result, WorkflowRun{
			Workflow:   workflow,
			Status:     run.GetStatus(),
			Conclusion: run.GetConclusion(),
			URL:        run.GetHTMLURL(),
		})
	}
	return result, nil
}

// CreateIssue creates an issue
func (c *RealClient) CreateIssue(ctx context.Context, title, body string) (*Issue, error) {
	issue, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	return &Issue{
		Number: issue.GetNumber(),
		URL:    issue.GetHTMLURL(),
		Title:  issue.GetTitle(),
	}, nil
}

// CloseIssue closes an issue
func (c *RealClient) CloseIssue(ctx context.Context, number int) error {
	_, _, err := c.client.Issues.Edit(ctx, c.owner, c.repo, number, &github.IssueRequest{
		State: github.String("closed"),
	})
	if err != nil {
		return fmt.Errorf("failed to close issue #%d: %w", number, err)
	}
	return nil
}
