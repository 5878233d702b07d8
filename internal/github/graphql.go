package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const graphqlEndpoint = "https://api.github.com/graphql"

// graphql executes one GraphQL request and decodes the data field into out.
// The REST surface of go-github does not cover linked branches or closing
// issue references, so those two queries go through here.
func (c *RealClient) graphql(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	requestBody := map[string]interface{}{
		"query":     query,
		"variables": variables,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", graphqlEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))

	resp, err := c.client.Client().Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute GraphQL request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read GraphQL response: %w", err)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode GraphQL response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("GraphQL error: %s", envelope.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode GraphQL data: %w", err)
		}
	}
	return nil
}

// ClosingIssues returns the issues a pull request would close on merge.
// Landing updates the base ref directly instead of merging the PR, which
// skips GitHub's automatic issue closing, so the engine closes these
// explicitly.
func (c *RealClient) ClosingIssues(ctx context.Context, prNumber int) ([]Issue, error) {
	query := `query ClosingIssues($owner: String!, $repo: String!, $number: Int!) {
		repository(owner: $owner, name: $repo) {
			pullRequest(number: $number) {
				closingIssuesReferences(first: 50) {
					nodes {
						number
						url
						title
					}
				}
			}
		}
	}`

	var data struct {
		Repository struct {
			PullRequest struct {
				ClosingIssuesReferences struct {
					Nodes []struct {
						Number int    `json:"number"`
						URL    string `json:"url"`
						Title  string `json:"title"`
					} `json:"nodes"`
				} `json:"closingIssuesReferences"`
			} `json:"pullRequest"`
		} `json:"repository"`
	}

	err := c.graphql(ctx, query, map[string]interface{}{
		"owner":  c.owner,
		"repo":   c.repo,
		"number": prNumber,
	}, &data)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve closing issues for #%d: %w", prNumber, err)
	}

	var issues []Issue
	for _, node := range data.Repository.PullRequest.ClosingIssuesReferences.Nodes {
		issues = append(issues, Issue{Number: node.Number, URL: node.URL, Title: node.Title})
	}
	return issues, nil
}

// CreateIssueBranch creates a branch linked to an issue, pointing at sha.
// The link makes the branch (and its eventual PR) show up on the issue.
func (c *RealClient) CreateIssueBranch(ctx context.Context, issueNumber int, name, sha string) (string, error) {
	issueID, err := c.issueNodeID(ctx, issueNumber)
	if err != nil {
		return "", err
	}

	mutation := `mutation CreateLinkedBranch($issueId: ID!, $name: String!, $oid: GitObjectID!) {
		createLinkedBranch(input: {issueId: $issueId, name: $name, oid: $oid}) {
			linkedBranch {
				ref {
					name
				}
			}
		}
	}`

	var data struct {
		CreateLinkedBranch struct {
			LinkedBranch struct {
				Ref struct {
					Name string `json:"name"`
				} `json:"ref"`
			} `json:"linkedBranch"`
		} `json:"createLinkedBranch"`
	}

	err = c.graphql(ctx, mutation, map[string]interface{}{
		"issueId": issueID,
		"name":    name,
		"oid":     sha,
	}, &data)
	if err != nil {
		return "", fmt.Errorf("failed to create branch from issue #%d: %w", issueNumber, err)
	}

	branchName := data.CreateLinkedBranch.LinkedBranch.Ref.Name
	if branchName == "" {
		return "", fmt.Errorf("branch name missing from createLinkedBranch response for issue #%d", issueNumber)
	}
	return branchName, nil
}

func (c *RealClient) issueNodeID(ctx context.Context, number int) (string, error) {
	issue, _, err := c.client.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return "", fmt.Errorf("failed to get issue #%d: %w", number, err)
	}
	if issue.GetNodeID() == "" {
		return "", fmt.Errorf("issue #%d has no node id", number)
	}
	return issue.GetNodeID(), nil
}
