package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Markers delimiting the two injected regions of a PR body. Each region is
// replaced wholesale on every update; text outside the markers is never
// touched.
const (
	StackListStartMarker      = "<!-- STACK_LIST_START -->"
	StackListEndMarker        = "<!-- STACK_LIST_END -->"
	WorkflowBadgesStartMarker = "<!-- WORKFLOW_BADGES_START -->"
	WorkflowBadgesEndMarker   = "<!-- WORKFLOW_BADGES_END -->"
)

var (
	stackListRegion = regexp.MustCompile(`(?s)` +
		regexp.QuoteMeta(StackListStartMarker) + `.*?` + regexp.QuoteMeta(StackListEndMarker))
	workflowBadgesRegion = regexp.MustCompile(`(?s)` +
		regexp.QuoteMeta(WorkflowBadgesStartMarker) + `.*?` + regexp.QuoteMeta(WorkflowBadgesEndMarker))
)

// RenderStackList renders the stack-list region for one PR: every PR URL in
// the stack, newest on top so the oldest sits at the bottom, with an arrow
// marking the PR whose body this is.
func RenderStackList(urls []string, current string) string {
	var lines []string
	for _, url := range urls {
		entry := "- " + url
		if url == current {
			entry = "- -> " + url
		}
		// Prepend so the oldest PR ends up at the bottom.
		lines = append([]string{entry}, lines...)
	}

	return StackListStartMarker + "\n" +
		"Stack from [ghchain](https://github.com/ghchain-dev/ghchain) (oldest at the bottom):\n" +
		strings.Join(lines, "\n") +
		"\n" + StackListEndMarker
}

// UpsertStackList replaces the stack-list region of a body, appending the
// region when the markers are absent
func UpsertStackList(body string, urls []string, current string) string {
	region := RenderStackList(urls, current)
	if stackListRegion.MatchString(body) {
		return stackListRegion.ReplaceAllString(body, region)
	}
	if body == "" {
		return region
	}
	return body + "\n\n" + region
}

// RenderWorkflowBadges renders the workflow-badges region from badge markdown
func RenderWorkflowBadges(badges []string) string {
	parts := append([]string{WorkflowBadgesStartMarker, "# Workflow Results"}, badges...)
	parts = append(parts, WorkflowBadgesEndMarker)
	return strings.Join(parts, "\n")
}

// UpsertWorkflowBadges replaces the workflow-badges region of a body,
// appending the region when the markers are absent
func UpsertWorkflowBadges(body string, badges []string) string {
	region := RenderWorkflowBadges(badges)
	if workflowBadgesRegion.MatchString(body) {
		return workflowBadgesRegion.ReplaceAllString(body, region)
	}
	if body == "" {
		return region
	}
	return body + "\n" + region
}

// workflowBadge renders the markdown badge image-link for one workflow on one
// branch
func workflowBadge(repoURL, workflow, branch string) string {
	overview := fmt.Sprintf("%s/actions/workflows/%s.yml?query=branch%%3A%s", repoURL, workflow, branch)
	return fmt.Sprintf("[![%s](%s/actions/workflows/%s.yml/badge.svg?branch=%s)](%s)",
		workflow, repoURL, workflow, branch, overview)
}
