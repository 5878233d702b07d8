package engine

import (
	"fmt"
	"strings"
)

// renderNotes produces the annotation text persisted onto a commit: PR link,
// review and merge state, and one line per workflow run and status check.
func renderNotes(c *Commit) string {
	var b strings.Builder

	if c.PR != nil {
		fmt.Fprintf(&b, "PR: %s\n", c.PR.URL)
		decision := string(c.PR.ReviewDecision)
		if decision == "" {
			decision = "NONE"
		}
		fmt.Fprintf(&b, "Review: %s\n", decision)
		fmt.Fprintf(&b, "Mergeable: %s\n", c.PR.Mergeable)
	} else {
		b.WriteString("PR: none\n")
	}

	if len(c.WorkflowRuns) > 0 {
		b.WriteString("Workflows:\n")
		for _, run := range c.WorkflowRuns {
			fmt.Fprintf(&b, "  %s: %s %s\n", run.Workflow, run.Status, run.Conclusion)
		}
	}

	if c.PR != nil && len(c.PR.Checks) > 0 {
		b.WriteString("Checks:\n")
		for _, check := range c.PR.Checks {
			fmt.Fprintf(&b, "  %s: %s %s\n", check.Name, check.Status, check.Conclusion)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
