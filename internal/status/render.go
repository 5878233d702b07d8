// Package status renders the stack as a table, either once or as a live
// auto-refreshing view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ghchain.dev/ghchain/internal/engine"
	"ghchain.dev/ghchain/internal/github"
)

// Render returns the stack as a bordered table, newest commit first.
func Render(stack *engine.Stack) string {
	if len(stack.Commits) == 0 {
		return fmt.Sprintf("No commits between %s and %s.\n", stack.BaseBranch, stack.DevBranch)
	}

	headers := []string{"Commit", "Title", "Branch", "PR", "Review", "Mergeable", "Checks"}

	rows := make([][]string, 0, len(stack.Commits))
	for i := len(stack.Commits) - 1; i >= 0; i-- {
		rows = append(rows, statusRow(stack.Commits[i]))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderRow(false).
		BorderColumn(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			cell := rows[row][col]
			switch col {
			case 4:
				return reviewStyle(cell)
			case 5:
				return mergeableStyle(cell)
			case 6:
				return checksStyle(cell)
			}
			return cellStyle
		})

	var b strings.Builder
	fmt.Fprintf(&b, "Stack on %s (base: %s)\n", stack.DevBranch, stack.BaseBranch)
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

func statusRow(c *engine.Commit) []string {
	branch := c.Branch()
	if branch == "" {
		branch = "-"
	}
	if c.IsFixup {
		branch = branch + " (fixup)"
	}

	pr := "-"
	review := string(github.ReviewNone)
	mergeable := "-"
	if c.PR != nil {
		pr = fmt.Sprintf("#%d", c.PR.Number)
		if c.PR.Draft {
			pr += " (draft)"
		}
		review = string(c.PR.ReviewDecision)
		mergeable = string(c.PR.Mergeable)
	}
	if review == "" {
		review = "NONE"
	}

	return []string{
		fmt.Sprintf("%.8s", c.SHA),
		truncate(c.Title, 48),
		branch,
		pr,
		review,
		mergeable,
		checkSummary(c),
	}
}

// checkSummary collapses a commit's checks and workflow runs into one word.
func checkSummary(c *engine.Commit) string {
	var checks []github.CheckStatus
	if c.PR != nil {
		checks = c.PR.Checks
	}
	for _, run := range c.WorkflowRuns {
		checks = append(checks, github.CheckStatus{
			Name:       run.Workflow,
			Status:     run.Status,
			Conclusion: run.Conclusion,
		})
	}
	if len(checks) == 0 {
		return "-"
	}

	summary := "passing"
	for _, check := range checks {
		switch strings.ToUpper(check.Conclusion) {
		case "FAILURE", "TIMED_OUT", "CANCELLED":
			return "failing"
		case "SUCCESS", "NEUTRAL", "SKIPPED":
			continue
		default:
			summary = "pending"
		}
	}
	return summary
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
