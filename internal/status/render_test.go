package status_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"ghchain.dev/ghchain/internal/engine"
	"ghchain.dev/ghchain/internal/github"
	"ghchain.dev/ghchain/internal/status"
)

func init() {
	// Strip color codes so assertions match the rendered text directly
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRender(t *testing.T) {
	t.Run("empty stack", func(t *testing.T) {
		stack := &engine.Stack{BaseBranch: "main", DevBranch: "dev"}
		out := status.Render(stack)
		require.Contains(t, out, "No commits between main and dev")
	})

	t.Run("renders one row per commit, newest on top", func(t *testing.T) {
		stack := &engine.Stack{
			BaseBranch: "main",
			DevBranch:  "dev",
			Commits: []*engine.Commit{
				{SHA: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Title: "first change"},
				{SHA: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Title: "second change"},
			},
		}

		out := status.Render(stack)
		require.Contains(t, out, "Stack on dev (base: main)")
		require.Contains(t, out, "first change")
		require.Contains(t, out, "second change")
		require.Contains(t, out, "aaaaaaaa")
		require.Contains(t, out, "bbbbbbbb")

		// Newest commit is rendered above the oldest.
		require.Less(t, strings.Index(out, "second change"), strings.Index(out, "first change"))
	})

	t.Run("shows PR, review and merge state", func(t *testing.T) {
		commit := &engine.Commit{
			SHA:   "cccccccccccccccccccccccccccccccccccccccc",
			Title: "reviewed change",
			PR: &github.PullRequest{
				Number:         12,
				Draft:          true,
				ReviewDecision: github.ReviewApproved,
				Mergeable:      github.MergeableClean,
				Checks: []github.CheckStatus{
					{Name: "ci", Status: "COMPLETED", Conclusion: "SUCCESS"},
				},
			},
		}
		stack := &engine.Stack{BaseBranch: "main", DevBranch: "dev", Commits: []*engine.Commit{commit}}

		out := status.Render(stack)
		require.Contains(t, out, "#12")
		require.Contains(t, out, "draft")
		require.Contains(t, out, "APPROVED")
		require.Contains(t, out, "MERGEABLE")
		require.Contains(t, out, "passing")
	})

	t.Run("commit without a PR shows placeholders", func(t *testing.T) {
		commit := &engine.Commit{SHA: "dddddddddddddddddddddddddddddddddddddddd", Title: "pending change"}
		stack := &engine.Stack{BaseBranch: "main", DevBranch: "dev", Commits: []*engine.Commit{commit}}

		out := status.Render(stack)
		require.Contains(t, out, "NONE")
	})

	t.Run("long multibyte titles are truncated on rune boundaries", func(t *testing.T) {
		commit := &engine.Commit{
			SHA:   "ffffffffffffffffffffffffffffffffffffffff",
			Title: strings.Repeat("é", 60),
		}
		stack := &engine.Stack{BaseBranch: "main", DevBranch: "dev", Commits: []*engine.Commit{commit}}

		out := status.Render(stack)
		require.True(t, utf8.ValidString(out))
		require.Contains(t, out, strings.Repeat("é", 47)+"…")
		require.NotContains(t, out, strings.Repeat("é", 48))
	})

	t.Run("failing check dominates the summary", func(t *testing.T) {
		commit := &engine.Commit{
			SHA:   "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee",
			Title: "broken change",
			PR: &github.PullRequest{
				Number: 13,
				Checks: []github.CheckStatus{
					{Name: "ci", Status: "COMPLETED", Conclusion: "SUCCESS"},
					{Name: "lint", Status: "COMPLETED", Conclusion: "FAILURE"},
				},
			},
		}
		stack := &engine.Stack{BaseBranch: "main", DevBranch: "dev", Commits: []*engine.Commit{commit}}

		require.Contains(t, status.Render(stack), "failing")
	})
}
