package engine_test

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixRefs(t *testing.T) {
	ctx := context.Background()

	t.Run("moves a stranded branch onto the rewritten commit", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		fixture.CommitFile("a.txt", "a\n", "first change")
		fixture.CommitFile("b.txt", "b\n", "second change")

		// Strand a stack branch by rewriting history without --update-refs.
		// The rebase runs with a fixed committer date: otherwise, when the
		// original commits and the rebase land in the same clock second, the
		// rewritten commits are byte-identical and keep their SHAs, so no
		// branch is stranded.
		fixture.Git("branch", "test_user-1", "HEAD~1")
		rebase := exec.Command("git", "rebase", "--force-rebase", "main")
		rebase.Dir = fixture.Dir
		rebase.Env = append(os.Environ(),
			"GIT_CONFIG_GLOBAL=/dev/null",
			"GIT_COMMITTER_DATE=2020-01-01T00:00:00Z",
		)
		out, err := rebase.CombinedOutput()
		require.NoError(t, err, string(out))

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)
		require.Equal(t, "", stack.Commits[0].Branch())

		moved, err := eng.FixRefs(ctx, stack)
		require.NoError(t, err)
		require.Equal(t, []string{"test_user-1"}, moved)
		require.Equal(t, stack.Commits[0].SHA, fixture.RevParse("test_user-1"))
		require.Equal(t, "test_user-1", stack.Commits[0].Branch())
	})

	t.Run("leaves non-template branches alone", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		fixture.CommitFile("a.txt", "a\n", "first change")

		fixture.Git("branch", "scratch", "HEAD")
		fixture.WriteFile("a.txt", "a, amended\n")
		fixture.Git("add", "a.txt")
		fixture.Git("commit", "--amend", "--no-edit")

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		moved, err := eng.FixRefs(ctx, stack)
		require.NoError(t, err)
		require.Empty(t, moved)
		require.Equal(t, "", stack.Commits[0].Branch())
	})

	t.Run("nothing stranded is a no-op", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		sha := fixture.Commit("a change")
		fixture.Git("branch", "test_user-1", sha)

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		moved, err := eng.FixRefs(ctx, stack)
		require.NoError(t, err)
		require.Empty(t, moved)
	})
}
