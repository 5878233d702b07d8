package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes branches whose local tip moved", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		first := fixture.CommitFile("a.txt", "a\n", "first change")
		fixture.Git("branch", "test_user-1", first)
		fixture.Git("push", "origin", "test_user-1")

		// Rewrite the commit so the local branch diverges from the remote.
		fixture.WriteFile("a.txt", "a, amended\n")
		fixture.Git("add", "a.txt")
		fixture.Git("commit", "--amend", "--no-edit")
		fixture.Git("branch", "-f", "test_user-1", "HEAD")

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		pushed, err := eng.Publish(ctx, stack)
		require.NoError(t, err)
		require.Equal(t, []string{"test_user-1"}, pushed)
		require.Equal(t, fixture.RevParse("test_user-1"), fixture.RevParse("origin/test_user-1"))
	})

	t.Run("pushes a branch that never reached the remote", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		sha := fixture.Commit("a change")
		fixture.Git("branch", "test_user-1", sha)
		require.Empty(t, fixture.RevParse("origin/test_user-1"))

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		pushed, err := eng.Publish(ctx, stack)
		require.NoError(t, err)
		require.Equal(t, []string{"test_user-1"}, pushed)
		require.Equal(t, sha, fixture.RevParse("origin/test_user-1"))
	})

	t.Run("branches in sync are skipped", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		sha := fixture.Commit("a change")
		fixture.Git("branch", "test_user-1", sha)
		fixture.Git("push", "origin", "test_user-1")

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		pushed, err := eng.Publish(ctx, stack)
		require.NoError(t, err)
		require.Empty(t, pushed)
	})
}
