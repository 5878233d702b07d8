package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	gherrors "ghchain.dev/ghchain/internal/errors"
	"ghchain.dev/ghchain/internal/git"
	"ghchain.dev/ghchain/testhelpers"
)

func TestCommandRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("returns trimmed stdout", func(t *testing.T) {
		fixture := testhelpers.NewGitRepo(t)
		fixture.Commit("a change")

		runner := git.NewCommandRunner(fixture.Dir)
		out, err := runner.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
		require.NoError(t, err)
		require.Equal(t, "main", out)
	})

	t.Run("failure carries the command and stderr", func(t *testing.T) {
		fixture := testhelpers.NewGitRepo(t)

		runner := git.NewCommandRunner(fixture.Dir)
		_, err := runner.Run(ctx, "rev-parse", "--verify", "no-such-ref")
		require.Error(t, err)

		var cmdErr *gherrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Contains(t, cmdErr.Args, "no-such-ref")
		require.NotEmpty(t, cmdErr.Stderr)
	})

	t.Run("nil context still runs with the default timeout", func(t *testing.T) {
		fixture := testhelpers.NewGitRepo(t)
		fixture.Commit("a change")

		runner := git.NewCommandRunner(fixture.Dir)
		//nolint:staticcheck // exercising the nil-context fallback
		out, err := runner.Run(nil, "rev-parse", "HEAD")
		require.NoError(t, err)
		require.NotEmpty(t, out)
	})
}

func TestBranchOps(t *testing.T) {
	ctx := context.Background()

	t.Run("ancestor checks", func(t *testing.T) {
		fixture, repo := openFixture(t)
		fixture.Checkout("dev", true)
		fixture.Commit("stacked change")

		ok, err := repo.IsAncestor(ctx, "main", "dev")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.IsAncestor(ctx, "dev", "main")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("local matches remote", func(t *testing.T) {
		fixture, repo := openFixture(t)
		fixture.AddBareRemote()
		fixture.Git("push", "-u", "origin", "main")

		match, _, _, err := repo.LocalMatchesRemote(ctx, "main")
		require.NoError(t, err)
		require.True(t, match)

		fixture.Commit("local only change")
		match, local, remote, err := repo.LocalMatchesRemote(ctx, "main")
		require.NoError(t, err)
		require.False(t, match)
		require.NotEqual(t, local, remote)
	})

	t.Run("branch without remote counterpart is unpushed, not in sync", func(t *testing.T) {
		fixture, repo := openFixture(t)
		fixture.AddBareRemote()
		fixture.Git("branch", "local-only")

		match, local, remote, err := repo.LocalMatchesRemote(ctx, "local-only")
		require.NoError(t, err)
		require.False(t, match)
		require.NotEmpty(t, local)
		require.Empty(t, remote)
	})

	t.Run("staged change detection", func(t *testing.T) {
		fixture, repo := openFixture(t)

		staged, err := repo.HasStagedChanges(ctx)
		require.NoError(t, err)
		require.False(t, staged)

		fixture.WriteFile("new.txt", "content\n")
		fixture.Git("add", "new.txt")

		staged, err = repo.HasStagedChanges(ctx)
		require.NoError(t, err)
		require.True(t, staged)
	})
}
