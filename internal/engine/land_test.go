package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ghchain.dev/ghchain/internal/engine"
	gherrors "ghchain.dev/ghchain/internal/errors"
	"ghchain.dev/ghchain/internal/github"
)

func TestLand(t *testing.T) {
	ctx := context.Background()

	t.Run("fast-forwards the base branch and pushes it", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		sha := fixture.Commit("first change")
		fixture.Git("branch", "test_user-1", sha)
		fixture.Commit("second change")

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		require.NoError(t, eng.Land(ctx, stack, "test_user-1", engine.LandOptions{}))

		require.Equal(t, sha, fixture.RevParse("main"))
		require.Equal(t, sha, fixture.RevParse("origin/main"))
	})

	t.Run("refuses a branch that does not contain the base tip", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		sha := fixture.Commit("stacked change")
		fixture.Git("branch", "test_user-1", sha)

		// Move the base forward underneath the stack.
		fixture.Checkout("main", false)
		fixture.Commit("landed by someone else")
		fixture.Checkout("dev", false)

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		err = eng.Land(ctx, stack, "test_user-1", engine.LandOptions{})
		require.Error(t, err)

		var outOfDate *gherrors.BranchOutOfDateError
		require.ErrorAs(t, err, &outOfDate)
		require.Equal(t, "test_user-1", outOfDate.BranchName)
	})

	t.Run("refuses a local branch whose remote tip moved", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		stale := fixture.Commit("first change")
		fixture.Git("branch", "test_user-1", stale)
		fixture.Git("push", "origin", "test_user-1")

		// A collaborator advances the remote branch; the local copy stays put.
		ahead := fixture.Commit("pushed by someone else")
		fixture.Git("push", "origin", ahead+":refs/heads/test_user-1")

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		err = eng.Land(ctx, stack, "test_user-1", engine.LandOptions{})
		var outOfDate *gherrors.BranchOutOfDateError
		require.ErrorAs(t, err, &outOfDate)
		require.Equal(t, "test_user-1", outOfDate.BranchName)
		require.NotEqual(t, stale, fixture.RevParse("main"))
	})

	t.Run("confirmed sync fast-forwards the local branch and lands the remote tip", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		stale := fixture.Commit("first change")
		fixture.Git("branch", "test_user-1", stale)
		fixture.Git("push", "origin", "test_user-1")

		ahead := fixture.Commit("pushed by someone else")
		fixture.Git("push", "origin", ahead+":refs/heads/test_user-1")

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		opts := engine.LandOptions{
			ConfirmSyncToRemote: func(branch, remoteSHA string) bool {
				require.Equal(t, "test_user-1", branch)
				require.Equal(t, ahead, remoteSHA)
				return true
			},
		}
		require.NoError(t, eng.Land(ctx, stack, "test_user-1", opts))

		require.Equal(t, ahead, fixture.RevParse("test_user-1"))
		require.Equal(t, ahead, fixture.RevParse("main"))
		require.Equal(t, ahead, fixture.RevParse("origin/main"))
	})

	t.Run("declining the confirmation aborts the land", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		sha := fixture.Commit("a change")
		fixture.Git("branch", "test_user-1", sha)

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		opts := engine.LandOptions{
			ConfirmFastForward: func(base, branch string) bool { return false },
		}
		require.Error(t, eng.Land(ctx, stack, "test_user-1", opts))
		require.NotEqual(t, sha, fixture.RevParse("main"))
	})

	t.Run("closes linked issues and retargets dependent PRs", func(t *testing.T) {
		fixture, eng, fake := newTestEngine(t)
		first := fixture.Commit("first change")
		fixture.Git("branch", "test_user-1", first)
		second := fixture.Commit("second change")
		fixture.Git("branch", "test_user-2", second)

		fake.SeedPullRequest(&github.PullRequest{
			Number: 1, HeadBranch: "test_user-1", HeadSHA: first, BaseBranch: "main",
		})
		fake.SeedPullRequest(&github.PullRequest{
			Number: 2, HeadBranch: "test_user-2", HeadSHA: second, BaseBranch: "test_user-1",
		})
		fake.ClosingIssuesByPR[1] = []github.Issue{{Number: 40}}

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		require.NoError(t, eng.Land(ctx, stack, "test_user-1", engine.LandOptions{}))

		require.True(t, fake.IssueClosed(40))
		require.Equal(t, "main", fake.PR(2).BaseBranch)
	})

	t.Run("retargets a dependent PR not attached to any stack commit", func(t *testing.T) {
		fixture, eng, fake := newTestEngine(t)
		first := fixture.Commit("first change")
		fixture.Git("branch", "test_user-1", first)
		fixture.Commit("second change")

		// A PR mid-rebase: its head sha matches no stack commit, but its base
		// is the branch being landed.
		fake.SeedPullRequest(&github.PullRequest{
			Number:     9,
			HeadBranch: "test_user-2",
			HeadSHA:    "0000000000000000000000000000000000000000",
			BaseBranch: "test_user-1",
		})

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		require.NoError(t, eng.Land(ctx, stack, "test_user-1", engine.LandOptions{}))
		require.Equal(t, "main", fake.PR(9).BaseBranch)
	})

	t.Run("deletes the landed branch when asked", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		sha := fixture.Commit("a change")
		fixture.Git("branch", "test_user-1", sha)
		fixture.Git("push", "origin", "test_user-1")
		fixture.Commit("tip change")

		stack, err := eng.BuildStack(ctx, "")
		require.NoError(t, err)

		require.NoError(t, eng.Land(ctx, stack, "test_user-1", engine.LandOptions{DeleteBranch: true}))

		require.Empty(t, fixture.RevParse("test_user-1"))
		require.Empty(t, fixture.RevParse("origin/test_user-1"))
	})
}
