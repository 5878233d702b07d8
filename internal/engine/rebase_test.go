package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ghchain.dev/ghchain/internal/engine"
	gherrors "ghchain.dev/ghchain/internal/errors"
)

func TestRebaseSession(t *testing.T) {
	ctx := context.Background()

	t.Run("clean rebase carries and pushes stack branches", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		first := fixture.CommitFile("a.txt", "a\n", "first change")
		fixture.Git("branch", "test_user-1", first)
		fixture.Git("push", "origin", "test_user-1")
		fixture.CommitFile("b.txt", "b\n", "second change")

		// Advance the base with an unrelated change.
		fixture.Checkout("main", false)
		fixture.CommitFile("other.txt", "other\n", "unrelated change")
		fixture.Git("push", "origin", "main")
		fixture.Checkout("dev", false)

		session := eng.NewRebaseSession("main", false)
		state, err := session.Run(ctx)
		require.NoError(t, err)
		require.Equal(t, engine.RebaseCompleted, state)

		// The stack branch moved with its commit and was pushed.
		require.Contains(t, session.TouchedBranches(), "test_user-1")
		require.Equal(t, fixture.RevParse("HEAD~1"), fixture.RevParse("test_user-1"))
		require.Equal(t, fixture.RevParse("test_user-1"), fixture.RevParse("origin/test_user-1"))

		// The rebased history now contains the new base commit.
		require.Equal(t, fixture.RevParse("main"), fixture.RevParse("HEAD~2"))
	})

	t.Run("conflict suspends the session until resumed", func(t *testing.T) {
		fixture, eng, _ := newTestEngine(t)
		fixture.CommitFile("a.txt", "stack version\n", "stack change")

		fixture.Checkout("main", false)
		fixture.CommitFile("a.txt", "base version\n", "conflicting base change")
		fixture.Checkout("dev", false)

		session := eng.NewRebaseSession("main", false)
		state, err := session.Run(ctx)
		require.Equal(t, engine.RebaseNeedsOperator, state)
		require.ErrorIs(t, err, gherrors.ErrRebaseConflict)

		// Resolve and continue.
		fixture.WriteFile("a.txt", "merged version\n")
		fixture.Git("add", "a.txt")

		state, err = session.Resume(ctx)
		require.NoError(t, err)
		require.Equal(t, engine.RebaseCompleted, state)
		require.Equal(t, fixture.RevParse("main"), fixture.RevParse("HEAD~1"))
	})

	t.Run("resume on a fresh session is an error", func(t *testing.T) {
		_, eng, _ := newTestEngine(t)
		session := eng.NewRebaseSession("main", false)
		_, err := session.Resume(ctx)
		require.Error(t, err)
	})
}
