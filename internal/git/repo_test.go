package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	gherrors "ghchain.dev/ghchain/internal/errors"
	"ghchain.dev/ghchain/internal/git"
	"ghchain.dev/ghchain/testhelpers"
)

func openFixture(t *testing.T) (*testhelpers.GitRepo, *git.Repo) {
	t.Helper()
	fixture := testhelpers.NewGitRepo(t)
	fixture.Commit("initial commit")
	repo, err := git.Open(fixture.Dir)
	require.NoError(t, err)
	return fixture, repo
}

func TestOpen(t *testing.T) {
	t.Run("opens a repository from a subdirectory", func(t *testing.T) {
		fixture, _ := openFixture(t)

		sub := filepath.Join(fixture.Dir, "nested", "deeper")
		require.NoError(t, os.MkdirAll(sub, 0o755))

		repo, err := git.Open(sub)
		require.NoError(t, err)

		want, _ := filepath.EvalSymlinks(fixture.Dir)
		got, _ := filepath.EvalSymlinks(repo.Root())
		require.Equal(t, want, got)
	})

	t.Run("a plain directory is not a repository", func(t *testing.T) {
		_, err := git.Open(t.TempDir())
		require.ErrorIs(t, err, gherrors.ErrNotARepository)
	})
}

func TestCurrentBranch(t *testing.T) {
	ctx := context.Background()
	fixture, repo := openFixture(t)

	name, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	require.Equal(t, "main", name)

	fixture.Git("checkout", "--detach", "HEAD")
	_, err = repo.CurrentBranch(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "detached")
}

func TestBranchTips(t *testing.T) {
	fixture, repo := openFixture(t)
	sha := fixture.Commit("a change")
	fixture.Git("branch", "one", sha)
	fixture.Git("branch", "two", sha)

	tips, err := repo.BranchTips()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"main", "one", "two"}, tips[sha])
}

func TestCommitsInRange(t *testing.T) {
	ctx := context.Background()
	fixture, repo := openFixture(t)
	fixture.Checkout("dev", true)
	fixture.CommitFile("a.txt", "a\n", "first change")
	fixture.Git("commit", "--allow-empty", "-m", "second change\n\nWith a body.\n\nCloses #3")

	commits, err := repo.CommitsInRange(ctx, "main", "dev")
	require.NoError(t, err)
	require.Len(t, commits, 2)

	require.Equal(t, "first change", commits[0].Title)
	require.Equal(t, "", commits[0].Body)
	require.Equal(t, "first change", commits[0].Message())

	require.Equal(t, "second change", commits[1].Title)
	require.Contains(t, commits[1].Body, "With a body.")
	require.Contains(t, commits[1].Message(), "second change\n\nWith a body.")

	empty, err := repo.CommitsInRange(ctx, "main", "main")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestOwnerRepo(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		url   string
		owner string
		repo  string
	}{
		{"https://github.com/acme/widgets.git", "acme", "widgets"},
		{"https://github.com/acme/widgets", "acme", "widgets"},
		{"git@github.com:acme/widgets.git", "acme", "widgets"},
	}

	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			fixture, repo := openFixture(t)
			fixture.Git("remote", "add", "origin", tc.url)

			owner, name, err := repo.OwnerRepo(ctx)
			require.NoError(t, err)
			require.Equal(t, tc.owner, owner)
			require.Equal(t, tc.repo, name)
		})
	}

	t.Run("unparseable remote is an error", func(t *testing.T) {
		fixture, repo := openFixture(t)
		fixture.Git("remote", "add", "origin", "/some/local/path")

		_, _, err := repo.OwnerRepo(ctx)
		require.Error(t, err)
	})
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	fixture, repo := openFixture(t)
	sha := fixture.Commit("a change")

	require.NoError(t, repo.AddNote(ctx, sha, "PR: none"))
	note, err := repo.ShowNote(ctx, sha)
	require.NoError(t, err)
	require.Equal(t, "PR: none", note)

	// Re-adding replaces instead of failing.
	require.NoError(t, repo.AddNote(ctx, sha, "PR: updated"))
	note, err = repo.ShowNote(ctx, sha)
	require.NoError(t, err)
	require.Equal(t, "PR: updated", note)

	bare := fixture.Commit("unannotated change")
	missing, err := repo.ShowNote(ctx, bare)
	require.NoError(t, err)
	require.Empty(t, missing)
}
