// Package testhelpers provides shared fixtures for ghchain tests: throwaway
// git repositories and an in-memory GitHub client.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// GitRepo is a throwaway git repository rooted in a test temp directory.
type GitRepo struct {
	Dir string
	t   *testing.T
}

// NewGitRepo initializes a fresh repository with a main branch and a test
// user configured, isolated from the global git config.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	dir := t.TempDir()
	repo := &GitRepo{Dir: dir, t: t}

	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", dir, "-b", "main")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v\n%s", err, out)
	}

	repo.Git("config", "user.name", "Test User")
	repo.Git("config", "user.email", "test@example.com")

	return repo
}

// Git runs a git command in the repository and fails the test on error.
// Returns trimmed stdout.
func (r *GitRepo) Git(args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		r.t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, stderr)
	}
	return strings.TrimSpace(string(out))
}

// TryGit runs a git command and returns its error instead of failing the test.
func (r *GitRepo) TryGit(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	return cmd.Run()
}

// WriteFile writes a file relative to the repository root.
func (r *GitRepo) WriteFile(name, content string) {
	r.t.Helper()
	if err := os.WriteFile(r.Dir+"/"+name, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
}

// Commit stages everything and creates a commit, touching a file named after
// the commit count so every commit has content. Returns the commit sha.
func (r *GitRepo) Commit(message string) string {
	r.t.Helper()

	count := r.Git("rev-list", "--all", "--count")
	r.WriteFile(fmt.Sprintf("file_%s.txt", count), message+"\n")
	r.Git("add", "-A")
	r.Git("commit", "-m", message)
	return r.Git("rev-parse", "HEAD")
}

// CommitFile commits a specific file with specific content. Returns the sha.
func (r *GitRepo) CommitFile(name, content, message string) string {
	r.t.Helper()

	r.WriteFile(name, content)
	r.Git("add", "-A")
	r.Git("commit", "-m", message)
	return r.Git("rev-parse", "HEAD")
}

// Checkout switches to a ref, creating the branch when create is set.
func (r *GitRepo) Checkout(ref string, create bool) {
	r.t.Helper()
	if create {
		r.Git("checkout", "-b", ref)
	} else {
		r.Git("checkout", ref)
	}
}

// Head returns the sha of HEAD.
func (r *GitRepo) Head() string {
	r.t.Helper()
	return r.Git("rev-parse", "HEAD")
}

// BranchSHA returns the sha a branch points at.
func (r *GitRepo) BranchSHA(name string) string {
	r.t.Helper()
	return r.Git("rev-parse", name)
}

// RevParse resolves a ref, returning "" when it does not exist.
func (r *GitRepo) RevParse(ref string) string {
	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", ref)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// AddBareRemote creates a bare sibling repository and registers it as origin,
// so push operations have somewhere to go.
func (r *GitRepo) AddBareRemote() string {
	r.t.Helper()

	bare := r.t.TempDir()
	cmd := exec.Command("git", "init", "--bare", bare)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if out, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("git init --bare failed: %v\n%s", err, out)
	}
	r.Git("remote", "add", "origin", bare)
	return bare
}
