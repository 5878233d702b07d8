package git

import "context"

// HasStagedChanges reports whether the index differs from HEAD
func (r *Repo) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := r.runner.Run(ctx, "diff", "--cached", "--quiet")
	if err != nil {
		return true, nil
	}
	return false, nil
}

// AmendStaged amends the staged changes into the current HEAD commit,
// keeping its message
func (r *Repo) AmendStaged(ctx context.Context) error {
	_, err := r.runner.Run(ctx, "commit", "--amend", "--no-edit")
	return err
}
