package git

import (
	"context"
	"errors"
	"strings"

	ghchainerrors "ghchain.dev/ghchain/internal/errors"
)

// Push pushes a branch to origin, setting its upstream
func (r *Repo) Push(ctx context.Context, branch string) error {
	_, err := r.runner.Run(ctx, "push", "-u", "origin", branch)
	return err
}

// PushWithLease force-pushes a branch with --force-with-lease so the push is
// rejected if the remote moved since the last fetch. A rejection surfaces as
// errors.ErrStaleRemote, to be retried by the operator after a fetch.
func (r *Repo) PushWithLease(ctx context.Context, branch string) error {
	_, err := r.runner.Run(ctx, "push", "--force-with-lease", "origin", branch)
	if err != nil {
		var cmdErr *ghchainerrors.GitCommandError
		if errors.As(err, &cmdErr) {
			if strings.Contains(cmdErr.Stderr, "stale info") || strings.Contains(cmdErr.Stderr, "[rejected]") {
				return ghchainerrors.ErrStaleRemote
			}
		}
		return err
	}
	return nil
}
