package engine

import (
	"context"
	"fmt"
)

// Publish force-pushes (with lease) every stack branch whose local tip no
// longer matches its remote counterpart. Branches already in sync are
// skipped.
//
// Returns the branches that were pushed.
func (e *Engine) Publish(ctx context.Context, stack *Stack) ([]string, error) {
	var pushed []string
	for _, c := range stack.Commits {
		branch := c.Branch()
		if branch == "" {
			continue
		}

		inSync, local, remote, err := e.repo.LocalMatchesRemote(ctx, branch)
		if err != nil {
			return pushed, err
		}
		if inSync {
			e.log.Debug("branch %s already matches the remote", branch)
			continue
		}

		if remote == "" {
			e.log.Debug("branch %s has no remote counterpart yet", branch)
		} else {
			e.log.Debug("branch %s: local %.8s, remote %.8s", branch, local, remote)
		}
		if err := e.repo.PushWithLease(ctx, branch); err != nil {
			return pushed, fmt.Errorf("failed to push %s: %w", branch, err)
		}
		pushed = append(pushed, branch)
		e.log.Info("Pushed %s", branch)
	}

	if len(pushed) == 0 {
		e.log.Info("All stack branches match their remotes; nothing to publish")
	}
	return pushed, nil
}
