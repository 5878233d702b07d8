package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	gherrors "ghchain.dev/ghchain/internal/errors"
	"ghchain.dev/ghchain/internal/git"
)

// fixupStateFile records an in-flight fixup session at the repository root.
// It survives process restarts so fixup-done can pick up where fixup-start
// left off.
const fixupStateFile = ".ghchain_fixup"

type fixupState struct {
	OldBaseSHA string `toml:"old_base_sha"`
	TopBranch  string `toml:"top_branch"`
}

func (e *Engine) fixupStatePath() string {
	return filepath.Join(e.repo.Root(), fixupStateFile)
}

func (e *Engine) loadFixupState() (*fixupState, error) {
	data, err := os.ReadFile(e.fixupStatePath())
	if os.IsNotExist(err) {
		return nil, gherrors.ErrNoFixupState
	}
	if err != nil {
		return nil, err
	}
	var state fixupState
	if err := toml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt fixup state file %s: %w", fixupStateFile, err)
	}
	return &state, nil
}

func (e *Engine) saveFixupState(state *fixupState) error {
	data, err := toml.Marshal(*state)
	if err != nil {
		return err
	}
	return os.WriteFile(e.fixupStatePath(), data, 0o644)
}

func (e *Engine) clearFixupState() {
	if err := os.Remove(e.fixupStatePath()); err != nil && !os.IsNotExist(err) {
		e.log.Warn("Failed to remove fixup state file: %v", err)
	}
}

// FixupStart checks out the commit named by ref so the operator can stage an
// amendment, and records where the stack currently sits so FixupDone can
// replay the commits above it.
func (e *Engine) FixupStart(ctx context.Context, ref string) error {
	if _, err := e.loadFixupState(); err == nil {
		return fmt.Errorf("a fixup is already in progress; finish it with fixup done")
	}

	top, err := e.repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	oldBase, err := e.repo.ResolveSHA(ctx, ref)
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", ref, err)
	}

	// Check out the commit's branch when it has one, so the amend carries the
	// branch along. The replayed range above it is covered by --update-refs,
	// but the amended commit itself is not.
	checkout := oldBase
	if tips, err := e.repo.BranchTips(); err == nil {
		var candidates []string
		for _, name := range tips[oldBase] {
			if name != top {
				candidates = append(candidates, name)
			}
		}
		if len(candidates) == 1 {
			checkout = candidates[0]
		}
	}

	if err := e.repo.Checkout(ctx, checkout); err != nil {
		return err
	}

	if err := e.saveFixupState(&fixupState{OldBaseSHA: oldBase, TopBranch: top}); err != nil {
		return err
	}

	e.log.Info("Checked out %.8s; stage your changes and run fixup done", oldBase)
	return nil
}

// FixupDone amends the checked-out commit with the staged changes and replays
// the commits that were above it, carrying their branches along. With publish
// set, every rewritten branch is force-pushed afterwards.
func (e *Engine) FixupDone(ctx context.Context, publish bool) error {
	state, err := e.loadFixupState()
	if err != nil {
		return err
	}

	staged, err := e.repo.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if staged {
		if err := e.repo.AmendStaged(ctx); err != nil {
			return err
		}
	}

	newBase, err := e.repo.ResolveSHA(ctx, "HEAD")
	if err != nil {
		return err
	}

	if newBase == state.OldBaseSHA {
		e.log.Info("No changes were amended; returning to %s", state.TopBranch)
		if err := e.repo.Checkout(ctx, state.TopBranch); err != nil {
			return err
		}
		e.clearFixupState()
		return nil
	}

	run, err := e.repo.RebaseRange(ctx, newBase, state.OldBaseSHA, state.TopBranch)
	if err != nil {
		return err
	}
	if run.Result != git.RebaseDone {
		// Leave the rebase for the operator; the session is spent either way.
		e.clearFixupState()
		return fmt.Errorf("replaying commits onto the amended %.8s did not complete; resolve the rebase manually:\n%s", newBase, run.Output)
	}

	e.clearFixupState()
	e.log.Info("Amended %.8s and replayed %s on top", newBase, state.TopBranch)

	if publish {
		for _, branch := range run.UpdatedBranches {
			if err := e.repo.PushWithLease(ctx, branch); err != nil {
				return fmt.Errorf("failed to push rewritten branch %s: %w", branch, err)
			}
			e.log.Info("Pushed rewritten branch %s", branch)
		}
	}
	return nil
}
