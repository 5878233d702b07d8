package engine

import (
	"context"
	"fmt"

	gherrors "ghchain.dev/ghchain/internal/errors"
	"ghchain.dev/ghchain/internal/git"
)

// RebaseState reports where a rebase session stands after each step.
type RebaseState int

const (
	// RebaseCompleted means the rebase finished and touched branches were
	// pushed.
	RebaseCompleted RebaseState = iota
	// RebaseNeedsOperator means the rebase stopped on conflicts and the
	// operator must resolve them before calling Resume.
	RebaseNeedsOperator
	// RebaseFailed means the rebase failed outright and was aborted.
	RebaseFailed
)

// RebaseSession drives a rebase of the whole stack onto a new target,
// carrying every stack branch along with --update-refs and force-pushing the
// branches that moved. Conflicts suspend the session; Resume continues it
// after the operator has resolved and staged them.
type RebaseSession struct {
	engine      *Engine
	target      string
	interactive bool

	state   RebaseState
	touched []string
	lastOut string
}

// NewRebaseSession prepares a rebase of the current branch onto target.
func (e *Engine) NewRebaseSession(target string, interactive bool) *RebaseSession {
	return &RebaseSession{engine: e, target: target, interactive: interactive}
}

// State returns the session's state after the last Run or Resume call.
func (s *RebaseSession) State() RebaseState { return s.state }

// TouchedBranches returns the stack branches the rebase has rewritten so far.
func (s *RebaseSession) TouchedBranches() []string { return s.touched }

// Output returns the raw rebase output of the last step, for diagnostics.
func (s *RebaseSession) Output() string { return s.lastOut }

// Run starts the rebase. On RebaseNeedsOperator the working tree is left
// mid-rebase for the operator; on RebaseFailed the rebase has been aborted.
func (s *RebaseSession) Run(ctx context.Context) (RebaseState, error) {
	run, err := s.engine.repo.RebaseOnto(ctx, s.target, s.interactive)
	return s.step(ctx, run, err)
}

// Resume continues a session suspended on conflicts. It is an error to call
// Resume on a session that is not waiting for the operator.
func (s *RebaseSession) Resume(ctx context.Context) (RebaseState, error) {
	if s.state != RebaseNeedsOperator {
		return s.state, fmt.Errorf("rebase session is not waiting on conflict resolution")
	}
	run, err := s.engine.repo.RebaseContinue(ctx)
	return s.step(ctx, run, err)
}

func (s *RebaseSession) step(ctx context.Context, run *git.RebaseRun, err error) (RebaseState, error) {
	if run == nil {
		s.state = RebaseFailed
		return s.state, err
	}
	s.lastOut = run.Output
	s.touched = mergeBranches(s.touched, run.UpdatedBranches)

	switch run.Result {
	case git.RebaseConflict:
		s.state = RebaseNeedsOperator
		s.engine.log.Warn("Rebase stopped on conflicts; resolve them and continue")
		return s.state, gherrors.ErrRebaseConflict

	case git.RebaseFailed:
		s.state = RebaseFailed
		if abortErr := s.engine.repo.RebaseAbort(ctx); abortErr != nil {
			s.engine.log.Debug("rebase abort failed: %v", abortErr)
		}
		if err == nil {
			err = fmt.Errorf("rebase onto %s failed", s.target)
		}
		return s.state, err

	default:
		s.state = RebaseCompleted
		return s.state, s.pushTouched(ctx)
	}
}

// pushTouched force-pushes (with lease) every branch the rebase rewrote, so
// the remote stack matches the rewritten local one.
func (s *RebaseSession) pushTouched(ctx context.Context) error {
	if len(s.touched) == 0 {
		s.engine.log.Info("Rebase finished; no stack branches were moved")
		return nil
	}
	for _, branch := range s.touched {
		if err := s.engine.repo.PushWithLease(ctx, branch); err != nil {
			return fmt.Errorf("failed to push rebased branch %s: %w", branch, err)
		}
		s.engine.log.Info("Pushed rebased branch %s", branch)
	}
	return nil
}

func mergeBranches(have, add []string) []string {
	seen := make(map[string]bool, len(have))
	for _, b := range have {
		seen[b] = true
	}
	for _, b := range add {
		if !seen[b] {
			have = append(have, b)
			seen[b] = true
		}
	}
	return have
}
