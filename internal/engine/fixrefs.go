package engine

import (
	"context"
)

// FixRefs repairs the branch-to-commit mapping after a history rewrite that
// left stack branches pointing at shas no longer in the stack. Each branchless
// non-fixup commit is matched by title to a stranded template branch, and the
// branch is force-moved onto the commit.
//
// Returns the branches that were moved.
func (e *Engine) FixRefs(ctx context.Context, stack *Stack) ([]string, error) {
	names, err := e.repo.BranchNames()
	if err != nil {
		return nil, err
	}

	claimed := make(map[string]bool)
	for _, c := range stack.Commits {
		if c.Branch() != "" {
			claimed[c.Branch()] = true
		}
	}

	// Stranded template branches, keyed by the title of their tip commit.
	stranded := make(map[string]string)
	for _, name := range names {
		if name == stack.DevBranch || claimed[name] {
			continue
		}
		if _, ok := e.cfg.BranchNameID(name); !ok {
			continue
		}
		title, err := e.repo.CommitTitle(ctx, name)
		if err != nil {
			e.log.Debug("cannot read tip of %s: %v", name, err)
			continue
		}
		if _, dup := stranded[title]; dup {
			e.log.Warn("Multiple stranded branches share the title %q; skipping both", title)
			delete(stranded, title)
			continue
		}
		stranded[title] = name
	}

	var moved []string
	for _, c := range stack.Commits {
		if c.IsFixup || c.Branch() != "" {
			continue
		}
		name, ok := stranded[c.Title]
		if !ok {
			continue
		}
		if err := e.repo.ForceBranch(ctx, name, c.SHA); err != nil {
			return moved, err
		}
		c.setBranch(name)
		delete(stranded, c.Title)
		moved = append(moved, name)
		e.log.Info("Moved branch %s onto commit %.8s %s", name, c.SHA, c.Title)
	}

	if len(moved) == 0 {
		e.log.Info("No stranded branches matched; nothing to fix")
	}
	return moved, nil
}
