package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"ghchain.dev/ghchain/internal/engine"
	"ghchain.dev/ghchain/internal/runtime"
)

// withRuntime builds the per-invocation context and tears it down afterwards
func withRuntime(ctx context.Context, fn func(*runtime.Context) error) error {
	rt, err := runtime.NewContext(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// confirm prompts the operator with a yes/no question. With prompting
// suppressed it returns the default answer.
func confirm(message string, def bool) bool {
	if !runtime.Interactive() {
		return def
	}
	answer := def
	prompt := &survey.Confirm{Message: message, Default: def}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false
	}
	return answer
}

// findCommit resolves a command argument to a stack commit. Accepted forms:
// "." for the commit at HEAD, a PR number, a branch name, or a commit sha
// prefix.
func findCommit(ctx context.Context, rt *runtime.Context, stack *engine.Stack, arg string) (*engine.Commit, error) {
	if arg == "." || arg == "" {
		sha, err := rt.Repo.ResolveSHA(ctx, "HEAD")
		if err != nil {
			return nil, err
		}
		if c := stack.CommitBySHA(sha); c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("HEAD is not part of the stack")
	}

	if number, err := strconv.Atoi(arg); err == nil {
		for _, c := range stack.Commits {
			if c.PR != nil && c.PR.Number == number {
				return c, nil
			}
		}
		return nil, fmt.Errorf("no stack commit has pull request #%d", number)
	}

	for _, c := range stack.Commits {
		if c.Branch() == arg {
			return c, nil
		}
	}
	for _, c := range stack.Commits {
		if strings.HasPrefix(c.SHA, arg) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%q does not name a stack branch, pull request, or commit", arg)
}
