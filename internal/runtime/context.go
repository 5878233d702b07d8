// Package runtime provides the per-invocation context holding the
// configuration, repository handle, hosting client and logger, so commands
// do not thread four parameters everywhere.
package runtime

import (
	"context"
	"fmt"
	"os"

	"ghchain.dev/ghchain/internal/config"
	"ghchain.dev/ghchain/internal/engine"
	"ghchain.dev/ghchain/internal/git"
	"ghchain.dev/ghchain/internal/github"
	"ghchain.dev/ghchain/internal/output"
)

// Context provides access to the engine and its collaborators for commands
type Context struct {
	Config *config.Config
	Repo   *git.Repo
	Host   github.Client
	Engine *engine.Engine
	Splog  *output.Splog
}

// NewContext opens the repository enclosing the working directory, loads its
// configuration, and builds the hosting client and engine.
func NewContext(ctx context.Context) (*Context, error) {
	splog, err := output.NewSplogWithFile(output.LogFilePath())
	if err != nil {
		// Fall back to console-only logging.
		splog = output.NewSplog()
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(wd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(repo.Root())
	if err != nil {
		return nil, err
	}

	owner, name, err := repo.OwnerRepo(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot determine the GitHub repository: %w", err)
	}

	host, err := github.NewRealClient(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	return &Context{
		Config: cfg,
		Repo:   repo,
		Host:   host,
		Engine: engine.New(cfg, repo, host, splog),
		Splog:  splog,
	}, nil
}

// Close flushes and closes the context's log sinks
func (c *Context) Close() {
	if c.Splog != nil {
		c.Splog.Close()
	}
}

// Interactive reports whether the process may prompt the operator.
// GHCHAIN_NO_INTERACTIVE suppresses all prompts for scripting and tests.
func Interactive() bool {
	return os.Getenv("GHCHAIN_NO_INTERACTIVE") == ""
}
