// Package engine implements the stack reconciliation core: it rebuilds the
// commit/branch/PR model from repository and hosting state and drives the
// mutating operations (branch creation, PR creation, landing, rebasing).
package engine

import (
	"ghchain.dev/ghchain/internal/config"
	"ghchain.dev/ghchain/internal/git"
	"ghchain.dev/ghchain/internal/github"
	"ghchain.dev/ghchain/internal/output"
)

// Engine reconciles local commits with branches and pull requests
type Engine struct {
	cfg  *config.Config
	repo *git.Repo
	host github.Client
	log  *output.Splog
}

// New creates an engine over a repository and hosting client
func New(cfg *config.Config, repo *git.Repo, host github.Client, log *output.Splog) *Engine {
	if log == nil {
		log = output.NewSplog()
	}
	return &Engine{cfg: cfg, repo: repo, host: host, log: log}
}

// Repo returns the engine's repository handle
func (e *Engine) Repo() *git.Repo {
	return e.repo
}

// Config returns the engine's configuration
func (e *Engine) Config() *config.Config {
	return e.cfg
}
