package cli

import (
	"github.com/spf13/cobra"

	"ghchain.dev/ghchain/internal/engine"
	"ghchain.dev/ghchain/internal/runtime"
)

// newProcessCmd creates the process command
func newProcessCmd() *cobra.Command {
	var (
		createPRs bool
		draft     bool
		withTests bool
		base      string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Create branches and pull requests for every commit in the stack",
		Long: `Walk the commits between the base branch and the current branch, oldest
first, and bring each one up to date: a missing branch is created and pushed,
a missing pull request is opened against the previous commit's branch, and
the stack list in every open pull request is refreshed.

Commits that already have a branch and pull request are left alone, so
process can be re-run at any time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, func(rt *runtime.Context) error {
				stack, err := rt.Engine.BuildStack(ctx, base)
				if err != nil {
					return err
				}

				opts := engine.ProcessOptions{
					CreatePR:  createPRs,
					Draft:     draft,
					WithTests: withTests,
				}
				return rt.Engine.ProcessStack(ctx, stack, opts, func() bool {
					return confirm("Continue with the next commit?", true)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&createPRs, "create-pr", true, "Open a pull request for each commit that has none")
	cmd.Flags().BoolVar(&draft, "draft", false, "Open new pull requests as drafts")
	cmd.Flags().BoolVar(&withTests, "with-tests", false, "Trigger the configured workflows for each processed commit")
	cmd.Flags().StringVar(&base, "base", "", "Base branch of the stack (defaults to the configured base_branch)")

	return cmd
}
