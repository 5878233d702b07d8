package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ghchain.dev/ghchain/internal/engine"
	"ghchain.dev/ghchain/internal/runtime"
)

// newLandCmd creates the land command
func newLandCmd() *cobra.Command {
	var deleteBranch bool

	cmd := &cobra.Command{
		Use:   "land <branch>",
		Short: "Fast-forward the base branch to a stack branch and push it",
		Long: `Fast-forward the base branch to the named stack branch and push it. The
branch must already contain the base branch's tip; land refuses to rewrite
published history. A local branch that has fallen behind its remote
counterpart is only landed after confirming a fast-forward to the remote tip.

After landing, issues the pull request closes are closed and pull requests
based on the landed branch are retargeted onto the base branch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			branch := args[0]
			return withRuntime(ctx, func(rt *runtime.Context) error {
				stack, err := rt.Engine.BuildStack(ctx, "")
				if err != nil {
					return err
				}

				opts := engine.LandOptions{
					DeleteBranch: deleteBranch || rt.Config.DeleteBranchAfterLand,
					ConfirmFastForward: func(base, branch string) bool {
						return confirm(fmt.Sprintf("Fast-forward %s to %s and push?", base, branch), true)
					},
					ConfirmSyncToRemote: func(branch, remoteSHA string) bool {
						return confirm(fmt.Sprintf("Local %s is not at the remote tip %.8s; fast-forward it before landing?", branch, remoteSHA), false)
					},
				}
				return rt.Engine.Land(ctx, stack, branch, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&deleteBranch, "delete-branch", false, "Delete the landed branch locally and on the remote")

	return cmd
}
