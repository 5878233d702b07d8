package cli

import (
	"github.com/spf13/cobra"

	"ghchain.dev/ghchain/internal/runtime"
)

// newRunCmd creates the run command
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [branch|pr-number|.]",
		Short: "Trigger the configured workflows for one stack commit",
		Long: `Trigger the configured workflows against one commit's branch and refresh
the workflow badges in its pull request. The commit can be named by its
branch, its pull request number, a commit sha prefix, or "." for the commit
at HEAD.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			arg := "."
			if len(args) > 0 {
				arg = args[0]
			}
			return withRuntime(ctx, func(rt *runtime.Context) error {
				stack, err := rt.Engine.BuildStack(ctx, "")
				if err != nil {
					return err
				}
				c, err := findCommit(ctx, rt, stack, arg)
				if err != nil {
					return err
				}
				return rt.Engine.RunWorkflows(ctx, c)
			})
		},
	}

	return cmd
}
