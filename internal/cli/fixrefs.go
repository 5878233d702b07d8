package cli

import (
	"github.com/spf13/cobra"

	"ghchain.dev/ghchain/internal/runtime"
)

// newFixRefsCmd creates the fix-refs command
func newFixRefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix-refs",
		Short: "Re-attach stranded stack branches after a history rewrite",
		Long: `Match branchless stack commits to stranded stack branches by commit title
and force-move each branch onto its commit. Useful when a rebase ran without
--update-refs and left the branches pointing at the old history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, func(rt *runtime.Context) error {
				stack, err := rt.Engine.BuildStack(ctx, "")
				if err != nil {
					return err
				}
				_, err = rt.Engine.FixRefs(ctx, stack)
				return err
			})
		},
	}

	return cmd
}
