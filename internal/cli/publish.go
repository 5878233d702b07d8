package cli

import (
	"github.com/spf13/cobra"

	"ghchain.dev/ghchain/internal/runtime"
)

// newPublishCmd creates the publish command
func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Force-push stack branches whose local tips moved",
		Long: `Compare every stack branch with its remote counterpart and force-push
(with lease) the ones that moved, typically after a rebase or fixup rewrote
history. Branches already in sync are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, func(rt *runtime.Context) error {
				stack, err := rt.Engine.BuildStack(ctx, "")
				if err != nil {
					return err
				}
				_, err = rt.Engine.Publish(ctx, stack)
				return err
			})
		},
	}

	return cmd
}
