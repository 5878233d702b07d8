package cli

import (
	"github.com/spf13/cobra"

	"ghchain.dev/ghchain/internal/runtime"
)

// newFixupCmd creates the fixup command group
func newFixupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixup",
		Short: "Amend a commit in the middle of the stack",
		Long: `Amend a commit in the middle of the stack without hand-driving a rebase.
fixup start checks out the commit; stage your changes, then fixup done amends
them in and replays the commits above, carrying their branches along.`,
	}

	cmd.AddCommand(newFixupStartCmd())
	cmd.AddCommand(newFixupDoneCmd())

	return cmd
}

func newFixupStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <ref>",
		Short: "Check out the commit to amend and remember where the stack sits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, func(rt *runtime.Context) error {
				return rt.Engine.FixupStart(ctx, args[0])
			})
		},
	}
}

func newFixupDoneCmd() *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "done",
		Short: "Amend the staged changes in and replay the commits above",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, func(rt *runtime.Context) error {
				return rt.Engine.FixupDone(ctx, publish)
			})
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "Force-push the rewritten branches afterwards")

	return cmd
}
