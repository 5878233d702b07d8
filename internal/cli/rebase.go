package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ghchain.dev/ghchain/internal/engine"
	"ghchain.dev/ghchain/internal/runtime"
)

// newRebaseCmd creates the rebase command
func newRebaseCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "rebase <target>",
		Short: "Rebase the stack onto a new target, carrying every stack branch along",
		Long: `Rebase the current branch onto the target with --update-refs, so every
stack branch pointing into the rebased range moves with its commit. Rewritten
branches are force-pushed (with lease) when the rebase completes.

On conflicts the rebase pauses; resolve and stage them, then let ghchain
continue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, func(rt *runtime.Context) error {
				session := rt.Engine.NewRebaseSession(args[0], interactive)

				state, err := session.Run(ctx)
				for state == engine.RebaseNeedsOperator {
					if !runtime.Interactive() ||
						!confirm("Conflicts need resolving. Continue the rebase once they are staged?", true) {
						return fmt.Errorf("rebase left in progress; finish it with git rebase --continue or --abort")
					}
					state, err = session.Resume(ctx)
				}

				if state == engine.RebaseFailed {
					if out := session.Output(); out != "" {
						rt.Splog.Error("Rebase failed:\n%s", out)
					}
					return err
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the rebase interactively")

	return cmd
}
