package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ghchain.dev/ghchain/internal/runtime"
	"ghchain.dev/ghchain/internal/status"
)

const liveRefreshInterval = 15 * time.Second

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	var (
		live bool
		base string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stack with branch, pull request, review and check state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, func(rt *runtime.Context) error {
				refresh := func(ctx context.Context) (string, error) {
					stack, err := rt.Engine.BuildStack(ctx, base)
					if err != nil {
						return "", err
					}
					return status.Render(stack), nil
				}

				if live && isatty.IsTerminal(os.Stdout.Fd()) {
					return status.Live(ctx, refresh, liveRefreshInterval)
				}

				rendered, err := refresh(ctx)
				if err != nil {
					return err
				}
				fmt.Print(rendered)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Keep the view open and refresh it periodically")
	cmd.Flags().StringVar(&base, "base", "", "Base branch of the stack (defaults to the configured base_branch)")

	return cmd
}
