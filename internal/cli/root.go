// Package cli wires the ghchain commands together with cobra.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ghchain",
		Short: "ghchain manages a stack of pull requests, one per commit",
		Long: `ghchain keeps one branch and one pull request per commit on your working
branch, so a chain of dependent changes can be reviewed independently and
landed bottom-up.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRebaseCmd())
	rootCmd.AddCommand(newLandCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPublishCmd())
	rootCmd.AddCommand(newFixupCmd())
	rootCmd.AddCommand(newFixRefsCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}

func newVersionCmd(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ghchain version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ghchain %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
