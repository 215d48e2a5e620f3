package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/employee-lifecycle/portal/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree; options are passed to every subcommand
func NewRootCmd(opts ...commands.Option) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lifecycle",
		Short: "Employee Lifecycle - command line access to the HR backend",
		Long: `Employee Lifecycle CLI - sign in to an Employee Lifecycle backend from the terminal.

Sessions are stored per server in the OS keyring and reused by later commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lifecycle version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(opts...))
	rootCmd.AddCommand(commands.NewLogoutCmd(opts...))
	rootCmd.AddCommand(commands.NewWhoamiCmd(opts...))
	rootCmd.AddCommand(commands.NewSelectServerCmd(opts...))
	rootCmd.AddCommand(commands.NewAddServerCmd(opts...))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
