package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/employee-lifecycle/portal/internal/cli/userconfig"
)

// NewAddServerCmd creates the add-server command
func NewAddServerCmd(opts ...Option) *cobra.Command {
	var selectIt bool

	cmd := &cobra.Command{
		Use:   "add-server <alias> <url>",
		Short: "Register a backend server",
		Example: `  $ lifecycle add-server local http://localhost:8080
  $ lifecycle add-server production https://hr.example.com --select`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddServer(newDeps(opts...).out, args[0], args[1], selectIt)
		},
	}

	cmd.Flags().BoolVar(&selectIt, "select", false, "Also make it the selected server")

	return cmd
}

func runAddServer(out io.Writer, alias, rawURL string, selectIt bool) error {
	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}

	server, err := cfg.AddServer(alias, rawURL)
	if err != nil {
		return err
	}
	if selectIt {
		cfg.SelectedServer = server.URL
	}

	if err := userconfig.Save(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Added server: %s\n", serverLabel(server))
	return nil
}
