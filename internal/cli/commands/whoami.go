package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/employee-lifecycle/portal/internal/client"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts ...Option) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user of the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), newDeps(opts...), server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Server URL or alias (or set LIFECYCLE_SERVER)")

	return cmd
}

// runWhoami restores the stored session and asks the backend who it belongs to
func runWhoami(ctx context.Context, d *deps, serverFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server, err := getSelectedServer(serverFlag)
	if err != nil {
		return err
	}

	cookies, err := d.sessions.LoadSession(server.URL)
	if err != nil {
		return err
	}

	svc, _, err := d.newAuthService(server, cookies)
	if err != nil {
		return err
	}

	user, err := svc.GetMe(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		_ = d.sessions.DeleteSession(server.URL)
		return fmt.Errorf("session expired. Please run 'lifecycle login' again")
	}
	if err != nil {
		return fmt.Errorf("failed to fetch current user: %w", err)
	}

	fmt.Fprintf(d.out, "%s (%s)\n", user.FullName(), user.Email)
	fmt.Fprintf(d.out, "Role: %s\n", user.Role)
	fmt.Fprintf(d.out, "Server: %s\n", serverLabel(server))
	return nil
}
