package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cliauth "github.com/employee-lifecycle/portal/internal/cli/auth"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts ...Option) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session with the backend and forget it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), newDeps(opts...), server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Server URL or alias (or set LIFECYCLE_SERVER)")

	return cmd
}

// runLogout tells the backend first, then always drops the stored session.
// A backend failure is reported but does not keep the user logged in.
func runLogout(ctx context.Context, d *deps, serverFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server, err := getSelectedServer(serverFlag)
	if err != nil {
		return err
	}

	cookies, err := d.sessions.LoadSession(server.URL)
	if errors.Is(err, cliauth.ErrNotAuthenticated) {
		fmt.Fprintf(d.out, "Not logged in to %s\n", serverLabel(server))
		return nil
	}
	if err != nil {
		return err
	}

	svc, _, err := d.newAuthService(server, cookies)
	if err == nil {
		err = svc.Logout(ctx)
	}
	if err != nil {
		fmt.Fprintf(d.out, "Warning: backend logout failed: %v\n", err)
	}

	if err := d.sessions.DeleteSession(server.URL); err != nil {
		return err
	}

	fmt.Fprintf(d.out, "✓ Logged out of %s\n", serverLabel(server))
	return nil
}
