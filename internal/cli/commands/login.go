package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/employee-lifecycle/portal/internal/client"
	"github.com/employee-lifecycle/portal/internal/models"
)

const (
	EnvEmail    = "LIFECYCLE_EMAIL"
	EnvPassword = "LIFECYCLE_PASSWORD"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts ...Option) *cobra.Command {
	var email, password, server string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with an Employee Lifecycle backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), newDeps(opts...), server, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set "+EnvEmail+")")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set "+EnvPassword+", will prompt if not provided)")
	cmd.Flags().StringVar(&server, "server", "", "Server URL or alias (or set LIFECYCLE_SERVER)")

	return cmd
}

func runLogin(ctx context.Context, d *deps, serverFlag, email, password string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv(EnvEmail)
	}
	if password == "" {
		password = os.Getenv(EnvPassword)
	}

	server, err := getSelectedServer(serverFlag)
	if err != nil {
		return err
	}

	if email == "" {
		if !d.prompter.Interactive() {
			return fmt.Errorf("email is required (use --email flag or %s env var)", EnvEmail)
		}
		if email, err = d.prompter.Email(); err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	if password == "" {
		if !d.prompter.Interactive() {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or %s env var)", EnvPassword)
		}
		if password, err = d.prompter.Password(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	svc, apiClient, err := d.newAuthService(server, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "Logging in to %s...\n", serverLabel(server))

	user, err := svc.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("%s: %w", client.ErrorMessage(err, "Login failed. Please try again."), err)
	}

	if err := d.sessions.SaveSession(server.URL, apiClient.Cookies()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintln(d.out, "✓ Login successful!")
	fmt.Fprintf(d.out, "  User: %s (%s)\n", user.FullName(), user.Email)
	fmt.Fprintf(d.out, "  Role: %s\n", user.Role)

	return nil
}
