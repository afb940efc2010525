package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hireboard-dev/hireboard/internal/cli/app"
	"github.com/hireboard-dev/hireboard/internal/cli/serverselect"
	"github.com/hireboard-dev/hireboard/internal/cli/userconfig"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the recruitment backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			return runLogin(cmd.Context(), a, username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set HIREBOARD_USERNAME, will prompt if not provided)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set HIREBOARD_PASSWORD, will prompt if not provided)")

	return withRoute(cmd, "/login")
}

func runLogin(ctx context.Context, a *app.App, username, password string) error {
	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("HIREBOARD_USERNAME")
	}
	if password == "" {
		password = os.Getenv("HIREBOARD_PASSWORD")
	}

	interactive := term.IsTerminal(int(syscall.Stdin))

	if username == "" {
		if !interactive {
			return fmt.Errorf("username is required in non-interactive mode (use --username flag or HIREBOARD_USERNAME env var)")
		}
		last, _ := userconfig.GetLastUsername()
		prompted, err := serverselect.PromptUsername(last)
		if err != nil {
			return err
		}
		username = prompted
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if !interactive {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or HIREBOARD_PASSWORD env var)")
		}
		fmt.Fprint(a.Out, "Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Fprintln(a.Out) // New line after password input
	}

	fmt.Fprintf(a.Out, "Logging in to %s...\n", a.BaseURL)

	token, err := a.Client.Login(ctx, username, password)
	if err != nil {
		// A rejected login already routes to the login page, no hint needed
		a.Router.PendingRedirect()
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.Session.LoginSucceeded(ctx, token.AccessToken, username); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	if err := userconfig.SetLastUsername(username); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to remember username")
	}

	// The profile fetch runs in the background; wait for it only to print it
	a.Session.Wait()

	fmt.Fprintln(a.Out, "✓ Login successful!")
	if profile := a.Session.Profile(); profile != nil {
		fmt.Fprintf(a.Out, "  User: %s (%s)\n", profile.DisplayName(), profile.Email)
		if profile.IsAdmin {
			fmt.Fprintln(a.Out, "  Role: Admin")
		}
	}

	return nil
}
