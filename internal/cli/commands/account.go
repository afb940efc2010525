package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hireboard-dev/hireboard/internal/cli/app"
	"github.com/hireboard-dev/hireboard/internal/cli/client"
	"github.com/hireboard-dev/hireboard/internal/cli/serverselect"
	"github.com/hireboard-dev/hireboard/internal/cli/userconfig"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if err := a.Session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "✓ Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			return runWhoami(cmd.Context(), a)
		},
	}
	return withRoute(cmd, "/profile")
}

func runWhoami(ctx context.Context, a *app.App) error {
	a.Session.Wait()

	profile := a.Session.Profile()
	if profile == nil {
		// The background fetch failed; try once more and surface the error
		fetched, err := a.Session.FetchProfile(ctx)
		if err != nil {
			return err
		}
		profile = fetched
	}

	role := "Recruiter"
	if profile.IsAdmin {
		role = "Admin"
	}

	w := newTable(a.Out)
	fmt.Fprintf(w, "ID:\t%d\n", profile.ID)
	fmt.Fprintf(w, "Username:\t%s\n", profile.Username)
	fmt.Fprintf(w, "Name:\t%s\n", orDash(profile.FullName))
	fmt.Fprintf(w, "Email:\t%s\n", profile.Email)
	fmt.Fprintf(w, "Role:\t%s\n", role)
	fmt.Fprintf(w, "Backend:\t%s\n", a.BaseURL)
	return w.Flush()
}

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			user, err := a.Client.Register(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Fprintf(a.Out, "✓ Account %s created\n", user.Username)
			fmt.Fprintf(a.Out, "\nLog in with: hireboard login --username %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (at least 6 characters)")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Full name")

	return withRoute(cmd, "/register")
}

// NewServerCmd creates the server command
func NewServerCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "server [url]",
		Short: "Select the backend used by commands",
		Long: `Select the backend used by commands.

If no url is provided, an interactive prompt will be shown.

Examples:
  $ hireboard server                         # Interactive selection
  $ hireboard server https://hr.example.com  # Save a backend
  $ hireboard server --reset                 # Go back to HIREBOARD_API_BASE_URL`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			if reset {
				if err := userconfig.SetAPIBaseURL(""); err != nil {
					return fmt.Errorf("failed to reset backend: %w", err)
				}
				fmt.Fprintln(a.Out, "Backend reset to the environment default")
				return nil
			}

			var selected string
			if len(args) > 0 {
				selected, err = serverselect.Normalize(args[0])
			} else {
				selected, err = serverselect.PromptBaseURL(a.BaseURL)
			}
			if err != nil {
				return err
			}

			if err := userconfig.SetAPIBaseURL(selected); err != nil {
				return fmt.Errorf("failed to save selected backend: %w", err)
			}

			fmt.Fprintf(a.Out, "Selected backend: %s\n", selected)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Forget the saved backend")

	return cmd
}
