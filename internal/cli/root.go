package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hireboard-dev/hireboard/internal/cli/apierror"
	"github.com/hireboard-dev/hireboard/internal/cli/app"
	"github.com/hireboard-dev/hireboard/internal/cli/commands"
	"github.com/hireboard-dev/hireboard/internal/cli/serverselect"
	"github.com/hireboard-dev/hireboard/internal/config"
	"github.com/hireboard-dev/hireboard/internal/logger"
)

var version = "dev" // Will be set during build

// Root is the command tree plus the application built for the running
// command
type Root struct {
	Cmd *cobra.Command

	app     *app.App
	apiURL  string
	appOpts []app.Option
	errOut  io.Writer
}

// NewRoot builds the command tree. opts are passed to app.New.
func NewRoot(opts ...app.Option) *Root {
	r := &Root{appOpts: opts, errOut: os.Stderr}

	r.Cmd = &cobra.Command{
		Use:   "hireboard",
		Short: "hireboard - recruitment backend client",
		Long: `hireboard CLI - Manage jobs, resumes, matches and recruitment plans.

Every command runs against the backend selected with 'hireboard server' or
HIREBOARD_API_BASE_URL, using the credential stored by 'hireboard login'.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.preRun,
	}

	r.Cmd.PersistentFlags().StringVar(&r.apiURL, "api-url", "", "Backend URL (overrides the saved backend and HIREBOARD_API_BASE_URL)")

	// Add version command
	r.Cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hireboard version %s\n", version)
		},
	})

	// Add all subcommands
	r.Cmd.AddCommand(commands.NewLoginCmd())
	r.Cmd.AddCommand(commands.NewLogoutCmd())
	r.Cmd.AddCommand(commands.NewWhoamiCmd())
	r.Cmd.AddCommand(commands.NewRegisterCmd())
	r.Cmd.AddCommand(commands.NewServerCmd())
	r.Cmd.AddCommand(commands.NewJobsCmd())
	r.Cmd.AddCommand(commands.NewResumesCmd())
	r.Cmd.AddCommand(commands.NewMatchesCmd())
	r.Cmd.AddCommand(commands.NewPlansCmd())
	r.Cmd.AddCommand(commands.NewUsersCmd())

	return r
}

func (r *Root) preRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	baseURL, err := serverselect.ResolveBaseURL(r.apiURL, cfg.API.BaseURL)
	if err != nil {
		return err
	}

	opts := append([]app.Option{app.WithLogger(log)}, r.appOpts...)
	a, err := app.New(cfg, baseURL, opts...)
	if err != nil {
		return err
	}
	r.app = a
	r.errOut = a.Err

	cmd.SetContext(app.NewContext(cmd.Context(), a))

	return commands.Authorize(cmd.Context(), a, commands.RoutePath(cmd, args))
}

// Execute runs the command tree and reports the error, if any. Failures of
// backend calls were already shown by the notifier.
func (r *Root) Execute() error {
	err := r.Cmd.Execute()

	if r.app != nil {
		r.app.Close()
		if route, pending := r.app.Router.PendingRedirect(); pending {
			event := r.app.Logger.Debug().Str("redirect", route.Path)
			if current := r.app.Router.Current(); current != nil {
				event = event.Str("route", current.Route.Name)
			}
			event.Msg("Session ended during command")
			fmt.Fprintln(r.errOut, "Session expired. Please run 'hireboard login' again.")
		}
	}

	if err != nil {
		if kind := apierror.KindOf(err); kind != "" {
			if r.app != nil {
				r.app.Logger.Debug().Str("kind", string(kind)).Msg("Command failed")
			}
			return err
		}
		fmt.Fprintf(r.errOut, "Error: %v\n", err)
		return err
	}
	return nil
}

// Execute runs the CLI with the default wiring
func Execute() error {
	return NewRoot().Execute()
}
