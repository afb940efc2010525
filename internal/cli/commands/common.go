package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hireboard-dev/hireboard/internal/cli/app"
	"github.com/hireboard-dev/hireboard/internal/cli/router"
)

// RouteAnnotation is the cobra annotation carrying a command's route path.
// "{id}" is filled from the first positional argument.
const RouteAnnotation = "hireboard/route"

var (
	ErrNotAuthenticated = errors.New("not authenticated. Please run 'hireboard login' first")
	ErrAdminRequired    = errors.New("admin access required")
	errNoApp            = errors.New("command run without application context")
)

// withRoute binds cmd to a route of the route table
func withRoute(cmd *cobra.Command, path string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[RouteAnnotation] = path
	return cmd
}

// RoutePath returns the concrete route path of cmd, or "" if it has none
func RoutePath(cmd *cobra.Command, args []string) string {
	path, ok := cmd.Annotations[RouteAnnotation]
	if !ok {
		return ""
	}
	if strings.Contains(path, "{id}") {
		id := "0"
		if len(args) > 0 {
			id = args[0]
		}
		path = strings.ReplaceAll(path, "{id}", id)
	}
	return path
}

// Authorize restores the session and runs the navigation guard for path.
// Routes that need admin wait for the profile fetch started by Restore, so
// the guard sees the profile when the backend answers in time.
func Authorize(ctx context.Context, a *app.App, path string) error {
	a.Session.Restore(ctx)
	if path == "" {
		return nil
	}

	match, err := a.Router.Resolve(path)
	if err != nil {
		return err
	}
	if match.Route.RequiresAdmin {
		a.Session.Wait()
	}

	outcome, _, err := a.Router.Navigate(path)
	if err != nil {
		return err
	}

	switch outcome {
	case router.RedirectLogin:
		return ErrNotAuthenticated
	case router.RedirectHome:
		return ErrAdminRequired
	default:
		return nil
	}
}

func getApp(cmd *cobra.Command) (*app.App, error) {
	a := app.FromContext(cmd.Context())
	if a == nil {
		return nil, errNoApp
	}
	return a, nil
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return uint(id), nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
