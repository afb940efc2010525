package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hireboard-dev/hireboard/internal/cli/client"
)

// NewUsersCmd creates the admin-only users command group
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (admin only)",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersDeleteCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			users, err := a.Client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			w := newTable(a.Out)
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tADMIN\tACTIVE")
			fmt.Fprintln(w, "──\t────────\t─────\t─────\t──────")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\n", u.ID, u.Username, u.Email, u.IsAdmin, u.IsActive)
			}
			return w.Flush()
		},
	}
	return withRoute(cmd, "/admin/users")
}

func newUsersCreateCmd() *cobra.Command {
	var req client.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			user, err := a.Client.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "✓ Account %d created: %s\n", user.ID, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Full name")
	cmd.Flags().BoolVar(&req.IsAdmin, "admin", false, "Grant admin rights")

	return withRoute(cmd, "/admin/users")
}

func newUsersDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := a.Client.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "✓ Account %d deleted\n", id)
			return nil
		},
	}
	return withRoute(cmd, "/admin/users/{id}")
}
