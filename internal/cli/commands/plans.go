package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hireboard-dev/hireboard/internal/cli/app"
	"github.com/hireboard-dev/hireboard/internal/cli/client"
)

// NewPlansCmd creates the plans command group
func NewPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plans",
		Aliases: []string{"plan"},
		Short:   "Generate and export recruitment plans",
	}

	cmd.AddCommand(newPlansListCmd())
	cmd.AddCommand(newPlansShowCmd())
	cmd.AddCommand(newPlansGenerateCmd())
	cmd.AddCommand(newPlansCreateCmd())
	cmd.AddCommand(newPlansUpdateCmd())
	cmd.AddCommand(newPlansExportCmd())
	cmd.AddCommand(newPlansDeleteCmd())

	return cmd
}

func newPlansListCmd() *cobra.Command {
	var p client.ListParams

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			listed, err := a.Client.ListPlans(cmd.Context(), p)
			if err != nil {
				return err
			}
			a.Session.SetPlans(listed)
			plans := a.Session.Plans()

			if len(plans) == 0 {
				fmt.Fprintln(a.Out, "No plans found.")
				fmt.Fprintln(a.Out, "\nGenerate one with: hireboard plans generate --job <id>")
				return nil
			}

			w := newTable(a.Out)
			fmt.Fprintln(w, "ID\tTITLE\tJOB\tCANDIDATES\tCREATED AT")
			fmt.Fprintln(w, "──\t─────\t───\t──────────\t──────────")
			for _, plan := range plans {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n",
					plan.ID,
					truncate(plan.Title, 40),
					plan.JobID,
					len(plan.CandidateIDs),
					plan.CreatedAt.Format("2006-01-02"),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&p.Skip, "skip", 0, "Number of plans to skip")
	cmd.Flags().IntVar(&p.Limit, "limit", 100, "Maximum number of plans")

	return withRoute(cmd, "/plans")
}

func newPlansShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			plan, err := a.Client.GetPlan(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.Session.SetCurrentPlan(plan)

			return printCurrentPlan(a)
		},
	}
	return withRoute(cmd, "/plans/{id}")
}

func newPlansGenerateCmd() *cobra.Command {
	var req client.GeneratePlanRequest

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a plan for a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "Generating plan for job %d...\n", req.JobID)

			plan, err := a.Client.GeneratePlan(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.Session.SetCurrentPlan(plan)

			fmt.Fprintf(a.Out, "✓ Plan %d generated: %s\n", plan.ID, plan.Title)
			return nil
		},
	}

	cmd.Flags().UintVar(&req.JobID, "job", 0, "Job id")
	cmd.Flags().StringVar(&req.Title, "title", "", "Plan title")
	cmd.Flags().UintSliceVar(&req.CandidateIDs, "candidate", nil, "Resume id to include (repeatable)")

	return withRoute(cmd, "/plans/generate")
}

func newPlansCreateCmd() *cobra.Command {
	var req client.PlanRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a plan from flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			plan, err := a.Client.CreatePlan(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.Session.SetCurrentPlan(plan)

			fmt.Fprintf(a.Out, "✓ Plan %d created: %s\n", plan.ID, plan.Title)
			return nil
		},
	}

	planFlags(cmd, &req)

	return withRoute(cmd, "/plans/generate")
}

func newPlansUpdateCmd() *cobra.Command {
	var req client.PlanRequest

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			plan, err := a.Client.UpdatePlan(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			a.Session.SetCurrentPlan(plan)

			fmt.Fprintf(a.Out, "✓ Plan %d updated\n", plan.ID)
			return printCurrentPlan(a)
		},
	}

	planFlags(cmd, &req)

	return withRoute(cmd, "/plans/{id}")
}

func planFlags(cmd *cobra.Command, req *client.PlanRequest) {
	cmd.Flags().UintVar(&req.JobID, "job", 0, "Job id")
	cmd.Flags().StringVar(&req.Title, "title", "", "Plan title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&req.Strategy, "strategy", "", "Hiring strategy")
	cmd.Flags().UintSliceVar(&req.CandidateIDs, "candidate", nil, "Resume id to include (repeatable)")
}

// printCurrentPlan shows the plan the session last recorded
func printCurrentPlan(a *app.App) error {
	plan := a.Session.CurrentPlan()
	if plan == nil {
		return ErrNotAuthenticated
	}

	fmt.Fprintf(a.Out, "%s (job %d)\n", plan.Title, plan.JobID)
	if plan.Description != "" {
		fmt.Fprintf(a.Out, "\n%s\n", plan.Description)
	}
	if plan.Strategy != "" {
		fmt.Fprintf(a.Out, "\nStrategy:\n%s\n", plan.Strategy)
	}
	return nil
}

func newPlansExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a plan document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("plan-%d.%s", id, format)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}

			n, err := a.Client.ExportPlan(cmd.Context(), id, format, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(output)
				return err
			}

			fmt.Fprintf(a.Out, "✓ Plan %d exported to %s (%d bytes)\n", id, output, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "pdf", "Export format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default plan-<id>.<format>)")

	return withRoute(cmd, "/plans/{id}")
}

func newPlansDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a plan",
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

			if err := a.Client.DeletePlan(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "✓ Plan %d deleted\n", id)
			return nil
		},
	}
	return withRoute(cmd, "/plans/{id}")
}
