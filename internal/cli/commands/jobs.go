package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hireboard-dev/hireboard/internal/cli/client"
)

// NewJobsCmd creates the jobs command group
func NewJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage recruitment requirements",
	}

	cmd.AddCommand(newJobsListCmd())
	cmd.AddCommand(newJobsShowCmd())
	cmd.AddCommand(newJobsCreateCmd())
	cmd.AddCommand(newJobsUploadCmd())
	cmd.AddCommand(newJobsParseCmd())
	cmd.AddCommand(newJobsDeleteCmd())

	return cmd
}

func newJobsListCmd() *cobra.Command {
	var q client.JobQuery

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			listed, err := a.Client.ListJobs(cmd.Context(), q)
			if err != nil {
				return err
			}
			a.Session.SetJobs(listed)
			jobs := a.Session.Jobs()

			if len(jobs) == 0 {
				fmt.Fprintln(a.Out, "No jobs found.")
				fmt.Fprintln(a.Out, "\nUpload one with: hireboard jobs upload <file> --position <name>")
				return nil
			}

			w := newTable(a.Out)
			fmt.Fprintln(w, "ID\tPOSITION\tDEPARTMENT\tLOCATION\tCREATED AT")
			fmt.Fprintln(w, "──\t────────\t──────────\t────────\t──────────")
			for _, job := range jobs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					job.ID,
					job.PositionName,
					orDash(job.Department),
					orDash(job.Location),
					job.CreatedAt.Format("2006-01-02"),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&q.Skip, "skip", 0, "Number of jobs to skip")
	cmd.Flags().IntVar(&q.Limit, "limit", 100, "Maximum number of jobs")
	cmd.Flags().StringVar(&q.PositionName, "position", "", "Filter by position name")
	cmd.Flags().StringVar(&q.Department, "department", "", "Filter by department")

	return withRoute(cmd, "/jobs")
}

func newJobsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a job",
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

			fetched, err := a.Client.GetJob(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.Session.SetCurrentJob(fetched)
			job := a.Session.CurrentJob()
			if job == nil {
				return ErrNotAuthenticated
			}

			w := newTable(a.Out)
			fmt.Fprintf(w, "ID:\t%d\n", job.ID)
			fmt.Fprintf(w, "Position:\t%s\n", job.PositionName)
			fmt.Fprintf(w, "Department:\t%s\n", orDash(job.Department))
			fmt.Fprintf(w, "Location:\t%s\n", orDash(job.Location))
			fmt.Fprintf(w, "Salary:\t%s\n", orDash(job.SalaryRange))
			fmt.Fprintf(w, "Tags:\t%s\n", orDash(strings.Join(job.Tags, ", ")))
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "\nResponsibilities:\n%s\n", job.Responsibilities)
			fmt.Fprintf(a.Out, "\nRequirements:\n%s\n", job.Requirements)
			return nil
		},
	}
	return withRoute(cmd, "/jobs/{id}")
}

func newJobsCreateCmd() *cobra.Command {
	var req client.JobRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a job from flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			job, err := a.Client.CreateJob(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.Session.SetCurrentJob(job)

			fmt.Fprintf(a.Out, "✓ Job %d created: %s\n", job.ID, job.PositionName)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PositionName, "position", "", "Position name")
	cmd.Flags().StringVar(&req.Department, "department", "", "Department")
	cmd.Flags().StringVar(&req.Responsibilities, "responsibilities", "", "Responsibilities")
	cmd.Flags().StringVar(&req.Requirements, "requirements", "", "Requirements")
	cmd.Flags().StringVar(&req.SalaryRange, "salary", "", "Salary range")
	cmd.Flags().StringVar(&req.Location, "location", "", "Location")
	cmd.Flags().StringSliceVar(&req.Tags, "tag", nil, "Tag (repeatable)")

	return withRoute(cmd, "/jobs/upload")
}

func newJobsUploadCmd() *cobra.Command {
	var position, department string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a job description document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "Uploading %s...\n", args[0])

			job, err := a.Client.UploadJobDocument(cmd.Context(), args[0], position, department)
			if err != nil {
				return err
			}
			a.Session.SetCurrentJob(job)

			fmt.Fprintf(a.Out, "✓ Job %d created: %s\n", job.ID, job.PositionName)
			return nil
		},
	}

	cmd.Flags().StringVar(&position, "position", "", "Position name (parsed from the document if empty)")
	cmd.Flags().StringVar(&department, "department", "", "Department")

	return withRoute(cmd, "/jobs/upload")
}

func newJobsParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Preview the fields of a job description document without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := a.Client.ParseJobDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := newTable(a.Out)
			fmt.Fprintf(w, "Position:\t%s\n", orDash(result.PositionName))
			fmt.Fprintf(w, "Department:\t%s\n", orDash(result.Department))
			fmt.Fprintf(w, "Location:\t%s\n", orDash(result.Location))
			fmt.Fprintf(w, "Salary:\t%s\n", orDash(result.SalaryRange))
			fmt.Fprintf(w, "Tags:\t%s\n", orDash(strings.Join(result.Tags, ", ")))
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "\nRequirements:\n%s\n", orDash(result.Requirements))
			fmt.Fprintln(a.Out, "\nSave it with: hireboard jobs upload <file>")
			return nil
		},
	}
	return withRoute(cmd, "/jobs/upload")
}

func newJobsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a job",
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

			if err := a.Client.DeleteJob(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "✓ Job %d deleted\n", id)
			return nil
		},
	}
	return withRoute(cmd, "/jobs/{id}")
}
