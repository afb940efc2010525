package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hireboard-dev/hireboard/internal/cli/client"
	"github.com/hireboard-dev/hireboard/internal/models"
)

// NewResumesCmd creates the resumes command group
func NewResumesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resumes",
		Aliases: []string{"resume"},
		Short:   "Manage candidate resumes",
	}

	cmd.AddCommand(newResumesListCmd())
	cmd.AddCommand(newResumesShowCmd())
	cmd.AddCommand(newResumesUploadCmd())
	cmd.AddCommand(newResumesSearchCmd())
	cmd.AddCommand(newResumesDeleteCmd())

	return cmd
}

func printResumes(out io.Writer, resumes []models.Resume) error {
	if len(resumes) == 0 {
		fmt.Fprintln(out, "No resumes found.")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tCANDIDATE\tTYPE\tTAGS\tUPLOADED AT")
	fmt.Fprintln(w, "──\t─────────\t────\t────\t───────────")
	for _, r := range resumes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.ID,
			orDash(r.CandidateName),
			orDash(r.FileType),
			orDash(truncate(tagNames(r.Tags), 40)),
			r.CreatedAt.Format("2006-01-02"),
		)
	}
	return w.Flush()
}

func tagNames(tags []models.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func newResumesListCmd() *cobra.Command {
	var p client.ListParams

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List resumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			resumes, err := a.Client.ListResumes(cmd.Context(), p)
			if err != nil {
				return err
			}
			a.Session.SetResumes(resumes)

			return printResumes(a.Out, a.Session.Resumes())
		},
	}

	cmd.Flags().IntVar(&p.Skip, "skip", 0, "Number of resumes to skip")
	cmd.Flags().IntVar(&p.Limit, "limit", 100, "Maximum number of resumes")

	return withRoute(cmd, "/resumes")
}

func newResumesShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a resume and its talent portrait",
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

			fetched, err := a.Client.GetResume(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.Session.SetCurrentResume(fetched)
			resume := a.Session.CurrentResume()
			if resume == nil {
				return ErrNotAuthenticated
			}

			w := newTable(a.Out)
			fmt.Fprintf(w, "ID:\t%d\n", resume.ID)
			fmt.Fprintf(w, "Candidate:\t%s\n", orDash(resume.CandidateName))
			fmt.Fprintf(w, "File:\t%s (%s)\n", orDash(resume.FileURL), orDash(resume.FileType))
			fmt.Fprintf(w, "Tags:\t%s\n", orDash(tagNames(resume.Tags)))
			if err := w.Flush(); err != nil {
				return err
			}

			if resume.TalentPortrait != "" {
				fmt.Fprintf(a.Out, "\nTalent portrait:\n%s\n", resume.TalentPortrait)
			}
			return nil
		},
	}
	return withRoute(cmd, "/resumes/{id}")
}

func newResumesUploadCmd() *cobra.Command {
	var candidate string

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more resume documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				resume, err := a.Client.UploadResume(cmd.Context(), args[0], candidate)
				if err != nil {
					return err
				}
				a.Session.SetCurrentResume(resume)
				fmt.Fprintf(a.Out, "✓ Resume %d uploaded: %s\n", resume.ID, orDash(resume.CandidateName))
				return nil
			}

			if candidate != "" {
				return fmt.Errorf("--candidate applies to a single file only")
			}

			resumes, err := a.Client.BatchUploadResumes(cmd.Context(), args)
			if err != nil {
				return err
			}
			a.Session.SetResumes(resumes)
			fmt.Fprintf(a.Out, "✓ %d resumes uploaded\n", len(resumes))
			return printResumes(a.Out, a.Session.Resumes())
		},
	}

	cmd.Flags().StringVar(&candidate, "candidate", "", "Candidate name (parsed from the document if empty)")

	return withRoute(cmd, "/resumes/upload")
}

func newResumesSearchCmd() *cobra.Command {
	var s client.ResumeSearch

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search resumes by keyword and tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				s.Keyword = args[0]
			}
			if s.Keyword == "" && len(s.Tags) == 0 {
				return fmt.Errorf("a keyword or at least one --tag is required")
			}

			resumes, err := a.Client.SearchResumes(cmd.Context(), s)
			if err != nil {
				return err
			}
			a.Session.SetResumes(resumes)

			return printResumes(a.Out, a.Session.Resumes())
		},
	}

	cmd.Flags().StringSliceVar(&s.Tags, "tag", nil, "Tag to require (repeatable)")
	cmd.Flags().IntVar(&s.Limit, "limit", 100, "Maximum number of resumes")

	return withRoute(cmd, "/resumes/search")
}

func newResumesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a resume",
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

			if err := a.Client.DeleteResume(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "✓ Resume %d deleted\n", id)
			return nil
		},
	}
	return withRoute(cmd, "/resumes/{id}")
}
