package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hireboard-dev/hireboard/internal/cli/client"
	"github.com/hireboard-dev/hireboard/internal/models"
)

// NewMatchesCmd creates the matches command group
func NewMatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "matches",
		Aliases: []string{"match"},
		Short:   "Score resumes against jobs",
	}

	cmd.AddCommand(newMatchesListCmd())
	cmd.AddCommand(newMatchesRunCmd())
	cmd.AddCommand(newMatchesBestCmd())

	return cmd
}

func printMatches(out io.Writer, matches []models.Match) error {
	if len(matches) == 0 {
		fmt.Fprintln(out, "No matches found.")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tJOB\tRESUME\tSCORE\tEXPLANATION")
	fmt.Fprintln(w, "──\t───\t──────\t─────\t───────────")
	for _, m := range matches {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.2f\t%s\n",
			m.ID,
			m.JobID,
			m.ResumeID,
			m.MatchScore,
			orDash(truncate(m.MatchExplanation, 60)),
		)
	}
	return w.Flush()
}

func newMatchesListCmd() *cobra.Command {
	var q client.MatchQuery

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			matches, err := a.Client.ListMatches(cmd.Context(), q)
			if err != nil {
				return err
			}
			a.Session.SetMatches(matches)

			return printMatches(a.Out, a.Session.Matches())
		},
	}

	cmd.Flags().UintVar(&q.JobID, "job", 0, "Filter by job id")
	cmd.Flags().UintVar(&q.ResumeID, "resume", 0, "Filter by resume id")
	cmd.Flags().Float64Var(&q.MinScore, "min-score", 0, "Minimum score")
	cmd.Flags().IntVar(&q.Limit, "limit", 100, "Maximum number of matches")

	return withRoute(cmd, "/matches")
}

func newMatchesRunCmd() *cobra.Command {
	var jobID uint
	var resumeIDs []uint

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score one or more resumes against a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			if len(resumeIDs) == 1 {
				match, err := a.Client.CreateMatch(cmd.Context(), client.CreateMatchRequest{JobID: jobID, ResumeID: resumeIDs[0]})
				if err != nil {
					return err
				}
				a.Session.SetCurrentMatch(match)
				current := a.Session.CurrentMatch()
				if current == nil {
					return ErrNotAuthenticated
				}
				return printMatches(a.Out, []models.Match{*current})
			}

			matches, err := a.Client.BatchCreateMatches(cmd.Context(), jobID, resumeIDs)
			if err != nil {
				return err
			}
			a.Session.SetMatches(matches)
			return printMatches(a.Out, a.Session.Matches())
		},
	}

	cmd.Flags().UintVar(&jobID, "job", 0, "Job id")
	cmd.Flags().UintSliceVar(&resumeIDs, "resume", nil, "Resume id (repeatable)")

	return withRoute(cmd, "/matches")
}

func newMatchesBestCmd() *cobra.Command {
	var jobID, resumeID uint
	var limit int

	cmd := &cobra.Command{
		Use:   "best",
		Short: "Show the best matches for a job or a resume",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			var matches []models.Match
			switch {
			case jobID != 0 && resumeID != 0:
				return fmt.Errorf("use either --job or --resume, not both")
			case jobID != 0:
				matches, err = a.Client.BestMatchesForJob(cmd.Context(), jobID, limit)
			case resumeID != 0:
				matches, err = a.Client.BestMatchesForResume(cmd.Context(), resumeID, limit)
			default:
				return fmt.Errorf("--job or --resume is required")
			}
			if err != nil {
				return err
			}
			a.Session.SetMatches(matches)

			return printMatches(a.Out, a.Session.Matches())
		},
	}

	cmd.Flags().UintVar(&jobID, "job", 0, "Job id")
	cmd.Flags().UintVar(&resumeID, "resume", 0, "Resume id")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of matches")

	return withRoute(cmd, "/matches/best")
}
