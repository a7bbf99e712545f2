package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/output"
	"github.com/blackwell-systems/jobskills/internal/query"
)

var (
	demandRole     string
	demandSchedule string
	demandSkills   int

	demandCmd = &cobra.Command{
		Use:   "demand",
		Short: "Show daily demand for the most requested skills",
		Long: `Show, per posting day, how many distinct job titles asked for each of the
most requested skills among the postings matching the filters.`,
		Example: `  # Top 5 skills over time for full-time data scientists
  jobskills demand --role "Data Scientist" --schedule Full-time`,
		RunE: runDemand,
	}
)

func init() {
	demandCmd.Flags().StringVar(&demandRole, "role", "", "only postings with this short job title")
	demandCmd.Flags().StringVar(&demandSchedule, "schedule", "", "only postings with this schedule type")
	demandCmd.Flags().IntVar(&demandSkills, "skills", query.DefaultTrendSkills, "number of skills to track")
}

func runDemand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	points, err := sess.svc.DemandTrend(ctx, query.DemandParams{
		Role:         optString(demandRole),
		ScheduleType: optString(demandSchedule),
		TopSkills:    demandSkills,
	})
	if err != nil {
		return fmt.Errorf("failed to load demand trend: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(points) == 0 {
		fmt.Fprintln(out, "No postings match the given filters.")
		return nil
	}
	fmt.Fprint(out, output.RenderTrendTable(points))
	return nil
}
