package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/output"
	"github.com/blackwell-systems/jobskills/internal/query"
)

var introCmd = &cobra.Command{
	Use:   "intro",
	Short: "Overview of the dataset",
	Long: `Print the headline numbers: total postings and average salary, the most
posted roles, how skill demand splits across skill types and the top countries.`,
	Example: `  jobskills intro`,
	RunE:    runIntro,
}

func runIntro(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	stats, err := sess.svc.Intro(ctx)
	if err != nil {
		return fmt.Errorf("failed to load overview: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), output.RenderIntro(
		stats,
		query.SkillTypeShares(stats.SkillTypes),
		query.TopCountries(stats.Countries, 10),
	))
	return nil
}
