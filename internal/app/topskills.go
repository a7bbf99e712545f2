package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/output"
	"github.com/blackwell-systems/jobskills/internal/query"
)

var (
	topSkillsRole       string
	topSkillsType       string
	topSkillsTop        int
	topSkillsMinPercent float64

	topSkillsCmd = &cobra.Command{
		Use:   "top-skills",
		Short: "Rank the skills job titles ask for",
		Long: `Rank skills by the share of distinct job titles that list them.

Percentages are relative to the job titles matching the filters, so
"--role 'Data Analyst' --type programming" answers "which languages do data
analyst postings ask for". Skills below --min-percent are dropped and the
remaining top N are listed with the most common skill last.`,
		Example: `  # Top 20 skills across every role
  jobskills top-skills

  # Top 10 cloud skills for data engineers
  jobskills top-skills --role "Data Engineer" --type cloud --top 10`,
		RunE: runTopSkills,
	}
)

func init() {
	topSkillsCmd.Flags().StringVar(&topSkillsRole, "role", "", "only postings with this short job title")
	topSkillsCmd.Flags().StringVar(&topSkillsType, "type", "", "only skills of this type (programming, cloud, ...)")
	topSkillsCmd.Flags().IntVar(&topSkillsTop, "top", query.DefaultTopN, "number of skills to list")
	topSkillsCmd.Flags().Float64Var(&topSkillsMinPercent, "min-percent", query.DefaultMinPercent, "drop skills below this percentage")
}

func runTopSkills(cmd *cobra.Command, args []string) error {
	if topSkillsTop <= 0 {
		return fmt.Errorf("--top must be positive, got %d", topSkillsTop)
	}

	ctx := cmd.Context()
	sess, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	shares, err := sess.svc.TopSkills(ctx, query.TopSkillsParams{
		Role:       optString(topSkillsRole),
		SkillType:  optString(topSkillsType),
		TopN:       topSkillsTop,
		MinPercent: query.Exactly(topSkillsMinPercent),
	})
	if err != nil {
		return fmt.Errorf("failed to rank skills: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(shares) == 0 {
		fmt.Fprintln(out, "No skills match the given filters.")
		return nil
	}
	fmt.Fprint(out, output.RenderSkillTable(shares))
	return nil
}

// optString maps an empty flag value to "any".
func optString(s string) query.Optional[string] {
	if s == "" {
		return query.Any[string]()
	}
	return query.Exactly(s)
}
