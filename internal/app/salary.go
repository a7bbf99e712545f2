package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/output"
	"github.com/blackwell-systems/jobskills/internal/query"
)

var (
	salaryMonth int
	salaryTop   int

	salaryCmd = &cobra.Command{
		Use:   "salary",
		Short: "Show yearly salary figures by role",
		Long: `Show posting counts and average, maximum and minimum yearly salary per
role, highest average first.

Without --month the monthly figures are combined across the year: counts are
summed, maxima and minima kept, and the average is the mean of the monthly
averages.`,
		Example: `  # Highest paying roles over the whole year
  jobskills salary

  # Salaries for postings made in May
  jobskills salary --month 5`,
		RunE: runSalary,
	}
)

func init() {
	salaryCmd.Flags().IntVar(&salaryMonth, "month", 0, "only postings made in this month (1-12)")
	salaryCmd.Flags().IntVar(&salaryTop, "top", 10, "number of roles to list")
}

func runSalary(cmd *cobra.Command, args []string) error {
	if salaryMonth < 0 || salaryMonth > 12 {
		return fmt.Errorf("--month must be between 1 and 12, got %d", salaryMonth)
	}

	ctx := cmd.Context()
	sess, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	month := query.Any[int]()
	if salaryMonth != 0 {
		month = query.Exactly(salaryMonth)
	}

	rows, err := sess.svc.Salary(ctx, month)
	if err != nil {
		return fmt.Errorf("failed to load salaries: %w", err)
	}
	if !month.IsSet() {
		rows = query.AcrossMonths(rows)
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No salary data for the selected month.")
		return nil
	}
	fmt.Fprint(out, output.RenderSalaryStats(query.Totals(rows)))
	fmt.Fprintln(out)
	fmt.Fprint(out, output.RenderSalaryTable(query.TopPaying(rows, salaryTop)))
	return nil
}
