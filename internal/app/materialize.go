package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/materialize"
	"github.com/blackwell-systems/jobskills/internal/output"
	"github.com/blackwell-systems/jobskills/internal/store"
)

var (
	materializeForce bool

	materializeCmd = &cobra.Command{
		Use:   "materialize",
		Short: "Build the summary tables from the source data",
		Long: `Load the raw job postings, skills and job/skill links, clean them and
write every summary table into the database.

By default only summaries that do not exist yet are built; existing tables are
left untouched. Use --force to rebuild everything after the source data has
changed. Each table is replaced atomically, so readers never see a partial
rebuild.`,
		Example: `  # Build whatever is missing
  jobskills materialize --data-dir ./data

  # Rebuild all summaries
  jobskills materialize --force`,
		RunE: runMaterialize,
	}
)

func init() {
	materializeCmd.Flags().BoolVar(&materializeForce, "force", false, "rebuild every summary, not just missing ones")
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	progress := output.NewProgress(len(store.Relations), "materializing")
	progress.SetWriter(cmd.ErrOrStderr())

	sess, err := newSession(ctx, cmd, materialize.WithProgress(func(r store.Run) {
		progress.Step(r.Relation)
	}))
	if err != nil {
		return err
	}
	defer sess.Close()

	if materializeForce {
		res, err := sess.mat.Rematerialize(ctx)
		progress.Finish()
		if err != nil {
			return fmt.Errorf("failed to materialize summaries: %w", err)
		}
		fmt.Fprint(out, output.RenderStatusTable(runStatuses(res.Runs)))
		fmt.Fprintf(out, "\nRebuilt %d summaries in %s\n", len(res.Runs), res.Duration.Round(time.Millisecond))
		return nil
	}

	missing, err := sess.mat.Missing(ctx)
	if err != nil {
		return fmt.Errorf("failed to check summaries: %w", err)
	}
	if len(missing) == 0 {
		fmt.Fprintln(out, "All summaries are already materialized (use --force to rebuild)")
		return nil
	}

	start := time.Now()
	err = sess.mat.Ensure(ctx)
	progress.Finish()
	if err != nil {
		return fmt.Errorf("failed to materialize summaries: %w", err)
	}
	fmt.Fprintf(out, "Built %d summaries in %s: %s\n", len(missing), time.Since(start).Round(time.Millisecond), strings.Join(missing, ", "))
	return nil
}

func runStatuses(runs []store.Run) []output.RelationStatus {
	statuses := make([]output.RelationStatus, 0, len(runs))
	for _, r := range runs {
		statuses = append(statuses, output.RelationStatus{
			Relation:       r.Relation,
			Materialized:   true,
			Rows:           r.Rows,
			RunID:          r.ID,
			MaterializedAt: r.CreatedAt,
		})
	}
	return statuses
}
