package app

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/config"
	"github.com/blackwell-systems/jobskills/internal/output"
	"github.com/blackwell-systems/jobskills/internal/store"
	"github.com/blackwell-systems/jobskills/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which summaries are materialized",
	Long: `Display every summary table with its row count, the run that last built it
and when, plus whether the background watcher is running.

This command only reads the database; it never builds missing summaries.`,
	Example: `  # Check status
  jobskills status`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	sess, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	statuses, err := relationStatuses(cmd, sess.store)
	if err != nil {
		return err
	}

	const label = "%-14s"
	fmt.Fprintf(out, label+"%s", "Database:", sess.cfg.DBPath)
	if fi, err := os.Stat(sess.cfg.DBPath); err == nil {
		fmt.Fprintf(out, " (%s)", humanize.Bytes(uint64(fi.Size())))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, label+"%s (%s)\n", "Source:", sess.cfg.Source.Kind, sourceLocation(sess))

	if pidFile, err := getDefaultPIDFile(); err == nil {
		running, _ := watcher.IsDaemonRunning(pidFile)
		if running {
			fmt.Fprintf(out, label+"running\n", "Watcher:")
		} else {
			fmt.Fprintf(out, label+"stopped  (run 'jobskills watch --daemon')\n", "Watcher:")
		}
	}
	fmt.Fprintln(out)

	fmt.Fprint(out, output.RenderStatusTable(statuses))

	missing := 0
	for _, s := range statuses {
		if !s.Materialized {
			missing++
		}
	}
	if missing > 0 {
		fmt.Fprintf(out, "\n%d of %d summaries missing. Run 'jobskills materialize' to build them.\n", missing, len(statuses))
	}
	return nil
}

// relationStatuses combines the live tables with the run metadata.
func relationStatuses(cmd *cobra.Command, st *store.Store) ([]output.RelationStatus, error) {
	ctx := cmd.Context()

	runs, err := st.LatestRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	latest := make(map[string]store.Run, len(runs))
	for _, r := range runs {
		latest[r.Relation] = r
	}

	statuses := make([]output.RelationStatus, 0, len(store.Relations))
	for _, name := range store.RelationNames() {
		exists, err := st.Exists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", name, err)
		}
		s := output.RelationStatus{Relation: name, Materialized: exists}
		if r, ok := latest[name]; ok {
			s.RunID = r.ID
			s.MaterializedAt = r.CreatedAt
			if exists {
				s.Rows = r.Rows
			}
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func sourceLocation(sess *session) string {
	if sess.cfg.Source.Kind == config.SourcePostgres {
		return "postgres DSN configured"
	}
	return sess.cfg.Source.DataDir
}
