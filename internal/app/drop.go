package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/store"
)

var dropCmd = &cobra.Command{
	Use:   "drop [relation...]",
	Short: "Remove summary tables",
	Long: `Drop the named summary tables, or all of them when no name is given. The
next query or 'jobskills materialize' rebuilds whatever is missing.`,
	Example: `  # Force the salary summary to be rebuilt on next use
  jobskills drop salary_summary

  # Drop everything
  jobskills drop`,
	RunE: runDrop,
}

func runDrop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	names := args
	if len(names) == 0 {
		names = store.RelationNames()
	}
	for _, name := range names {
		if _, ok := store.Lookup(name); !ok {
			return fmt.Errorf("%w: %s", store.ErrUnknownRelation, name)
		}
	}

	sess, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := sess.openCache(ctx); err != nil {
		return err
	}

	for _, name := range names {
		if err := sess.store.Drop(ctx, name); err != nil {
			return err
		}
		sess.log.WithField("relation", name).Debug("relation dropped")
	}
	sess.cache.Purge(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "Dropped %d summaries\n", len(names))
	return nil
}
