package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/jobskills/internal/output"
	"github.com/blackwell-systems/jobskills/internal/query"
)

var (
	countriesLimit int

	countriesCmd = &cobra.Command{
		Use:   "countries",
		Short: "List the countries with the most postings",
		Long: `List countries by number of postings. Remote, worldwide and continent-level
locations are not counted as countries.`,
		Example: `  jobskills countries --limit 5`,
		RunE:    runCountries,
	}
)

func init() {
	countriesCmd.Flags().IntVar(&countriesLimit, "limit", 10, "number of countries to list (0 for all)")
}

func runCountries(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	countries, err := sess.svc.Countries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load countries: %w", err)
	}
	if countriesLimit > 0 {
		countries = query.TopCountries(countries, countriesLimit)
	}

	out := cmd.OutOrStdout()
	if len(countries) == 0 {
		fmt.Fprintln(out, "No postings with a country.")
		return nil
	}
	fmt.Fprint(out, output.RenderCountryTable(countries))
	return nil
}
