package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/dashvars/internal/searchfilter"
)

var interpolateCmd = &cobra.Command{
	Use:   "interpolate <query>",
	Short: "Expand the search filter placeholder in a query",
	Long: `Replace the first $__searchFilter placeholder in a query with the typed
filter text followed by the wildcard. Queries without the placeholder are
printed unchanged.

Wildcard and quoting default to the interpolation section of the config.

Examples:
  dashvars interpolate 'label_values(up{instance=~"$__searchFilter"}, instance)' --filter web
  dashvars interpolate "SELECT host FROM hosts WHERE host LIKE $__searchFilter" --filter db --wildcard % --quote`,
	Args: cobra.ExactArgs(1),
	RunE: runInterpolate,
}

var (
	interpolateFilter   string
	interpolateWildcard string
	interpolateQuote    bool
)

func init() {
	rootCmd.AddCommand(interpolateCmd)

	interpolateCmd.Flags().StringVar(&interpolateFilter, "filter", "", "Text typed into the variable picker")
	interpolateCmd.Flags().StringVar(&interpolateWildcard, "wildcard", "", "Wildcard appended to the filter (overrides config)")
	interpolateCmd.Flags().BoolVar(&interpolateQuote, "quote", false, "Wrap the filter in single quotes (overrides config)")
}

func runInterpolate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	interpolator := searchfilter.NewInterpolator(cfg.Interpolation.Wildcard, cfg.Interpolation.QuoteLiteral)
	if cmd.Flags().Changed("wildcard") {
		interpolator.Wildcard = interpolateWildcard
	}
	if cmd.Flags().Changed("quote") {
		interpolator.QuoteLiteral = interpolateQuote
	}

	query := args[0]
	if !searchfilter.ContainsSearchFilter(query) {
		logger.Debug(cmd.Context(), "Query has no search filter placeholder")
	}

	fmt.Fprintln(cmd.OutOrStdout(), interpolator.Apply(query, searchfilter.Options{SearchFilter: interpolateFilter}))
	return nil
}
