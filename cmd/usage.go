package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conneroisu/dashvars/internal/config"
	"github.com/conneroisu/dashvars/internal/dashboard"
	"github.com/conneroisu/dashvars/internal/errors"
	"github.com/conneroisu/dashvars/internal/logging"
	"github.com/conneroisu/dashvars/internal/matcher"
)

var usageCmd = &cobra.Command{
	Use:   "usage [path...]",
	Short: "Report how dashboard variables are used",
	Long: `Load dashboards and report, for every declared template variable, the panels
and other variable definitions that reference it. Variables nothing references
are marked unused, and names panels reference without declaring are listed as
undeclared.

Paths may be files or directories; without paths the dashboards.scan_paths
from the config are used.

Examples:
  dashvars usage                           # Scan the configured paths
  dashvars usage dashboards/service.json   # A single dashboard
  dashvars usage ./grafana -o json         # JSON report
  dashvars usage --fail-on-unused          # Exit non-zero on unused variables`,
	RunE: runUsage,
}

var (
	usageFlags        *StandardFlags
	usageFailOnUnused bool
)

// Report styles.
var (
	unusedStyle     = color.New(color.FgYellow, color.Bold)
	undeclaredStyle = color.New(color.FgRed, color.Bold)
	pathStyle       = color.New(color.FgCyan, color.Bold)
	failedStyle     = color.New(color.FgRed)
)

func init() {
	rootCmd.AddCommand(usageCmd)
	usageFlags = AddStandardFlags(usageCmd, "output")
	usageCmd.Flags().BoolVar(&usageFailOnUnused, "fail-on-unused", false, "Exit non-zero when a variable is unused")
}

func runUsage(cmd *cobra.Command, args []string) error {
	if err := usageFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	files, err := dashboardFiles(cfg, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No dashboards found.")
		return nil
	}

	analyzer := dashboard.NewAnalyzer(matcher.New(logger))
	collector := errors.NewErrorCollector()
	reports := analyzeFiles(cmd.Context(), analyzer, files, collector, logger)

	if !usageFlags.Quiet {
		if err := writeReports(cmd.OutOrStdout(), usageFlags.OutputFormat, reports, usageFlags.Verbose); err != nil {
			return err
		}
		writeFailures(cmd.ErrOrStderr(), files, collector)
	}

	if err := collector.Err(); err != nil {
		return err
	}

	if usageFailOnUnused {
		unused := 0
		for _, report := range reports {
			unused += len(report.Unused())
		}
		if unused > 0 {
			return fmt.Errorf("%d unused variables", unused)
		}
	}
	return nil
}

// dashboardFiles resolves args, or the configured scan paths, to dashboard files.
func dashboardFiles(cfg *config.Config, args []string) ([]string, error) {
	paths := args
	if len(paths) == 0 {
		paths = cfg.Dashboards.ScanPaths
	}
	return dashboard.Walk(paths, cfg.Dashboards.Extensions, cfg.Dashboards.ExcludePatterns)
}

// analyzeFiles loads and analyzes each file. Files that fail to load are
// recorded in collector and skipped.
func analyzeFiles(
	ctx context.Context,
	analyzer *dashboard.Analyzer,
	files []string,
	collector *errors.ErrorCollector,
	logger logging.Logger,
) []*dashboard.Report {
	reports := make([]*dashboard.Report, 0, len(files))
	for _, file := range files {
		d, err := dashboard.Load(file)
		if err != nil {
			logger.Warn(ctx, err, "Skipping dashboard", "path", file,
				"cause", errors.ExtractCause(err).Error())
			collector.AddError(file, err)
			continue
		}

		report := analyzer.Analyze(ctx, d)
		logger.Debug(ctx, "Analyzed dashboard",
			"path", file,
			"variables", len(report.Usages),
			"unused", len(report.Unused()),
		)
		reports = append(reports, report)
	}
	return reports
}

func writeReports(w io.Writer, format string, reports []*dashboard.Report, verbose bool) error {
	return writeOutput(w, format, reports, func(tw *tabwriter.Writer) {
		for i, report := range reports {
			if i > 0 {
				fmt.Fprintln(tw)
			}
			title := report.Path
			if report.Title != "" {
				title += " (" + report.Title + ")"
			}
			fmt.Fprintln(tw, pathStyle.Sprint(title))

			writeHeader(tw, "variable", "type", "panels", "variables", "status")
			for _, usage := range report.Usages {
				panels := fmt.Sprintf("%d", len(usage.Panels))
				if verbose && len(usage.Panels) > 0 {
					panels = strings.Join(usage.Panels, ", ")
				}

				status := "used"
				if usage.Unused {
					status = unusedStyle.Sprint("unused")
				}

				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					usage.Variable, orDash(usage.Type), panels,
					orDash(strings.Join(usage.Variables, ", ")), status)
			}

			if len(report.Undeclared) > 0 {
				fmt.Fprintf(tw, "%s %s\n",
					undeclaredStyle.Sprint("undeclared:"),
					strings.Join(report.Undeclared, ", "))
			}
		}
	})
}

// writeFailures prints one line per file that failed to load, in file order.
func writeFailures(w io.Writer, files []string, collector *errors.ErrorCollector) {
	for _, file := range files {
		for _, failure := range collector.GetErrorsByFile(file) {
			fmt.Fprintf(w, "%s %s: %s\n", failedStyle.Sprint("failed:"), file,
				errors.FormatError(errors.ExtractCause(failure.Cause)))
		}
	}
}
