package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/dashvars/internal/dashboard"
	"github.com/conneroisu/dashvars/internal/errors"
	"github.com/conneroisu/dashvars/internal/matcher"
	"github.com/conneroisu/dashvars/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch [path...]",
	Aliases: []string{"w"},
	Short:   "Watch dashboards and re-report variable usage on change",
	Long: `Print the usage report for the given paths (or the configured scan paths),
then watch them and print the report again for every dashboard that changes.
Changes are debounced by watch.debounce from the config.

Examples:
  dashvars watch
  dashvars watch ./dashboards -o json`,
	RunE: runWatch,
}

var watchFlags *StandardFlags

func init() {
	rootCmd.AddCommand(watchCmd)
	watchFlags = AddStandardFlags(watchCmd, "output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := watchFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	roots := args
	if len(roots) == 0 {
		roots = cfg.Dashboards.ScanPaths
	}

	files, err := dashboardFiles(cfg, roots)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	analyzer := dashboard.NewAnalyzer(matcher.New(logger))
	collector := errors.NewErrorCollector()
	reports := analyzeFiles(ctx, analyzer, files, collector, logger)
	if err := writeReports(out, watchFlags.OutputFormat, reports, watchFlags.Verbose); err != nil {
		return err
	}
	writeFailures(cmd.ErrOrStderr(), files, collector)

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.AddFilter(watcher.ExtensionFilter(cfg.Dashboards.Extensions...))
	fw.AddFilter(watcher.ExcludeFilter(cfg.Dashboards.ExcludePatterns...))
	fw.AddFilter(watcher.NoTempFilter)
	fw.AddFilter(watcher.NoGitFilter)

	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		changed := make([]string, 0, len(events))
		for _, event := range events {
			logger.Info(ctx, "Dashboard changed", "path", event.Path, "event", event.Type.String())
			if event.Type == watcher.EventTypeDeleted || event.Type == watcher.EventTypeRenamed {
				continue
			}
			changed = append(changed, event.Path)
		}
		if len(changed) == 0 {
			return nil
		}

		// Handlers run one batch at a time, so the collector can be reused.
		collector.Clear()
		reports := analyzeFiles(ctx, analyzer, changed, collector, logger)
		if err := writeReports(out, watchFlags.OutputFormat, reports, watchFlags.Verbose); err != nil {
			return err
		}
		writeFailures(cmd.ErrOrStderr(), changed, collector)
		return collector.Err()
	})

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return errors.WrapIO(err, errors.ErrCodeFileNotFound, "cannot watch path").WithLocation(root, 0)
		}
		if info.IsDir() {
			err = fw.AddRecursive(root, watcher.NoGitFilter, watcher.ExcludeFilter(cfg.Dashboards.ExcludePatterns...))
		} else {
			err = fw.AddPath(root)
		}
		if err != nil {
			return err
		}
	}

	if err := fw.Start(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Watching for dashboard changes", "paths", roots, "debounce", cfg.Watch.Debounce.String())
	<-ctx.Done()
	logger.Info(context.Background(), "Stopping watcher")
	return nil
}
