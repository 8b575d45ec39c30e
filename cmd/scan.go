package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/dashvars/internal/logging"
	"github.com/conneroisu/dashvars/internal/reference"
)

var scanCmd = &cobra.Command{
	Use:   "scan [text...]",
	Short: "List the variable references in text",
	Long: `List every variable reference found in the given texts, left to right.
Each argument, --file and --stdin input is scanned on its own.

Examples:
  dashvars scan 'sum(rate(x{job="$job"}[$__interval]))'
  dashvars scan -f query.promql -o json
  cat query.sql | dashvars scan --stdin`,
	RunE: runScan,
}

var scanFlags *StandardFlags

func init() {
	rootCmd.AddCommand(scanCmd)
	scanFlags = AddStandardFlags(scanCmd, "output", "input")
}

// scanResult is one reference in command output.
type scanResult struct {
	Input  int    `json:"input" yaml:"input"`
	Syntax string `json:"syntax" yaml:"syntax"`
	Raw    string `json:"raw" yaml:"raw"`
	Name   string `json:"name" yaml:"name"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	Field  string `json:"field,omitempty" yaml:"field,omitempty"`
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := scanFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	_, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	inputs, err := scanFlags.Inputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("nothing to scan: pass text arguments, --file or --stdin")
	}

	results := make([]scanResult, 0)
	for i, input := range inputs {
		logger.Debug(cmd.Context(), "Scanning input", "input", i, "text", logging.Truncate(input, 80))
		for ref := range reference.Scan(input) {
			results = append(results, scanResult{
				Input:  i,
				Syntax: ref.Syntax.String(),
				Raw:    ref.Raw,
				Name:   ref.Name,
				Format: ref.Format.Value,
				Field:  ref.Field.Value,
				Start:  ref.Start,
				End:    ref.End,
			})
		}
	}

	if scanFlags.Quiet {
		return nil
	}

	return writeOutput(cmd.OutOrStdout(), scanFlags.OutputFormat, results, func(tw *tabwriter.Writer) {
		writeHeader(tw, "input", "syntax", "name", "format", "field", "offset", "raw")
		for _, r := range results {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Input, r.Syntax, r.Name, orDash(r.Format), orDash(r.Field),
				strconv.Itoa(r.Start)+"-"+strconv.Itoa(r.End), r.Raw)
		}
		fmt.Fprintf(tw, "\nTotal: %d references\n", len(results))
	})
}
