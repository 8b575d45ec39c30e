package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/dashvars/internal/matcher"
)

var containsCmd = &cobra.Command{
	Use:   "contains <name> [input...]",
	Short: "Check whether inputs reference a variable",
	Long: `Check whether any of the inputs references the named variable in any
syntax. Inputs are joined with single spaces before scanning, and a name
matches when it equals the variable name, its format or its field.

The command exits with status 1 when the variable is not referenced.

Examples:
  dashvars contains job 'up{job="$job"}'
  dashvars contains host -f panel-query.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runContains,
}

var containsFlags *StandardFlags

// errNotReferenced makes the process exit non-zero.
var errNotReferenced = fmt.Errorf("variable not referenced")

func init() {
	rootCmd.AddCommand(containsCmd)
	containsFlags = AddStandardFlags(containsCmd, "input")
	containsCmd.Flags().BoolP("quiet", "q", false, "Only set the exit status")
}

func runContains(cmd *cobra.Command, args []string) error {
	_, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	name := args[0]
	if name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}

	texts, err := containsFlags.Inputs(args[1:], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no inputs: pass text arguments, --file or --stdin")
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	m := matcher.New(logger)
	found := m.ContainsVariable(cmd.Context(), matcher.Texts(texts...), name)

	if !quiet {
		if found {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: referenced\n", name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: not referenced\n", name)
		}
	}

	if !found {
		cmd.SilenceErrors = true
		return errNotReferenced
	}
	return nil
}
