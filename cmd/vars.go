package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/dashvars/internal/dashboard"
	"github.com/conneroisu/dashvars/internal/variables"
)

var varsCmd = &cobra.Command{
	Use:   "vars <dashboard>",
	Short: "Show the template variables a dashboard declares",
	Long: `Load the templating list of a dashboard into the variable store, filling
unset properties with the defaults of each variable type, and print it.

--set changes a property before printing and takes name.property=value;
values are converted to the property type.

Examples:
  dashvars vars dashboards/service.json
  dashvars vars dashboards/service.json -o yaml
  dashvars vars dashboards/service.json --set job.multi=true --set env.hide=2`,
	Args: cobra.ExactArgs(1),
	RunE: runVars,
}

var (
	varsFlags *StandardFlags
	varsSet   []string
)

func init() {
	rootCmd.AddCommand(varsCmd)
	varsFlags = AddStandardFlags(varsCmd, "output")
	varsCmd.Flags().StringArrayVar(&varsSet, "set", nil, "Set a property: name.property=value (repeatable)")
}

func runVars(cmd *cobra.Command, args []string) error {
	if err := varsFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	_, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	d, err := dashboard.Load(args[0])
	if err != nil {
		return err
	}

	store := variables.Default()
	ids, err := dashboard.Register(store, d)
	if err != nil {
		return err
	}
	logger.Debug(cmd.Context(), "Registered variables", "path", d.Path, "count", len(ids))

	byName := make(map[string]int, len(ids))
	for i, id := range ids {
		byName[d.Variables[i].Name] = id
	}

	for _, assignment := range varsSet {
		name, property, value, err := parseAssignment(assignment)
		if err != nil {
			return err
		}
		id, ok := byName[name]
		if !ok {
			return fmt.Errorf("--set %s: dashboard declares no variable %q", assignment, name)
		}
		if err := store.SetVariableProperty(variables.ByID(id), property, value); err != nil {
			return fmt.Errorf("--set %s: %w", assignment, err)
		}
	}

	models := make([]variables.Model, 0, len(ids))
	for _, id := range ids {
		model, err := store.GetVariableModel(variables.ByID(id))
		if err != nil {
			return err
		}
		model.ID = id
		models = append(models, model)
	}

	if varsFlags.Quiet {
		return nil
	}

	return writeOutput(cmd.OutOrStdout(), varsFlags.OutputFormat, models, func(tw *tabwriter.Writer) {
		writeHeader(tw, "id", "name", "type", "query", "current", "hide", "index")
		for _, m := range models {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
				m.ID, m.Name, m.Type, orDash(m.Query), orDash(m.Current.Text), m.Hide, m.Index)
		}
		fmt.Fprintf(tw, "\nTotal: %d variables\n", len(models))
	})
}

// parseAssignment splits "name.property=value".
func parseAssignment(s string) (name, property, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", "", fmt.Errorf("--set %s: expected name.property=value", s)
	}
	name, property, ok = strings.Cut(key, ".")
	if !ok || name == "" || property == "" {
		return "", "", "", fmt.Errorf("--set %s: expected name.property=value", s)
	}
	return name, property, value, nil
}
