package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// writeOutput renders data as JSON or YAML, or calls table with a tabwriter.
func writeOutput(w io.Writer, format string, data interface{}, table func(tw *tabwriter.Writer)) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return err
		}
		return encoder.Close()
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// writeHeader writes title-cased column names and a dashed separator.
func writeHeader(tw *tabwriter.Writer, columns ...string) {
	caser := cases.Title(language.English)
	titles := make([]string, len(columns))
	dashes := make([]string, len(columns))
	for i, column := range columns {
		titles[i] = caser.String(column)
		dashes[i] = strings.Repeat("-", len(column))
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
}

// orDash returns "-" for empty cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
