package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Output formats accepted by --output.
var validFormats = []string{"table", "json", "yaml"}

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Output flags
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Input flags
	Files []string
	Stdin bool
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "output":
			addOutputFlags(cmd, flags)
		case "input":
			addInputFlags(cmd, flags)
		}
	}

	return flags
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")

	AddFlagValidation(cmd, "output", func(format string) error {
		return ValidateFormatWithSuggestion(format, validFormats)
	})
}

func addInputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringArrayVarP(&flags.Files, "file", "f", nil, "Read an input from a file (repeatable)")
	cmd.Flags().BoolVar(&flags.Stdin, "stdin", false, "Read an input from standard input")

	AddFlagValidation(cmd, "file", ValidateFileExists)
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.OutputFormat != "" {
		if err := ValidateFormatWithSuggestion(f.OutputFormat, validFormats); err != nil {
			return err
		}
	}

	// Quiet and verbose are mutually exclusive
	if f.Quiet && f.Verbose {
		return fmt.Errorf("cannot specify both --quiet and --verbose")
	}

	return nil
}

// Inputs returns args followed by the contents of every --file and, with
// --stdin, standard input.
func (f *StandardFlags) Inputs(args []string, stdin io.Reader) ([]string, error) {
	inputs := append([]string(nil), args...)

	for _, file := range f.Files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file %s: %w", file, err)
		}
		inputs = append(inputs, string(data))
	}

	if f.Stdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		inputs = append(inputs, string(data))
	}

	return inputs, nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateFormatWithSuggestion rejects formats outside valid and suggests the
// closest one by prefix.
func ValidateFormatWithSuggestion(format string, valid []string) error {
	lower := strings.ToLower(format)
	for _, v := range valid {
		if lower == v {
			return nil
		}
	}

	for _, v := range valid {
		if lower != "" && (strings.HasPrefix(v, lower) || strings.HasPrefix(lower, v)) {
			return fmt.Errorf("invalid format %q, did you mean %q?", format, v)
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", format, strings.Join(valid, ", "))
}

// File existence validation helper
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}
