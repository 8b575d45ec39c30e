package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/dashvars/internal/logging"
	"github.com/conneroisu/dashvars/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails validates every section and collects errors and
// warnings with suggestions.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateInterpolationDetails(&config.Interpolation, result)
	validateDashboardsDetails(&config.Dashboards, result)
	validateWatchDetails(&config.Watch, result)
	validateLogDetails(&config.Log, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateInterpolationDetails(config *InterpolationConfig, result *ValidationResult) {
	if config.Wildcard == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "interpolation.wildcard",
			Value:   config.Wildcard,
			Message: "wildcard cannot be empty",
			Suggestions: []string{
				"Use '*' for glob style data sources",
				"Use '.*' for regex based data sources",
			},
		})
	} else if strings.Contains(config.Wildcard, "'") && config.QuoteLiteral {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "interpolation.wildcard",
			Value:   config.Wildcard,
			Message: "wildcard contains a single quote while quote_literal is enabled",
		})
	}
}

func validateDashboardsDetails(config *DashboardsConfig, result *ValidationResult) {
	for _, path := range config.ScanPaths {
		if _, err := validation.ValidatePath(path); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "dashboards.scan_paths",
				Value:   path,
				Message: err.Error(),
				Suggestions: []string{
					"Use paths relative to the project root",
					"Remove '..' segments from the path",
				},
			})
		}
	}

	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "dashboards.extensions",
				Value:   ext,
				Message: fmt.Sprintf("invalid extension '%s'", ext),
				Suggestions: []string{
					"Extensions look like '.json' or '.yaml'",
				},
			})
		}
	}

	for _, pattern := range config.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "dashboards.exclude_patterns",
				Value:   pattern,
				Message: fmt.Sprintf("malformed pattern '%s'", pattern),
				Suggestions: []string{
					"Patterns use filepath.Match syntax, e.g. '*.bak' or 'vendor'",
				},
			})
		}
	}
}

func validateWatchDetails(config *WatchConfig, result *ValidationResult) {
	if config.Debounce <= 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "watch.debounce",
			Value:   config.Debounce,
			Message: "debounce must be positive",
			Suggestions: []string{
				"Use a duration such as '300ms' or '1s'",
			},
		})
	}
}

func validateLogDetails(config *LogConfig, result *ValidationResult) {
	if config.Level != "" {
		if _, err := logging.ParseLevel(config.Level); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "log.level",
				Value:   config.Level,
				Message: err.Error(),
				Suggestions: []string{
					"Valid levels: debug, info, warn, error",
				},
			})
		}
	}

	switch config.Format {
	case "", "text", "json":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log.format",
			Value:   config.Format,
			Message: fmt.Sprintf("unknown log format '%s'", config.Format),
			Suggestions: []string{
				"Use 'text' or 'json'",
			},
		})
	}
}
