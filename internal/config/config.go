// Package config provides configuration management for dashvars using Viper
// for loading from files, environment variables and command-line flags.
//
// Settings come from a .dashvars.yml file, DASHVARS_ prefixed environment
// variables and flags bound by the CLI. They cover search filter
// interpolation, where dashboards are found, the watcher debounce and
// logging.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/dashvars/internal/errors"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "DASHVARS"

// DefaultConfigName is the base name of the config file looked up in the
// working directory.
const DefaultConfigName = ".dashvars"

type Config struct {
	Interpolation InterpolationConfig `mapstructure:"interpolation" yaml:"interpolation"`
	Dashboards    DashboardsConfig    `mapstructure:"dashboards" yaml:"dashboards"`
	Watch         WatchConfig         `mapstructure:"watch" yaml:"watch"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
}

type InterpolationConfig struct {
	// Wildcard is appended to the search filter text.
	Wildcard string `mapstructure:"wildcard" yaml:"wildcard"`
	// QuoteLiteral wraps the interpolated filter in single quotes.
	QuoteLiteral bool `mapstructure:"quote_literal" yaml:"quote_literal"`
}

type DashboardsConfig struct {
	ScanPaths       []string `mapstructure:"scan_paths" yaml:"scan_paths"`
	Extensions      []string `mapstructure:"extensions" yaml:"extensions"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default values.
var (
	DefaultWildcard   = "*"
	DefaultScanPaths  = []string{"./dashboards"}
	DefaultExtensions = []string{".json", ".jsonc", ".yaml", ".yml"}
	DefaultDebounce   = 300 * time.Millisecond
)

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("interpolation.wildcard", DefaultWildcard)
	v.SetDefault("interpolation.quote_literal", false)
	v.SetDefault("dashboards.scan_paths", DefaultScanPaths)
	v.SetDefault("dashboards.extensions", DefaultExtensions)
	v.SetDefault("dashboards.exclude_patterns", []string{})
	v.SetDefault("watch.debounce", DefaultDebounce)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// ConfigureEnv enables DASHVARS_ environment overrides on v, with nested keys
// separated by underscores (DASHVARS_WATCH_DEBOUNCE).
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v. Defaults are
// applied for keys v does not know.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "cannot decode configuration")
	}

	// Slices set through the environment arrive as one space separated
	// string (workaround for viper slice handling)
	if v.IsSet("dashboards.scan_paths") && len(config.Dashboards.ScanPaths) == 0 {
		config.Dashboards.ScanPaths = v.GetStringSlice("dashboards.scan_paths")
	}
	if v.IsSet("dashboards.extensions") && len(config.Dashboards.Extensions) == 0 {
		config.Dashboards.Extensions = v.GetStringSlice("dashboards.extensions")
	}

	if len(config.Dashboards.ScanPaths) == 0 {
		config.Dashboards.ScanPaths = append([]string(nil), DefaultScanPaths...)
	}
	if len(config.Dashboards.Extensions) == 0 {
		config.Dashboards.Extensions = append([]string(nil), DefaultExtensions...)
	}
	config.Dashboards.Extensions = normalizeExtensions(config.Dashboards.Extensions)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// normalizeExtensions lowercases extensions and adds the leading dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// validateConfig returns a config error for the first validation error, if
// any. The offending field and its suggestions are kept as context.
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if !result.HasErrors() {
		return nil
	}

	first := result.Errors[0]
	err := errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid configuration").
		WithContext("field", first.Field).
		WithContext("suggestions", first.Suggestions)
	err.Cause = &first
	return err
}
