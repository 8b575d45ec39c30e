// Package cmd provides the dashvars command-line interface.
//
// Configuration is read, highest priority first, from command-line flags,
// the file named by --config or DASHVARS_CONFIG_FILE, DASHVARS_<SECTION>_<OPTION>
// environment variables and finally .dashvars.yml in the working directory.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/dashvars/internal/config"
	"github.com/conneroisu/dashvars/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dashvars",
	Short: "Find and interpolate dashboard template variable references",
	Long: `dashvars scans dashboard queries and panels for template variable references
in all three syntaxes ($name, [[name]] and ${name}) and reports how the
variables declared by a dashboard are used.

Quick Start:
  dashvars scan 'rate(x{job="$job"}[$__interval])'   List references in text
  dashvars contains job 'up{job="${job:regex}"}'       Check a single variable
  dashvars interpolate 'host =~ /$__searchFilter/'     Expand the search filter
  dashvars usage ./dashboards                          Report variable usage
  dashvars watch ./dashboards                          Re-report on change
  dashvars vars dashboards/service.json                Show declared variables`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .dashvars.yml, can also use DASHVARS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig selects the config file and enables environment overrides.
// A missing config file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("DASHVARS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(config.DefaultConfigName)
	}

	config.ConfigureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadRuntime loads the configuration and builds the logger for a command.
func loadRuntime(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: cmd.Name(),
	})
	return cfg, logger, nil
}
