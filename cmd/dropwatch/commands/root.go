// Package commands implements the CLI commands for dropwatch.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dropwatch/internal/config"
	"github.com/jmylchreest/dropwatch/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dropwatch",
	Short: "Track expiring-domain auctions until they close",
	Long: `Dropwatch watches a live auction results page, follows every visible
domain auction through its countdown and keeps a snapshot file of each
auction's last known price and status.

Examples:
  # Monitor with the default filters, writing dropcatch_results.csv
  dropwatch monitor

  # Stop after 30 minutes and write JSON instead
  dropwatch monitor --max-duration 30m -o results.json --format json

  # Run every day at 17:00:00 (seconds field first)
  dropwatch schedule --cron "0 0 17 * * *"

  # Inspect a snapshot
  dropwatch show dropcatch_results.csv`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default ./.dropwatch.yaml or $HOME/.dropwatch.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output and the summary table")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".dropwatch")
		viper.SetConfigType("yaml")
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// initLogger configures logging from the global flags.
func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})
	if f := viper.ConfigFileUsed(); f != "" {
		logger.Debug("config file loaded", "path", f)
	}
}

// loadConfig resolves flags, environment and config file into a Config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Error("configuration rejected", "error", err)
		return config.Config{}, err
	}
	return cfg, nil
}

// bindFlags maps command flags onto config keys.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
