package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/insights/internal/config"
	"github.com/Iron-Ham/insights/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "insights",
	Short: "AI insights panel for your task list",
	Long: `Insights shows an on-demand analysis of your tasks in a terminal panel.

The analysis comes from an analytics endpoint (remote mode) or is generated
from a local tasks file (local mode). 'insights serve' runs the endpoint.`,
	SilenceUsage: true,
	RunE:         runPanel,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/insights/config.yaml)")
	rootCmd.PersistentFlags().String("mode", "", "provider mode: remote or local (overrides api.mode)")
	rootCmd.PersistentFlags().String("url", "", "analytics base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().String("tasks", "", "tasks file (overrides tasks.file)")

	addPanelFlags(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("INSIGHTS")
	// e.g., INSIGHTS_API_BASE_URL for api.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig reads the configuration, applies the global flag overrides and
// validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("mode"); flags.Changed("mode") {
		cfg.API.Mode = v
	}
	if v, _ := flags.GetString("url"); flags.Changed("url") {
		cfg.API.BaseURL = v
	}
	if v, _ := flags.GetString("tasks"); flags.Changed("tasks") {
		cfg.Tasks.File = v
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}
	return cfg, nil
}

// newLogger builds the file logger when logging is enabled. Commands that draw
// on the terminal must not log to stderr, so a disabled config yields a
// no-op logger rather than a stderr one.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewRotatingLogger(cfg.Logging.ResolvedDir(), cfg.Logging.Level, rotation(cfg))
}

func rotation(cfg *config.Config) logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	}
}
