package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/insights/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify insights configuration",
	Long: `View or modify insights configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  insights config set api.mode local
  insights config set api.base_url https://analytics.example.com
  insights config set cache.enabled true

Run 'insights config show' to see every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/insights/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// redacted replaces secrets in config show output.
const redacted = "********"

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	for _, secret := range []*string{&cfg.API.Token, &cfg.Server.Token, &cfg.Cache.Password} {
		if *secret != "" {
			*secret = redacted
		}
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// settableKeys maps each key accepted by config set to its value kind.
var settableKeys = map[string]string{
	"api.mode":            "string",
	"api.base_url":        "string",
	"api.token":           "string",
	"api.timeout_seconds": "int",
	"tasks.file":          "string",
	"tui.markdown":        "bool",
	"tui.auto_fetch":      "bool",
	"tui.glamour_style":   "string",
	"server.addr":         "string",
	"server.token":        "string",
	"server.metrics":      "bool",
	"cache.enabled":       "bool",
	"cache.redis_addr":    "string",
	"cache.password":      "string",
	"cache.db":            "int",
	"cache.ttl_seconds":   "int",
	"logging.enabled":     "bool",
	"logging.level":       "string",
	"logging.dir":         "string",
	"logging.max_size_mb": "int",
	"logging.max_backups": "int",
	"logging.compress":    "bool",
}

func validKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	keyType, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(validKeys(), ", "))
	}

	var typedValue any
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = b
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		typedValue = n
	}

	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return err
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cmd.Printf("Set %s = %v\n", key, typedValue)
	cmd.Printf("Config saved to %s\n", configFile)
	return nil
}

const defaultConfigContent = `# insights configuration

# Where the panel gets insights from
api:
  # Options: remote (POST to base_url), local (generate from tasks.file)
  mode: remote
  base_url: http://localhost:8000
  # Bearer token; leave empty to use the keyring ('insights token set')
  token: ""
  timeout_seconds: 30

# Task list used by local mode and 'insights serve'
tasks:
  file: ~/.config/insights/tasks.yaml

# Panel settings
tui:
  # Render insights as markdown
  markdown: true
  # Generate insights when the panel opens
  auto_fetch: false
  # Options: auto, dark, light, notty, ascii, dracula, pink, tokyo-night
  glamour_style: auto

# 'insights serve' settings
server:
  addr: ":8000"
  # Require this bearer token on /api/analytics/ when set
  token: ""
  metrics: true

# Redis insight cache
cache:
  enabled: false
  redis_addr: localhost:6379
  password: ""
  db: 0
  # 0 keeps entries until the tasks file changes
  ttl_seconds: 300

# JSON debug logs, viewable with 'insights logs'
logging:
  enabled: false
  # Options: debug, info, warn, error
  level: info
  # Defaults to ~/.config/insights/logs
  dir: ""
  # Rotate insights.log past this size (0 disables rotation)
  max_size_mb: 10
  max_backups: 3
  compress: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'insights config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cmd.Printf("Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	if used := viper.ConfigFileUsed(); used != "" {
		cmd.Printf("Active config: %s\n", used)
	} else {
		cmd.Printf("Default path: %s (not created)\n", config.ConfigFile())
	}

	cmd.Println("\nSearch paths:")
	cmd.Printf("  1. %s\n", config.ConfigFile())
	cmd.Println("  2. ./config.yaml (current directory)")
	cmd.Println("\nEnvironment variables: INSIGHTS_* (e.g., INSIGHTS_API_BASE_URL)")
	return nil
}
