package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete insights configuration
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Tasks   TasksConfig   `mapstructure:"tasks" yaml:"tasks"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig controls where the panel fetches insights from
type APIConfig struct {
	// Mode selects the provider.
	// Options: "remote" (POST to BaseURL), "local" (generate from the tasks file)
	Mode string `mapstructure:"mode" yaml:"mode"`
	// BaseURL is the analytics service root, e.g. http://localhost:8000
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Token is sent as a bearer token. When empty the OS keyring is consulted.
	Token string `mapstructure:"token" yaml:"token"`
	// TimeoutSeconds bounds a single fetch
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// TasksConfig locates the task list used by local mode and the server
type TasksConfig struct {
	// File is the YAML task list. "~" expands to the home directory.
	File string `mapstructure:"file" yaml:"file"`
}

// TUIConfig controls the panel
type TUIConfig struct {
	// Markdown renders successful insights with glamour (default: true)
	Markdown bool `mapstructure:"markdown" yaml:"markdown"`
	// AutoFetch triggers a fetch as soon as the panel opens (default: false)
	AutoFetch bool `mapstructure:"auto_fetch" yaml:"auto_fetch"`
	// GlamourStyle is the glamour style name: "auto", "dark", "light", "notty"
	GlamourStyle string `mapstructure:"glamour_style" yaml:"glamour_style"`
}

// ServerConfig controls `insights serve`
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// Token, when set, is required as a bearer token on /api/analytics/
	Token string `mapstructure:"token" yaml:"token"`
	// Metrics exposes Prometheus metrics on /metrics
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
}

// CacheConfig controls the Redis insight cache
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	RedisAddr  string `mapstructure:"redis_addr" yaml:"redis_addr"`
	Password   string `mapstructure:"password" yaml:"password"`
	DB         int    `mapstructure:"db" yaml:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Enabled writes JSON logs to Dir (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the minimum level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Dir defaults to <config dir>/logs
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB rotates insights.log past this size; 0 disables rotation
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			Mode:           ModeRemote,
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Tasks: TasksConfig{
			File: filepath.Join(ConfigDir(), "tasks.yaml"),
		},
		TUI: TUIConfig{
			Markdown:     true,
			GlamourStyle: "auto",
		},
		Server: ServerConfig{
			Addr:    ":8000",
			Metrics: true,
		},
		Cache: CacheConfig{
			RedisAddr:  "localhost:6379",
			TTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Provider modes
const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

// Timeout returns the fetch timeout as a time.Duration
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns the cache TTL as a time.Duration (0 means no expiry)
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ResolvedFile returns File with a leading ~ expanded.
func (c *TasksConfig) ResolvedFile() string {
	return expandHome(c.File)
}

// ResolvedDir returns the log directory, falling back to <config dir>/logs.
func (c *LoggingConfig) ResolvedDir() string {
	if c.Dir == "" {
		return filepath.Join(ConfigDir(), "logs")
	}
	return expandHome(c.Dir)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// API defaults
	viper.SetDefault("api.mode", defaults.API.Mode)
	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.token", defaults.API.Token)
	viper.SetDefault("api.timeout_seconds", defaults.API.TimeoutSeconds)

	viper.SetDefault("tasks.file", defaults.Tasks.File)

	// TUI defaults
	viper.SetDefault("tui.markdown", defaults.TUI.Markdown)
	viper.SetDefault("tui.auto_fetch", defaults.TUI.AutoFetch)
	viper.SetDefault("tui.glamour_style", defaults.TUI.GlamourStyle)

	// Server defaults
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.token", defaults.Server.Token)
	viper.SetDefault("server.metrics", defaults.Server.Metrics)

	// Cache defaults
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.redis_addr", defaults.Cache.RedisAddr)
	viper.SetDefault("cache.password", defaults.Cache.Password)
	viper.SetDefault("cache.db", defaults.Cache.DB)
	viper.SetDefault("cache.ttl_seconds", defaults.Cache.TTLSeconds)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return cfg, nil
}

// Read unmarshals the configuration without validating it, for callers that
// apply overrides first.
func Read() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "insights")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".insights"
	}
	return filepath.Join(home, ".config", "insights")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidModes returns the list of valid api.mode values
func ValidModes() []string {
	return []string{ModeRemote, ModeLocal}
}
