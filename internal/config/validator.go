package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "api.timeout_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidGlamourStyles returns the accepted tui.glamour_style values
func ValidGlamourStyles() []string {
	return []string{"auto", "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night"}
}

const maxTimeoutSeconds = 600

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateCache()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateAPI() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidModes(), c.API.Mode) {
		errors = append(errors, ValidationError{
			Field:   "api.mode",
			Value:   c.API.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidModes(), ", ")),
		})
	}

	if c.API.Mode == ModeRemote {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "api.base_url",
				Value:   c.API.BaseURL,
				Message: "must be an absolute http or https URL",
			})
		}
	}

	if c.API.Mode == ModeLocal && strings.TrimSpace(c.Tasks.File) == "" {
		errors = append(errors, ValidationError{
			Field:   "tasks.file",
			Value:   c.Tasks.File,
			Message: "is required when api.mode is local",
		})
	}

	if c.API.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout_seconds",
			Value:   c.API.TimeoutSeconds,
			Message: "must be positive",
		})
	} else if c.API.TimeoutSeconds > maxTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "api.timeout_seconds",
			Value:   c.API.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d", maxTimeoutSeconds),
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.GlamourStyle != "" && !slices.Contains(ValidGlamourStyles(), c.TUI.GlamourStyle) {
		errors = append(errors, ValidationError{
			Field:   "tui.glamour_style",
			Value:   c.TUI.GlamourStyle,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidGlamourStyles(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Server.Addr) == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateCache() []ValidationError {
	var errors []ValidationError

	if c.Cache.Enabled && strings.TrimSpace(c.Cache.RedisAddr) == "" {
		errors = append(errors, ValidationError{
			Field:   "cache.redis_addr",
			Value:   c.Cache.RedisAddr,
			Message: "is required when the cache is enabled",
		})
	}

	// Redis ships with 16 logical databases
	if c.Cache.DB < 0 || c.Cache.DB > 15 {
		errors = append(errors, ValidationError{
			Field:   "cache.db",
			Value:   c.Cache.DB,
			Message: "must be between 0 and 15",
		})
	}

	if c.Cache.TTLSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "cache.ttl_seconds",
			Value:   c.Cache.TTLSeconds,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
