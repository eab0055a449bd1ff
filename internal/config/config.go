package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	StorageBackendDatabase = "database"
	StorageBackendMemory   = "memory"

	ValidationModeSimulated = "simulated"
	ValidationModeLive      = "live"
)

// DatabaseConfig holds the database connection information.
type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// StorageConfig selects where the credential list is kept.
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// AdminConfig holds configuration for the settings API.
type AdminConfig struct {
	Password string `yaml:"password"`
}

// ValidationConfig controls how saved keys are checked against providers.
type ValidationConfig struct {
	Mode    string `yaml:"mode"`
	Delay   string `yaml:"delay"`
	Timeout string `yaml:"timeout"`
}

// DelayDuration returns the parsed simulated validation delay.
func (v ValidationConfig) DelayDuration() time.Duration {
	d, _ := time.ParseDuration(v.Delay)
	return d
}

// TimeoutDuration returns the parsed per-check timeout.
func (v ValidationConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(v.Timeout)
	return d
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	KeyCheckSchedule string `yaml:"key_check_schedule"`
}

// ModelsConfig extends the model to provider table.
type ModelsConfig struct {
	DefaultProvider string            `yaml:"default_provider"`
	Mappings        map[string]string `yaml:"mappings"`
}

// Config holds the configuration for the service.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Admin      AdminConfig      `yaml:"admin"`
	Validation ValidationConfig `yaml:"validation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Models     ModelsConfig     `yaml:"models"`
	Port       int              `yaml:"port"`
	Debug      bool             `yaml:"debug"`
	LogFormat  string           `yaml:"log_format"`
}

// LoadConfig reads and parses the configuration file. It returns the config and any warnings
// about values that fell back to defaults.
var LoadConfig = func(path string) (*Config, []string, error) {
	var config Config
	var warnings []string

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// A missing file is fine: defaults and environment variables take over.

	applyEnv(&config)

	if config.Port == 0 {
		config.Port = 8080
	}
	if config.LogFormat == "" {
		config.LogFormat = "json"
	}
	if config.Storage.Backend == "" {
		config.Storage.Backend = StorageBackendDatabase
	}
	if config.Storage.Backend == StorageBackendDatabase && config.Database.Type == "" && config.Database.DSN == "" {
		config.Database = DatabaseConfig{Type: "sqlite", DSN: "wkchat.db"}
		warnings = append(warnings, "database not configured, using sqlite file wkchat.db")
	}
	if config.Validation.Mode == "" {
		config.Validation.Mode = ValidationModeSimulated
	}
	if config.Validation.Delay == "" {
		config.Validation.Delay = "1s"
	}
	if config.Validation.Timeout == "" {
		config.Validation.Timeout = "15s"
	}
	if config.Scheduler.KeyCheckSchedule == "" {
		config.Scheduler.KeyCheckSchedule = "@daily"
	}
	if config.Models.DefaultProvider == "" {
		config.Models.DefaultProvider = "gemini"
		warnings = append(warnings, "models.default_provider not set, unknown models will use gemini")
	}
	if config.Admin.Password == "" {
		warnings = append(warnings, "admin.password not set, the settings API is unauthenticated")
	}

	if err := config.validate(); err != nil {
		return nil, nil, err
	}
	return &config, warnings, nil
}

func applyEnv(config *Config) {
	if port := os.Getenv("WKCHAT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if debug := os.Getenv("WKCHAT_DEBUG"); debug != "" {
		config.Debug = debug == "true"
	}
	if format := os.Getenv("WKCHAT_LOG_FORMAT"); format != "" {
		config.LogFormat = format
	}
	if dbType := os.Getenv("WKCHAT_DATABASE_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dsn := os.Getenv("WKCHAT_DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if backend := os.Getenv("WKCHAT_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if password := os.Getenv("WKCHAT_ADMIN_PASSWORD"); password != "" {
		config.Admin.Password = password
	}
	if mode := os.Getenv("WKCHAT_VALIDATION_MODE"); mode != "" {
		config.Validation.Mode = mode
	}
	if provider := os.Getenv("WKCHAT_DEFAULT_PROVIDER"); provider != "" {
		config.Models.DefaultProvider = provider
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageBackendMemory:
	case StorageBackendDatabase:
		if c.Database.Type == "" || c.Database.DSN == "" {
			return fmt.Errorf("database type and dsn must both be configured for the database storage backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}

	switch c.Validation.Mode {
	case ValidationModeSimulated, ValidationModeLive:
	default:
		return fmt.Errorf("unsupported validation mode: %s", c.Validation.Mode)
	}
	delay, err := time.ParseDuration(c.Validation.Delay)
	if err != nil {
		return fmt.Errorf("invalid validation.delay: %w", err)
	}
	timeout, err := time.ParseDuration(c.Validation.Timeout)
	if err != nil || timeout <= 0 {
		return fmt.Errorf("invalid validation.timeout: %q", c.Validation.Timeout)
	}
	// Every simulated check would hit the deadline.
	if c.Validation.Mode == ValidationModeSimulated && delay >= timeout {
		return fmt.Errorf("validation.delay (%s) must be shorter than validation.timeout (%s)", c.Validation.Delay, c.Validation.Timeout)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}
	return nil
}
