// =============================================================================
// PAXML Exporter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. It handles the main config.yaml file, environment overrides
// and the optional vocabulary file that replaces the built-in code tables.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults
//   2. Main config (config.yaml)
//   3. A .env file in the working directory (optional)
//   4. Process environment
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/paxml-exporter/internal/schedule"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Export   ExportConfig   `yaml:"export"`

	// Schedule is the estimation policy used when an imported schedule row
	// only carries an hours total.
	Schedule schedule.EstimationPolicy `yaml:"schedule"`

	// VocabularyFile optionally points at a YAML file with the code tables.
	// When empty the built-in vocabulary (schema version 2.2) is used.
	VocabularyFile string `yaml:"vocabulary_file"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Port the API listens on.
	// Default: 8080
	Port int `yaml:"port"`

	// ShutdownTimeoutSeconds bounds the graceful shutdown.
	// Default: 10
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

// Addr returns the listen address for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	// Driver is one of "postgres", "sqlite" or "json".
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// DSN is the gorm connection string for postgres/sqlite.
	// Default: "paxml.db"
	DSN string `yaml:"dsn"`

	// JSONPath is the document used by the "json" driver.
	// Default: "./data/paxml.json"
	JSONPath string `yaml:"json_path"`
}

// AuthConfig controls the bearer-token check on the export endpoints.
type AuthConfig struct {
	// JWTSecret is the HS256 key. Authentication is disabled when empty.
	JWTSecret string `yaml:"jwt_secret"`

	// ExportRoles lists the role claims allowed to export.
	// Default: ADMIN, HR, PAYROLL
	ExportRoles []string `yaml:"export_roles"`
}

// LoggingConfig controls the logrus logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "text" or "json".
	// Default: "text"
	Format string `yaml:"format"`

	// File is an optional log file. Logs go to stderr when empty.
	File string `yaml:"file"`
}

// ExportConfig holds the directories used by the CLI.
type ExportConfig struct {
	// OutputDir receives generated PAXML documents.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives imported source files after a successful import.
	// Default: "./input_archive"
	ArchiveDir string `yaml:"archive_dir"`

	// InputDir is where import files are looked up when given without a path.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// FileNameFormat is the output file name pattern.
	// Placeholders:
	//   {name}      - File name suggested by the exporter (without .xml)
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "{name}.xml"
	FileNameFormat string `yaml:"file_name_format"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverJSON     = "json"
)

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A missing file is
//     not an error; defaults and environment are used instead.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be parsed or the result is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Running on defaults and environment only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// A missing .env is fine; it only exists on developer machines.
	_ = godotenv.Load()
	if err := applyEnvOverrides(&config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.ShutdownTimeoutSeconds == 0 {
		config.Server.ShutdownTimeoutSeconds = 10
	}
	if config.Database.Driver == "" {
		config.Database.Driver = DriverSQLite
	}
	if config.Database.DSN == "" && config.Database.Driver == DriverSQLite {
		config.Database.DSN = "paxml.db"
	}
	if config.Database.JSONPath == "" {
		config.Database.JSONPath = "./data/paxml.json"
	}
	if len(config.Auth.ExportRoles) == 0 {
		config.Auth.ExportRoles = []string{"ADMIN", "HR", "PAYROLL"}
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
	if config.Export.OutputDir == "" {
		config.Export.OutputDir = "./output"
	}
	if config.Export.ArchiveDir == "" {
		config.Export.ArchiveDir = "./input_archive"
	}
	if config.Export.InputDir == "" {
		config.Export.InputDir = "./input"
	}
	if config.Export.FileNameFormat == "" {
		config.Export.FileNameFormat = "{name}.xml"
	}
	config.Schedule = config.Schedule.WithDefaults()
}

// applyEnvOverrides copies the supported environment variables over the file values.
func applyEnvOverrides(config *MainConfig) error {
	if value := getEnv("DATABASE_DRIVER", ""); value != "" {
		config.Database.Driver = value
	}
	if value := getEnv("DATABASE_URL", ""); value != "" {
		config.Database.DSN = value
	}
	if value := getEnv("JWT_SECRET", ""); value != "" {
		config.Auth.JWTSecret = value
	}
	if value := getEnv("LOG_LEVEL", ""); value != "" {
		config.Logging.Level = value
	}
	if value := getEnv("SERVER_PORT", ""); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("SERVER_PORT %q is not a number", value)
		}
		config.Server.Port = port
	}
	return nil
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch config.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if config.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", config.Database.Driver)
		}
	case DriverJSON:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", config.Server.Port)
	}

	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported logging format %q", config.Logging.Format)
	}

	if err := config.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule policy: %w", err)
	}

	return nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
