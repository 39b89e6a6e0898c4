// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"fjacquet/fintrack/internal/validation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" yaml:"driver"`
	DSN          string `mapstructure:"dsn" yaml:"-"` // may carry credentials
	LogMode      bool   `mapstructure:"log_mode" yaml:"log_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
	Port    int    `mapstructure:"port" yaml:"port"`
	Mode    string `mapstructure:"mode" yaml:"mode"`
}

// ExportConfig holds transaction export defaults.
type ExportConfig struct {
	Delimiter     string `mapstructure:"delimiter" yaml:"delimiter"`
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`
}

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Export   ExportConfig   `mapstructure:"export" yaml:"export"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "data/fintrack.db", MaxOpenConns: 10, MaxIdleConns: 5},
		Server:   ServerConfig{Address: "127.0.0.1", Port: 8080, Mode: "release"},
		Export:   ExportConfig{Delimiter: ",", DefaultFormat: "csv"},
	}
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// InitializeConfigFromFile loads configuration with hierarchical precedence:
// defaults, then the config file, then FINTRACK_* environment variables.
// An empty path searches $HOME/.fintrack, ./.fintrack and the working directory.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	// 1. Defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.fintrack")
		v.AddConfigPath(".fintrack")
		v.AddConfigPath(".")
	}

	// 3. Environment variables, e.g. FINTRACK_DATABASE_DSN
	v.SetEnvPrefix("FINTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Config file is optional unless explicitly requested
	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// DATABASE_URL is the conventional variable on hosted platforms
	if err := v.BindEnv("database.dsn", "FINTRACK_DATABASE_DSN", "DATABASE_URL"); err != nil {
		fmt.Printf("Warning: failed to bind DATABASE_URL environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.log_mode", d.Database.LogMode)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)

	v.SetDefault("export.delimiter", d.Export.Delimiter)
	v.SetDefault("export.default_format", d.Export.DefaultFormat)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %s (must be '%s' or '%s')",
			config.Database.Driver, DriverSQLite, DriverPostgres)
	}

	if config.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}

	if config.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1, got: %d", config.Database.MaxOpenConns)
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", config.Server.Port)
	}

	switch config.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	if _, err := validation.IsValidDelimiter(config.Export.Delimiter); err != nil {
		return fmt.Errorf("export.delimiter: %w", err)
	}

	switch config.Export.DefaultFormat {
	case "csv", "json", "xlsx":
	default:
		return fmt.Errorf("invalid export format: %s (must be 'csv', 'json' or 'xlsx')", config.Export.DefaultFormat)
	}

	return nil
}

// ConfigureLoggingFromConfig configures the global logrus logger from Config.
// Packages that still log through logrus directly (gorm's logger bridge) pick
// up the same level and format.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.StandardLogger()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
