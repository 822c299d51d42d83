package common

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"bookstore-csv/parsers"
)

// EnvPrefix is the prefix of every environment variable read by LoadConfig.
// BOOKSTORE_DATABASE_PATH sets database_path, and so on.
const EnvPrefix = "BOOKSTORE_"

// Config holds the service configuration.
type Config struct {
	Port         int    `koanf:"port"`
	DatabasePath string `koanf:"database_path"`
	UploadsDir   string `koanf:"uploads_dir"`
	ExportsDir   string `koanf:"exports_dir"`
	LogLevel     string `koanf:"log_level"`
	LogFormat    string `koanf:"log_format"`
	JWTSecret    string `koanf:"jwt_secret"`

	// Default dialect for imports and exports; requests may override any option.
	DialectEncoding   string `koanf:"dialect_encoding"`
	DialectQuote      string `koanf:"dialect_quote"`
	DialectDelimiter  string `koanf:"dialect_delimiter"`
	DialectHeaderLine string `koanf:"dialect_header_line"`
}

// Working directories and the default dialect used by the import and export handlers.
// Apply overwrites them from a loaded Config.
var (
	UploadsDir     = "./data/uploads"
	ExportsDir     = "./data/exports"
	DialectOptions = map[string]string{}
)

var defaultConfig = map[string]interface{}{
	"port":                8080,
	"database_path":       "./data/bookstore.db",
	"uploads_dir":         "./data/uploads",
	"exports_dir":         "./data/exports",
	"log_level":           "info",
	"log_format":          "json",
	"jwt_secret":          "",
	"dialect_encoding":    "UTF-8",
	"dialect_quote":       "'",
	"dialect_delimiter":   ",",
	"dialect_header_line": "true",
}

// LoadConfig reads defaults, then the optional YAML file named by BOOKSTORE_CONFIG, then
// BOOKSTORE_* environment variables, and validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfig, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Transform: BOOKSTORE_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// DialectOptions returns the configured default dialect as parser options.
func (c *Config) DialectOptions() map[string]string {
	return map[string]string{
		parsers.OptionEncoding:   c.DialectEncoding,
		parsers.OptionQuote:      c.DialectQuote,
		parsers.OptionDelimiter:  c.DialectDelimiter,
		parsers.OptionHeaderLine: c.DialectHeaderLine,
	}
}

// Apply publishes the directories and default dialect to the package level settings.
func (c *Config) Apply() {
	UploadsDir = c.UploadsDir
	ExportsDir = c.ExportsDir
	DialectOptions = c.DialectOptions()
}

// Validate checks that the configuration is usable and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port (%d) must be 1-65535", c.Port))
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		errs = append(errs, "database_path is required")
	}
	if strings.TrimSpace(c.UploadsDir) == "" {
		errs = append(errs, "uploads_dir is required")
	}
	if strings.TrimSpace(c.ExportsDir) == "" {
		errs = append(errs, "exports_dir is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("log_level (%q) must be one of: debug, info, warn, error", c.LogLevel))
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("log_format (%q) must be one of: console, json", c.LogFormat))
	}

	if _, err := parsers.NewDialect(c.DialectOptions()); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New("validation failed:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}
