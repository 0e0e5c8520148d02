// Package config loads fintrack settings from defaults, an optional TOML
// file and FINTRACK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Restore modes
const (
	RestoreMerge   = "merge"
	RestoreReplace = "replace"
)

type Config struct {
	// Database
	DBPath string `toml:"db_path"`

	// Snapshots
	BackupDir   string `toml:"backup_dir"`
	RestoreMode string `toml:"restore_mode"`

	// Logging
	LogLevel string `toml:"log_level"`

	// Auth
	BcryptCost int `toml:"bcrypt_cost"`

	// Reports
	ReportCacheSize int           `toml:"report_cache_size"`
	ReportCacheTTL  time.Duration `toml:"report_cache_ttl"`

	// Ledger
	EnforceOwnership bool `toml:"enforce_ownership"`

	AMQP AMQPConfig `toml:"amqp"`
}

// AMQPConfig configures ledger event publishing. An empty URL disables it.
type AMQPConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
	Queue    string `toml:"queue"`
}

func DefaultConfig() *Config {
	dataDir := DataDir()
	return &Config{
		DBPath:           filepath.Join(dataDir, "finance.db"),
		BackupDir:        filepath.Join(dataDir, "backups"),
		RestoreMode:      RestoreMerge,
		LogLevel:         "info",
		BcryptCost:       12,
		ReportCacheSize:  128,
		ReportCacheTTL:   5 * time.Minute,
		EnforceOwnership: true,
		AMQP: AMQPConfig{
			Exchange: "fintrack",
			Queue:    "ledger_events",
		},
	}
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fintrack")
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fintrack", "config.toml")
}

// Load builds the configuration. An explicit path must exist; the default
// path is read only if present. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DBPath = getEnv("FINTRACK_DB_PATH", c.DBPath)
	c.BackupDir = getEnv("FINTRACK_BACKUP_DIR", c.BackupDir)
	c.RestoreMode = getEnv("FINTRACK_RESTORE_MODE", c.RestoreMode)
	c.LogLevel = getEnv("FINTRACK_LOG_LEVEL", c.LogLevel)
	c.BcryptCost = getEnvInt("FINTRACK_BCRYPT_COST", c.BcryptCost)
	c.ReportCacheSize = getEnvInt("FINTRACK_REPORT_CACHE_SIZE", c.ReportCacheSize)
	c.ReportCacheTTL = getEnvDuration("FINTRACK_REPORT_CACHE_TTL", c.ReportCacheTTL)
	c.EnforceOwnership = getEnvBool("FINTRACK_ENFORCE_OWNERSHIP", c.EnforceOwnership)
	c.AMQP.URL = getEnv("FINTRACK_AMQP_URL", c.AMQP.URL)
	c.AMQP.Exchange = getEnv("FINTRACK_AMQP_EXCHANGE", c.AMQP.Exchange)
	c.AMQP.Queue = getEnv("FINTRACK_AMQP_QUEUE", c.AMQP.Queue)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, "database path cannot be empty")
	}
	if strings.TrimSpace(c.BackupDir) == "" {
		errs = append(errs, "backup directory cannot be empty")
	}

	if c.RestoreMode != RestoreMerge && c.RestoreMode != RestoreReplace {
		errs = append(errs, fmt.Sprintf("invalid restore mode '%s': must be one of [%s %s]", c.RestoreMode, RestoreMerge, RestoreReplace))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	// bcrypt accepts costs 4 through 31
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Sprintf("invalid bcrypt cost %d: must be between 4 and 31", c.BcryptCost))
	}

	if c.ReportCacheSize < 0 {
		errs = append(errs, fmt.Sprintf("invalid report cache size %d: must not be negative", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid report cache ttl %v: must not be negative", c.ReportCacheTTL))
	}

	if c.AMQP.URL != "" {
		if parsedURL, err := url.Parse(c.AMQP.URL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQP.Exchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQP.Queue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
