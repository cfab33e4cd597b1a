// Package config loads runtime settings and provides the default rule
// catalog.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
)

const appName = "reclaim"

// Config keys.
const (
	KeyDBPath            = "db_path"
	KeyLogLevel          = "log_level"
	KeyLogFile           = "log_file"
	KeyWorkers           = "workers"
	KeyResidueCutoffDays = "residue_cutoff_days"
)

// Config is the resolved runtime configuration.
type Config struct {
	DBPath            string
	LogLevel          string
	LogFile           string
	Workers           int
	ResidueCutoffDays int
	// File is the config file that was read, empty when none was found.
	File string
}

// ResidueCutoff returns the residue age cutoff as a duration.
func (c *Config) ResidueCutoff() time.Duration {
	return rules.Days(int64(c.ResidueCutoffDays))
}

// DefaultConfigDir returns the directory searched for config.yaml.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// DefaultDBPath returns the rule database location.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, appName, "rules.db")
}

// DefaultLogFile returns the log file location.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// Load reads configuration from file (or config.yaml in the default config
// directory when file is empty), then RECLAIM_* environment variables.
// A missing default file is not an error; a missing explicit file is.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyDBPath, DefaultDBPath())
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, DefaultLogFile())
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyResidueCutoffDays, 180)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(DefaultConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:            v.GetString(KeyDBPath),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFile:           v.GetString(KeyLogFile),
		Workers:           v.GetInt(KeyWorkers),
		ResidueCutoffDays: v.GetInt(KeyResidueCutoffDays),
		File:              v.ConfigFileUsed(),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("%s must not be empty", KeyDBPath)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ResidueCutoffDays <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyResidueCutoffDays, c.ResidueCutoffDays)
	}
	return nil
}
