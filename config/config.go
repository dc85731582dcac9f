// Package config loads the service configuration from defaults, an optional
// YAML file, a .env file and the process environment, in that order.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/rulego/indicators/internal/errors"
	"github.com/rulego/indicators/logger"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Engine   EngineConfig   `yaml:"engine"`
	Dataset  DatasetConfig  `yaml:"dataset"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory store.
type DatabaseConfig struct {
	URL     string `yaml:"url"`
	Migrate bool   `yaml:"migrate"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// EngineConfig holds formula evaluation settings
type EngineConfig struct {
	MaxRows     int           `yaml:"max_rows"`
	Timeout     time.Duration `yaml:"timeout"`
	CacheSize   int           `yaml:"cache_size"`
	Concurrency int           `yaml:"concurrency"`
}

// DatasetConfig holds survey ingestion settings
type DatasetConfig struct {
	NumericThreshold float64 `yaml:"numeric_threshold"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Migrate: true},
		Log:      LogConfig{Level: "INFO"},
		Engine: EngineConfig{
			MaxRows:     1_000_000,
			Timeout:     30 * time.Second,
			CacheSize:   512,
			Concurrency: 4,
		},
		Dataset: DatasetConfig{NumericThreshold: 0.9},
	}
}

// Load builds the configuration. The YAML file named by CONFIG_FILE is read
// first, then .env, then environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to read .env")
	}
	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, errors.Wrap(err, "failed to load environment configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("failed to read config file %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("failed to parse config file %s: %v", path, err))
	}
	return nil
}

func (c *Config) loadEnv(lookup func(string) (string, bool)) error {
	var err error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" && err == nil {
			n, e := cast.ToIntE(v)
			if e != nil {
				err = errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, v))
				return
			}
			*dst = n
		}
	}

	str("HTTP_ADDR", &c.Server.Addr)
	str("DATABASE_URL", &c.Database.URL)
	str("LOG_LEVEL", &c.Log.Level)
	num("MAX_ROWS", &c.Engine.MaxRows)
	num("FORMULA_CACHE_SIZE", &c.Engine.CacheSize)
	num("COMPUTE_CONCURRENCY", &c.Engine.Concurrency)

	if v, ok := lookup("DB_MIGRATE"); ok && v != "" && err == nil {
		b, e := cast.ToBoolE(v)
		if e != nil {
			err = errors.ConfigInvalid(fmt.Sprintf("DB_MIGRATE must be a boolean, got %q", v))
		}
		c.Database.Migrate = b
	}
	if v, ok := lookup("EVAL_TIMEOUT"); ok && v != "" && err == nil {
		d, e := parseTimeout(v)
		if e != nil {
			err = errors.ConfigInvalid(fmt.Sprintf("EVAL_TIMEOUT must be a duration, got %q", v))
		}
		c.Engine.Timeout = d
	}
	if v, ok := lookup("NUMERIC_THRESHOLD"); ok && v != "" && err == nil {
		f, e := cast.ToFloat64E(v)
		if e != nil {
			err = errors.ConfigInvalid(fmt.Sprintf("NUMERIC_THRESHOLD must be a number, got %q", v))
		}
		c.Dataset.NumericThreshold = f
	}
	return err
}

// parseTimeout reads a Go duration string. A bare number counts as seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsInf(secs, 0) && !math.IsNaN(secs) {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return cast.ToDurationE(v)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.ConfigInvalid("server address is required")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	if c.Engine.MaxRows < 0 {
		return errors.ConfigInvalid("max rows must not be negative")
	}
	if c.Engine.Timeout < 0 {
		return errors.ConfigInvalid("evaluation timeout must not be negative")
	}
	if c.Engine.CacheSize < 0 {
		return errors.ConfigInvalid("formula cache size must not be negative")
	}
	if c.Engine.Concurrency < 1 {
		return errors.ConfigInvalid("compute concurrency must be at least 1")
	}
	if c.Dataset.NumericThreshold <= 0 || c.Dataset.NumericThreshold > 1 {
		return errors.ConfigInvalid("numeric threshold must be in (0, 1]")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logger.Level {
	lvl, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.INFO
	}
	return lvl
}
