package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environments recognised by the server. Development exposes panic details
// in 500 responses.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all server configuration.
type Config struct {
	// Environment is "development" or "production".
	Environment string `yaml:"environment"`

	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	StaticDir         string `yaml:"static_dir"` // served under /static/ when set
	ReadTimeout       string `yaml:"read_timeout"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
	WriteTimeout      string `yaml:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout"`
	ShutdownTimeout   string `yaml:"shutdown_timeout"`
}

// DataConfig locates the sightings file.
type DataConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvProduction,
		Server: ServerConfig{
			Addr:              ":3000",
			ReadTimeout:       "5s",
			ReadHeaderTimeout: "2s",
			WriteTimeout:      "10s",
			IdleTimeout:       "60s",
			ShutdownTimeout:   "5s",
		},
		Data: DataConfig{
			Path: "data/sightings.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML config file, then a .env file from the working
// directory, then applies environment overrides. A missing config file or
// .env file is not an error; path may be empty.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		host, _, err := net.SplitHostPort(c.Server.Addr)
		if err != nil {
			host = ""
		}
		c.Server.Addr = net.JoinHostPort(host, port)
	}
	if host := os.Getenv("HOST"); host != "" {
		_, port, err := net.SplitHostPort(c.Server.Addr)
		if err != nil {
			port = "3000"
		}
		c.Server.Addr = net.JoinHostPort(host, port)
	}
	if path := os.Getenv("SIGHTINGS_DATA"); path != "" {
		c.Data.Path = path
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		c.Environment = strings.ToLower(env)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Logging.Format = strings.ToLower(format)
	}
}

// IsDevelopment reports whether the development environment is active.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// GetReadTimeout returns the read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 5*time.Second)
}

// GetReadHeaderTimeout returns the read header timeout as a duration.
func (c *Config) GetReadHeaderTimeout() time.Duration {
	return parseDuration(c.Server.ReadHeaderTimeout, 2*time.Second)
}

// GetWriteTimeout returns the write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 10*time.Second)
}

// GetIdleTimeout returns the idle timeout as a duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return parseDuration(c.Server.IdleTimeout, 60*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

var (
	validEnvironments = []string{EnvDevelopment, EnvProduction}
	validLevels       = []string{"debug", "info", "warn", "error"}
	validFormats      = []string{"json", "console"}
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address not configured")
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("invalid server address %q: %w", c.Server.Addr, err)
	}
	if c.Data.Path == "" {
		return errors.New("data path not configured (set data.path or SIGHTINGS_DATA)")
	}
	if !contains(validEnvironments, c.Environment) {
		return fmt.Errorf("invalid environment: %s (valid: %v)", c.Environment, validEnvironments)
	}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLevels)
	}
	if !contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, validFormats)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
