// Package config loads process configuration for the recur command.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. RECUR_SERVER_ADDR
const EnvPrefix = "RECUR"

// Config represents application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
	Engine EngineConfig `mapstructure:"engine"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig configures the HTTP occurrence service
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	Path         string        `mapstructure:"path"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ClientConfig configures requests to a remote occurrence service
type ClientConfig struct {
	URL      string        `mapstructure:"url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// EngineConfig configures the recurrence engine
type EngineConfig struct {
	// MaxIterations caps the work done per expansion (0 = unlimited)
	MaxIterations int `mapstructure:"max_iterations"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // text or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.path", "/occurrences")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("client.url", "")
	v.SetDefault("client.username", "")
	v.SetDefault("client.password", "")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("engine.max_iterations", recurrence.ServiceEngineConfig.MaxIterations)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load loads configuration from configPath, or from recur.yaml in the working
// directory or $HOME/.config/recur when configPath is empty. A missing default
// file is not an error; a missing explicit one is. Environment variables
// prefixed with RECUR_ override both.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("recur")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/recur")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with /")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative")
	}
	if c.Client.Password != "" && c.Client.Username == "" {
		return fmt.Errorf("client.password requires client.username")
	}
	if c.Engine.MaxIterations < 0 {
		return fmt.Errorf("engine.max_iterations must not be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// RecurrenceConfig returns the engine configuration with logger attached
func (c *Config) RecurrenceConfig(logger *slog.Logger) recurrence.EngineConfig {
	return recurrence.EngineConfig{
		Logger:        logger,
		MaxIterations: c.Engine.MaxIterations,
	}
}

// NewLogger builds the process logger described by cfg, writing to w
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
