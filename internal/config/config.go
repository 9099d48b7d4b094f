package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lazypower/decay/internal/decay"
)

// Config holds all decay configuration.
type Config struct {
	Decay    decay.Params   `yaml:"decay"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Output   OutputConfig   `yaml:"output"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type OutputConfig struct {
	Strict bool `yaml:"strict"` // reject decay_rate >= 1 instead of printing NaN/0
	Places int  `yaml:"places"` // round printed values; -1 prints full precision
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Decay: decay.Params{
			InitialAmount: 1000,
			DecayRate:     0.01, // 1% per second
			ElapsedTime:   10,
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Output: OutputConfig{
			Places: -1,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path and then
// with environment overrides. An empty path falls back to $DECAY_CONFIG;
// if that is also empty, no file is read.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("DECAY_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if db := os.Getenv("DECAY_DB"); db != "" {
		cfg.Database.Path = db
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
// Decay inputs are not checked; see Output.Strict.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.Bind == "" {
		errs = append(errs, errors.New("server.bind is empty"))
	}
	if c.Output.Places < -1 {
		errs = append(errs, fmt.Errorf("output.places %d must be -1 or more", c.Output.Places))
	}
	return errors.Join(errs...)
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
