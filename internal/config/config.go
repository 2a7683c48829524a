package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fare-predict/internal/inference"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Dataset DatasetConfig `yaml:"dataset"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"` // "production" switches gin to release mode
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ModelConfig struct {
	// Type is one of linear, tree_ensemble, remote.
	Type string `yaml:"type"`
	// Path is the artifact file, or the server base URL for remote models.
	Path string `yaml:"path"`
}

// DatasetConfig controls the optional dataset download. Prediction never reads it.
type DatasetConfig struct {
	Enabled bool   `yaml:"enabled"`
	FileID  string `yaml:"file_id"`
	URL     string `yaml:"url"` // overrides FileID when set
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json or console
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			Env:            "development",
			AllowedOrigins: []string{"*"},
		},
		Model: ModelConfig{
			Type: inference.KindLinear,
			Path: "fare_prediction_model.json",
		},
		Dataset: DatasetConfig{
			FileID: "1Z6--9jyYoMhEbOXNI5HNDhM0JtgJfQj9",
			Path:   "airline_data.csv",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// Load reads path (if non-empty), applies .env and FARE_* overrides, and validates.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	// A missing .env is normal; only a malformed one is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		// Relative artifact paths are resolved against the config file directory
		// when the file exists there, otherwise left relative to cwd.
		if c.Model.Type != inference.KindRemote {
			c.Model.Path = resolveRelative(path, c.Model.Path)
		}
		c.Dataset.Path = resolveRelative(path, c.Dataset.Path)
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Model.Type {
	case inference.KindLinear, inference.KindTreeEnsemble, inference.KindRemote:
	default:
		return fmt.Errorf("model.type %q is not one of linear, tree_ensemble, remote", c.Model.Type)
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	if c.Dataset.Enabled && c.Dataset.Path == "" {
		return errors.New("dataset.path is required when the dataset is enabled")
	}
	if c.Dataset.Enabled && c.Dataset.URL == "" && c.Dataset.FileID == "" {
		return errors.New("dataset.url or dataset.file_id is required when the dataset is enabled")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is not json or console", c.Log.Format)
	}
	return nil
}

// Production reports whether the server runs in release mode.
func (c *Config) Production() bool {
	return c.Server.Env == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("FARE_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FARE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("FARE_ENV"); ok && v != "" {
		c.Server.Env = v
	}
	if v, ok := lookup("FARE_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("FARE_MODEL_TYPE"); ok && v != "" {
		c.Model.Type = v
	}
	if v, ok := lookup("FARE_MODEL_PATH"); ok && v != "" {
		c.Model.Path = v
	}
	if v, ok := lookup("FARE_DATASET_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FARE_DATASET_ENABLED: %w", err)
		}
		c.Dataset.Enabled = enabled
	}
	if v, ok := lookup("FARE_DATASET_PATH"); ok && v != "" {
		c.Dataset.Path = v
	}
	if v, ok := lookup("FARE_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("FARE_LOG_FILE"); ok && v != "" {
		c.Log.File = v
	}
	return nil
}

func resolveRelative(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(filepath.Dir(configPath), p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
