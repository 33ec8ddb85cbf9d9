package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"phylorank/internal/adapters/filesystem"
	"phylorank/internal/application"
	"phylorank/internal/domain"
)

const (
	// DefaultConfigPath is read when PHYLORANK_CONFIG is unset
	DefaultConfigPath = "~/.config/phylorank/config.yaml"

	envConfig = "PHYLORANK_CONFIG"
	envDB     = "PHYLORANK_DB"
)

// Config holds settings shared by the CLI and the MCP server
type Config struct {
	Store    string   `yaml:"store"`
	LogLevel string   `yaml:"log_level"`
	Decorate Decorate `yaml:"decorate"`
}

// Decorate holds default decorate options. Command-line flags override them.
type Decorate struct {
	MinChildren  int     `yaml:"min_children"`
	MinSupport   float64 `yaml:"min_support"`
	MaxRDDiff    float64 `yaml:"max_rd_diff"`
	SkipRDRefine bool    `yaml:"skip_rd_refine"`
	TrustedTaxa  string  `yaml:"trusted_taxa"`
	FillRankGaps bool    `yaml:"fill_rank_gaps"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Store:    DBPath(),
		LogLevel: "info",
		Decorate: Decorate{
			MaxRDDiff: domain.DefaultMaxRDDiff,
		},
	}
}

// ConfigPath returns the config file path from PHYLORANK_CONFIG,
// falling back to DefaultConfigPath.
func ConfigPath() string {
	if env := os.Getenv(envConfig); env != "" {
		return env
	}
	return DefaultConfigPath
}

// DBPath returns the placement store path from PHYLORANK_DB, falling back
// to $XDG_DATA_HOME/phylorank/placements.db.
func DBPath() string {
	if env := os.Getenv(envDB); env != "" {
		return env
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "phylorank", "placements.db")
}

// Load reads the config file at path over the defaults. A missing file is
// only an error when required is set. PHYLORANK_DB takes precedence over
// the file's store entry.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filesystem.ExpandPath(path))
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if env := os.Getenv(envDB); env != "" {
		cfg.Store = env
	}
	cfg.Store = filesystem.ExpandPath(cfg.Store)
	cfg.Decorate.TrustedTaxa = filesystem.ExpandPath(cfg.Decorate.TrustedTaxa)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the decorate defaults and the log level
func (c Config) Validate() error {
	if err := application.ValidateNonNegative("minChildren", c.Decorate.MinChildren); err != nil {
		return err
	}
	if c.Decorate.MinSupport < 0 {
		return &application.ValidationError{
			Field:   "minSupport",
			Message: fmt.Sprintf("minimum support must not be negative, got %g", c.Decorate.MinSupport),
		}
	}
	if err := application.ValidateRange("maxRDDiff", c.Decorate.MaxRDDiff, 0, 1); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return &application.ValidationError{Field: "logLevel", Message: err.Error()}
	}
	return nil
}

// Level parses the configured log level
func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(c.LogLevel)
}

