// Package config loads kanjinote settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// MaxLevel is the last level of the curriculum.
const MaxLevel = 60

// Config is the root configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Store   StoreConfig   `yaml:"store"`
	Learner LearnerConfig `yaml:"learner"`
	Log     LogConfig     `yaml:"log"`
}

// DataConfig points at the static tables.
type DataConfig struct {
	Dir string `yaml:"dir" env:"KANJINOTE_DATA_DIR" env-default:"./data"`
}

// StoreConfig locates the sqlite file holding user overrides.
type StoreConfig struct {
	Path string `yaml:"path" env:"KANJINOTE_STORE_PATH" env-default:"kanjinote.db"`
}

// LearnerConfig describes the learner.
type LearnerConfig struct {
	Level int `yaml:"level" env:"KANJINOTE_LEVEL" env-default:"60"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level" env:"KANJINOTE_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"KANJINOTE_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The file is path, else KANJINOTE_CONFIG, else ./kanjinote.yaml. A missing
// file is an error only when it was named explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = os.Getenv("KANJINOTE_CONFIG")
		explicitPath = path != ""
	}
	if !explicitPath {
		path = "./kanjinote.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded values. Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Dir) == "" {
		return fmt.Errorf("data.dir must be set")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path must be set")
	}
	if c.Learner.Level < 1 || c.Learner.Level > MaxLevel {
		return fmt.Errorf("learner.level must be between 1 and %d (got %d)", MaxLevel, c.Learner.Level)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (l LogConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text (got %q)", l.Format)
	}
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error (got %q)", l.Level)
	}
	return nil
}
