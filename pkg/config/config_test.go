package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "kanjinote.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
data:
  dir: "/srv/kanji"
store:
  path: "/var/lib/kanjinote.db"
learner:
  level: 12
log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/kanji", cfg.Data.Dir)
	assert.Equal(t, "/var/lib/kanjinote.db", cfg.Store.Path)
	assert.Equal(t, 12, cfg.Learner.Level)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("KANJINOTE_LEVEL", "30")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Learner.Level)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KANJINOTE_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, "kanjinote.db", cfg.Store.Path)
	assert.Equal(t, MaxLevel, cfg.Learner.Level)
	assert.Equal(t, LogConfig{Level: "info", Format: "text"}, cfg.Log)
}

func TestLoad_ConfigEnvPath(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("KANJINOTE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Learner.Level)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Data:    DataConfig{Dir: "d"},
			Store:   StoreConfig{Path: "p"},
			Learner: LearnerConfig{Level: 1},
			Log:     LogConfig{Level: "warn", Format: "text"},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no data dir", func(c *Config) { c.Data.Dir = " " }, "data.dir"},
		{"no store", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"level zero", func(c *Config) { c.Learner.Level = 0 }, "learner.level"},
		{"level too high", func(c *Config) { c.Learner.Level = 61 }, "learner.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "format"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "level must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json"}, &buf)
	logger.Info("test message", "kanji", "校")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	assert.Equal(t, "test message", m["msg"])
	assert.Equal(t, "校", m["kanji"])
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Format: "text"}, &buf)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "source=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
