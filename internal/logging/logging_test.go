package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", nil, false},
		{"json", func(c *Config) { c.Format = "json" }, false},
		{"debug", func(c *Config) { c.Level = "debug" }, false},
		{"bad level", func(c *Config) { c.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "warn"

	logger, err := New(cfg, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", zap.String("session_id", "abc"))
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "abc")
}

func TestNew_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"

	logger, err := New(cfg, &buf)
	require.NoError(t, err)
	logger.Info("started", zap.Int("items", 20))
	require.NoError(t, logger.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "started", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.EqualValues(t, 20, line["items"])
}

func TestNew_FileOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "service.log")

	logger, err := New(cfg, nil)
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestNew_NoOutputs(t *testing.T) {
	logger, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "nope"
	_, err := New(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}
