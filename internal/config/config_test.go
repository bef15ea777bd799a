package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaspy/toeic-assessment-poc/internal/llm"
	"github.com/chaspy/toeic-assessment-poc/internal/telemetry"
)

// clearProviderEnv keeps keys from the developer's shell out of the tests.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TOEIC_LLM_PROVIDER", "TOEIC_FEEDBACK_GENERATOR", "TOEIC_ANTHROPIC_API_KEY", "TOEIC_OPENAI_API_KEY",
		"TOEIC_GEMINI_API_KEY", "TOEIC_OPENROUTER_API_KEY",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
		"OPENAI_BASE_URL", "OPENAI_MODEL", "TOEIC_DB", "TOEIC_TELEMETRY_DSN",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":3051", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Empty(t, cfg.Pool.Path)
	assert.Equal(t, GeneratorLLM, cfg.Feedback.Generator, "no provider key still selects the llm generator")
	assert.Empty(t, cfg.LLM.Provider)
	assert.Equal(t, 1024, cfg.Feedback.AdviceMaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, telemetry.DriverSQLite, cfg.Telemetry.Driver)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("TOEIC_HTTP_ADDR", ":9090")
	t.Setenv("TOEIC_POOL_PATH", "/srv/pool.yaml")
	t.Setenv("TOEIC_LLM_PROVIDER", "openai")
	t.Setenv("TOEIC_OPENAI_API_KEY", "sk-test")
	t.Setenv("TOEIC_LLM_TIMEOUT", "5s")
	t.Setenv("TOEIC_LOG_LEVEL", "debug")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "/srv/pool.yaml", cfg.Pool.Path)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, GeneratorLLM, cfg.Feedback.Generator)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_StandardProviderEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-std")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:1234/v1")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-std", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.OpenAI.BaseURL)
	assert.Equal(t, GeneratorLLM, cfg.Feedback.Generator)
}

func TestLoad_ProviderPriority(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("GEMINI_API_KEY", "g")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
}

func TestLoad_File(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":7070"
  cors_origins: ["https://example.test"]
feedback:
  generator: llm
  temperature: 0.2
llm:
  provider: mock
  retry:
    max_attempts: 2
telemetry:
  enabled: false
log:
  format: json
`), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://example.test"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, GeneratorLLM, cfg.Feedback.Generator)
	assert.InDelta(t, 0.2, cfg.Feedback.Temperature, 1e-9)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.LLM.Retry.MaxAttempts)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_CatalogGeneratorOnlyWhenSelected(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("TOEIC_FEEDBACK_GENERATOR", "catalog")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, GeneratorCatalog, cfg.Feedback.Generator)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":7070\"\n"), 0o644))
	t.Setenv("TOEIC_HTTP_ADDR", ":6060")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.HTTP.Addr)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("TOEIC_HTTP_ADDR", ":6060")

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("addr", "", "")
	require.NoError(t, fs.Parse([]string{"--addr", ":5050"}))

	v := New()
	require.NoError(t, v.BindPFlag("http.addr", fs.Lookup("addr")))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, ":5050", cfg.HTTP.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearProviderEnv(t)
	base := func() *Config {
		cfg, err := Load(New(), "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }},
		{"unknown generator", func(c *Config) { c.Feedback.Generator = "oracle" }},
		{"llm without key", func(c *Config) {
			c.Feedback.Generator = GeneratorLLM
			c.LLM.Provider = llm.ProviderAnthropic
		}},
		{"unknown driver", func(c *Config) { c.Telemetry.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Telemetry.Driver = telemetry.DriverPostgres }},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"zero tokens", func(c *Config) { c.Feedback.AdviceMaxTokens = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("llm generator without provider is allowed", func(t *testing.T) {
		cfg := base()
		require.Equal(t, GeneratorLLM, cfg.Feedback.Generator)
		require.Empty(t, cfg.LLM.Provider)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("telemetry disabled skips driver", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.Enabled = false
		cfg.Telemetry.Driver = "mysql"
		assert.NoError(t, cfg.Validate())
	})
}

func TestTelemetryDSN(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("TOEIC_DB", filepath.Join(t.TempDir(), "t.db"))

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	// TOEIC_DB is bound to telemetry.dsn.
	dsn, err := cfg.TelemetryDSN()
	require.NoError(t, err)
	assert.Equal(t, os.Getenv("TOEIC_DB"), dsn)

	cfg.Telemetry.DSN = "postgres://u@h/db"
	cfg.Telemetry.Driver = telemetry.DriverPostgres
	dsn, err = cfg.TelemetryDSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u@h/db", dsn)
}
