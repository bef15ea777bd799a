// Package config loads service configuration from defaults, an optional
// YAML file, TOEIC_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chaspy/toeic-assessment-poc/internal/feedback"
	"github.com/chaspy/toeic-assessment-poc/internal/llm"
	"github.com/chaspy/toeic-assessment-poc/internal/logging"
	"github.com/chaspy/toeic-assessment-poc/internal/telemetry"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "TOEIC"

// Feedback generator kinds.
const (
	GeneratorLLM     = "llm"
	GeneratorCatalog = "catalog"
)

// Config is the full service configuration.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Pool      PoolConfig      `mapstructure:"pool"`
	Feedback  FeedbackConfig  `mapstructure:"feedback"`
	LLM       llm.Config      `mapstructure:"llm"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       logging.Config  `mapstructure:"log"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`

	// StaticDir, when set, is served at / for a browser client.
	StaticDir string `mapstructure:"static_dir"`
}

// PoolConfig locates the item pool. An empty path uses the embedded pool.
type PoolConfig struct {
	Path string `mapstructure:"path"`
}

// FeedbackConfig selects and tunes the feedback generator.
type FeedbackConfig struct {
	// Generator is "llm" (default) or "catalog". With "llm" and no
	// provider, full feedback is unavailable; catalog advice is only used
	// when selected explicitly.
	Generator       string `mapstructure:"generator"`
	feedback.Config `mapstructure:",squash"`
}

// TelemetryConfig configures the event and result log.
type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"` // sqlite or postgres
	DSN     string `mapstructure:"dsn"`    // sqlite: file path; postgres: connection URL
}

// New returns a viper instance carrying every default and environment
// binding. Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider settings keep their short TOEIC_ names and also accept the
	// providers' own variables.
	bind := func(key string, envs ...string) {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	bind("llm.provider", "TOEIC_LLM_PROVIDER")
	bind("llm.timeout", "TOEIC_LLM_TIMEOUT")
	bind("llm.anthropic.api_key", "TOEIC_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	bind("llm.anthropic.model", "TOEIC_ANTHROPIC_MODEL")
	bind("llm.anthropic.base_url", "TOEIC_ANTHROPIC_BASE_URL")
	bind("llm.openai.api_key", "TOEIC_OPENAI_API_KEY", "OPENAI_API_KEY")
	bind("llm.openai.model", "TOEIC_OPENAI_MODEL", "OPENAI_MODEL")
	bind("llm.openai.base_url", "TOEIC_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	bind("llm.gemini.api_key", "TOEIC_GEMINI_API_KEY", "GEMINI_API_KEY")
	bind("llm.gemini.model", "TOEIC_GEMINI_MODEL")
	bind("llm.gemini.base_url", "TOEIC_GEMINI_BASE_URL")
	bind("llm.openrouter.api_key", "TOEIC_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	bind("llm.openrouter.model", "TOEIC_OPENROUTER_MODEL")
	bind("llm.openrouter.app_url", "TOEIC_OPENROUTER_APP_URL")
	bind("llm.openrouter.app_title", "TOEIC_OPENROUTER_APP_TITLE")
	bind("telemetry.dsn", "TOEIC_TELEMETRY_DSN", "TOEIC_DB")

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":3051")
	v.SetDefault("http.static_dir", "")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.request_timeout", 45*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("pool.path", "")

	fb := feedback.DefaultConfig()
	v.SetDefault("feedback.generator", "")
	v.SetDefault("feedback.advice_max_tokens", fb.AdviceMaxTokens)
	v.SetDefault("feedback.explain_max_tokens", fb.ExplainMaxTokens)
	v.SetDefault("feedback.temperature", fb.Temperature)

	lc := llm.DefaultConfig()
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", lc.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", lc.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", lc.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", lc.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", lc.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.openrouter.app_url", "")
	v.SetDefault("llm.openrouter.app_title", "")
	v.SetDefault("llm.retry.max_attempts", lc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lc.Retry.Multiplier)
	v.SetDefault("llm.rate_limit.requests_per_second", lc.RateLimit.RequestsPerSecond)
	v.SetDefault("llm.rate_limit.burst", lc.RateLimit.Burst)

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.driver", telemetry.DriverSQLite)
	v.SetDefault("telemetry.dsn", "")

	lg := logging.DefaultConfig()
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.format", lg.Format)
	v.SetDefault("log.file", lg.File)
	v.SetDefault("log.max_size_mb", lg.MaxSizeMB)
	v.SetDefault("log.max_backups", lg.MaxBackups)
	v.SetDefault("log.max_age_days", lg.MaxAgeDays)
	v.SetDefault("log.compress", lg.Compress)
}

// Load reads configFile (when non-empty) into v and decodes the result.
// The returned config has its provider and generator resolved and has
// been validated.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolve picks a provider from the configured API keys when none was
// named. The generator defaults to llm even when no key is set.
func (c *Config) resolve() {
	if c.LLM.Provider == "" {
		switch {
		case c.LLM.Gemini.APIKey != "":
			c.LLM.Provider = llm.ProviderGemini
		case c.LLM.OpenAI.APIKey != "":
			c.LLM.Provider = llm.ProviderOpenAI
		case c.LLM.Anthropic.APIKey != "":
			c.LLM.Provider = llm.ProviderAnthropic
		case c.LLM.OpenRouter.APIKey != "":
			c.LLM.Provider = llm.ProviderOpenRouter
		}
	}
	if c.Feedback.Generator == "" {
		c.Feedback.Generator = GeneratorLLM
	}
}

// Validate fails fast on settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must be positive"))
	}

	switch c.Feedback.Generator {
	case GeneratorCatalog:
	case GeneratorLLM:
		if c.LLM.Provider != "" {
			if err := c.LLM.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("llm: %w", err))
			}
		}
		if c.LLM.Timeout <= 0 {
			errs = append(errs, errors.New("llm.timeout must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("feedback.generator must be %s or %s, got %q", GeneratorLLM, GeneratorCatalog, c.Feedback.Generator))
	}
	if c.Feedback.AdviceMaxTokens <= 0 || c.Feedback.ExplainMaxTokens <= 0 {
		errs = append(errs, errors.New("feedback max tokens must be positive"))
	}

	if c.Telemetry.Enabled {
		switch c.Telemetry.Driver {
		case telemetry.DriverSQLite, telemetry.DriverPostgres:
		default:
			errs = append(errs, fmt.Errorf("telemetry.driver must be %s or %s, got %q", telemetry.DriverSQLite, telemetry.DriverPostgres, c.Telemetry.Driver))
		}
		if c.Telemetry.Driver == telemetry.DriverPostgres && c.Telemetry.DSN == "" {
			errs = append(errs, errors.New("telemetry.dsn is required for postgres"))
		}
	}

	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// TelemetryDSN returns the configured DSN, defaulting to the per-user
// SQLite database for the sqlite driver.
func (c *Config) TelemetryDSN() (string, error) {
	if c.Telemetry.DSN != "" || c.Telemetry.Driver != telemetry.DriverSQLite {
		return c.Telemetry.DSN, nil
	}
	return telemetry.DefaultDBPath()
}
