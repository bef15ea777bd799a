package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chaspy/toeic-assessment-poc/data"
	"github.com/chaspy/toeic-assessment-poc/internal/assessment"
	"github.com/chaspy/toeic-assessment-poc/internal/config"
	"github.com/chaspy/toeic-assessment-poc/internal/feedback"
	"github.com/chaspy/toeic-assessment-poc/internal/item"
	"github.com/chaspy/toeic-assessment-poc/internal/llm"
	"github.com/chaspy/toeic-assessment-poc/internal/logging"
	"github.com/chaspy/toeic-assessment-poc/internal/session"
	"github.com/chaspy/toeic-assessment-poc/internal/skills"
	"github.com/chaspy/toeic-assessment-poc/internal/telemetry"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:           "toeic-assessment",
	Short:         "Timed reading assessment with score estimates and study advice",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	flags.String("db", "", "Telemetry database (SQLite path or Postgres URL; overrides TOEIC_DB)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("pool", "", "Item pool file (JSON or YAML); the bundled pool when empty")
	_ = v.BindPFlag("telemetry.dsn", flags.Lookup("db"))
	_ = v.BindPFlag("pool.path", flags.Lookup("pool"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(poolCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadPool reads the configured pool file, or the embedded pool.
func loadPool(cfg *config.Config) (*item.Pool, error) {
	if cfg.Pool.Path != "" {
		return item.LoadFile(cfg.Pool.Path)
	}
	return item.ParseJSON(data.DefaultPool)
}

// openTelemetry opens the configured telemetry store.
func openTelemetry(cfg *config.Config) (*telemetry.Store, error) {
	dsn, err := cfg.TelemetryDSN()
	if err != nil {
		return nil, fmt.Errorf("resolve telemetry DSN: %w", err)
	}
	st, err := telemetry.Open(cfg.Telemetry.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open telemetry: %w", err)
	}
	return st, nil
}

// runtime is everything a session-running command needs.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *session.Store[assessment.Result]
	engine    *assessment.Engine
	telemetry *telemetry.Store // nil when telemetry is disabled
}

func (rt *runtime) Close() {
	if rt.telemetry != nil {
		if err := rt.telemetry.Close(); err != nil {
			rt.logger.Warn("close telemetry", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}

// Ready reports whether the telemetry store is reachable.
func (rt *runtime) Ready(ctx context.Context) error {
	if rt.telemetry == nil {
		return nil
	}
	return rt.telemetry.Ping(ctx)
}

// newRuntime loads config and builds the engine with its dependencies.
// console receives human-readable logs; nil keeps logs in the log file only.
func newRuntime(ctx context.Context, console io.Writer, opts ...assessment.Option) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log, console)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	rt := &runtime{cfg: cfg, logger: logger}

	pool, err := loadPool(cfg)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load item pool: %w", err)
	}

	var sink telemetry.Sink = telemetry.Nop{}
	if cfg.Telemetry.Enabled {
		rt.telemetry, err = openTelemetry(cfg)
		if err != nil {
			rt.Close()
			return nil, err
		}
		sink = rt.telemetry
	}

	generator, err := newGenerator(ctx, cfg, sink, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.store = session.NewStore[assessment.Result]()
	opts = append([]assessment.Option{
		assessment.WithSink(sink),
		assessment.WithLogger(logger),
	}, opts...)
	rt.engine, err = assessment.New(rt.store, pool, item.DefaultBlueprint(), generator, opts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}

	logger.Info("engine ready",
		zap.Int("pool_items", pool.Len()),
		zap.String("generator", cfg.Feedback.Generator),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)
	return rt, nil
}

// newGenerator builds the LLM-backed feedback service. The catalog
// generator is used only when selected; with no provider every full
// finish fails with GeneratorUnavailable.
func newGenerator(ctx context.Context, cfg *config.Config, sink telemetry.Sink, logger *zap.Logger) (feedback.Generator, error) {
	catalog := skills.DefaultCatalog()
	if cfg.Feedback.Generator == config.GeneratorCatalog {
		return feedback.NewCatalogGenerator(catalog), nil
	}
	if cfg.LLM.Provider == "" {
		logger.Warn("no LLM provider configured; full feedback is unavailable")
		return feedback.Unconfigured{Reason: "no LLM provider configured"}, nil
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, sink, logger)
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	return feedback.NewService(provider, catalog, cfg.Feedback.Config), nil
}
