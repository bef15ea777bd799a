// Package api serves the assessment engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/chaspy/toeic-assessment-poc/internal/assessment"
	"github.com/chaspy/toeic-assessment-poc/internal/metrics"
)

// Engine is the part of the assessment engine the API drives.
type Engine interface {
	Start(ctx context.Context, userAgent string) assessment.StartOutput
	Answer(ctx context.Context, in assessment.AnswerInput) (assessment.NextOutput, error)
	Next(ctx context.Context, sessionID string) (assessment.NextOutput, error)
	Finish(ctx context.Context, sessionID string) (assessment.Result, error)
	FinishLite(ctx context.Context, sessionID string) (assessment.Result, error)
	Insights(ctx context.Context, sessionID string) (assessment.InsightsOutput, error)
	Result(ctx context.Context, sessionID string) (assessment.Result, error)
	Explain(ctx context.Context, sessionID, itemID string) (assessment.ExplainOutput, error)
}

var _ Engine = (*assessment.Engine)(nil)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration // 0 disables the per-request timeout
	StaticDir      string        // served at / when set

	// Metrics, when set, records request metrics and serves /metrics.
	Metrics *metrics.Metrics

	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(ctx context.Context) error

	Logger *zap.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	engine Engine
	opts   Options
	logger *zap.Logger
}

// New returns a server over engine.
func New(engine Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: engine, opts: opts, logger: logger}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	if s.opts.Metrics != nil {
		r.Use(s.instrument)
	}

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Length", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/v1/assessment", func(r chi.Router) {
		if s.opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.opts.RequestTimeout))
		}
		r.Post("/start", s.handleStart)
		r.Post("/answer", s.handleAnswer)
		r.Post("/finish", s.handleFinish)
		r.Post("/finish-lite", s.handleFinishLite)
		r.Post("/insights", s.handleInsights)
		r.Post("/explain", s.handleExplain)
		r.Get("/result/{sessionID}", s.handleResult)
		r.Get("/next/{sessionID}", s.handleNext)
	})

	if s.opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.StaticDir)))
	}

	return r
}

// requestLogger logs one line per request with zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// instrument records request count and latency by route pattern, so that
// session ids do not explode label cardinality.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.opts.Metrics.ObserveRequest(r.Method, route, status, time.Since(start))
	})
}
