package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chaspy/toeic-assessment-poc/internal/api"
	"github.com/chaspy/toeic-assessment-poc/internal/assessment"
	"github.com/chaspy/toeic-assessment-poc/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assessment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		rt, err := newRuntime(ctx, os.Stderr, assessment.WithRecorder(m))
		if err != nil {
			return err
		}
		defer rt.Close()
		m.RegisterSessionGauge(rt.store.Len)

		cfg, logger := rt.cfg, rt.logger
		handler := api.New(rt.engine, api.Options{
			CORSOrigins:    cfg.HTTP.CORSOrigins,
			RequestTimeout: cfg.HTTP.RequestTimeout,
			StaticDir:      cfg.HTTP.StaticDir,
			Metrics:        m,
			Ready:          rt.Ready,
			Logger:         logger,
		}).Handler()

		srv := &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down", zap.Duration("timeout", cfg.HTTP.ShutdownTimeout))
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", "", "Listen address (default :3051)")
	flags.String("static", "", "Directory served at / for a browser client")
	_ = v.BindPFlag("http.addr", flags.Lookup("addr"))
	_ = v.BindPFlag("http.static_dir", flags.Lookup("static"))
}
