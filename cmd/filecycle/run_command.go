package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"filecycle/internal/daemon"
	"filecycle/internal/journal"
	"filecycle/internal/logging"
	"filecycle/internal/metrics"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Rotate on the configured schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(cmd.Context(), ctx)
		},
	}
}

func runScheduler(cmdCtx context.Context, ctx *commandContext) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := journal.Open(cfg)
	if err != nil {
		logging.ErrorWithContext(logger, "open journal", "journal_failed", logging.Error(err))
		return err
	}

	collector := metrics.NewCollector(nil)
	d, err := daemon.New(cfg, store, logger, daemon.WithMetrics(collector))
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if cfg.Metrics.Bind != "" {
		srv, err := startMetricsServer(cfg.Metrics.Bind, cfg.Metrics.Path, collector, logger)
		if err != nil {
			return err
		}
		logger.Info("metrics endpoint listening",
			logging.String(logging.FieldEventType, "metrics_listening"),
			logging.String("addr", srv.Addr),
			logging.String("path", cfg.Metrics.Path),
		)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	if next := d.NextRun(); next != nil {
		logger.Info("next rotation scheduled", slog.Time("next_run", *next))
	}

	<-signalCtx.Done()
	logger.Info("filecycle shutting down")
	return nil
}

func startMetricsServer(bind, path string, collector *metrics.Collector, logger *slog.Logger) (*http.Server, error) {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", bind, err)
	}
	mux := http.NewServeMux()
	mux.Handle(path, collector.Handler())
	srv := &http.Server{
		Addr:              listener.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(logger, "metrics endpoint stopped", "metrics_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check metrics.bind"),
			)
		}
	}()
	return srv, nil
}
