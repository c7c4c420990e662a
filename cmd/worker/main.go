package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/archetype-mailer/internal/bootstrap"
	"github.com/kirillkom/archetype-mailer/internal/config"
	"github.com/kirillkom/archetype-mailer/internal/core/usecase"
	"github.com/kirillkom/archetype-mailer/internal/observability/logging"
)

type runFlags struct {
	continuous bool
	interval   int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := runFlags{}
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Classify survey submissions and mail each submitter their archetype report",
		Long: `worker polls the survey record store for unprocessed submissions,
assigns one of four archetypes, renders the matching report template as PDF,
shares it through Google Drive, mails it through Gmail and marks the record.

Without --continuous a single cycle runs and the command exits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %d", flags.interval)
			}
			return run(cmd.Context(), config.Load(), flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.continuous, "continuous", "c", false, "keep polling until interrupted")
	cmd.Flags().IntVarP(&flags.interval, "interval", "i", 60, "seconds between polling cycles in continuous mode")
	return cmd
}

func run(parent context.Context, cfg config.Config, flags runFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	logger, closeLog, err := logging.New("worker", cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		return err
	}
	defer app.Close()

	if cfg.WorkerMetricsPort != "" {
		shutdown := serveMetrics(app, cfg.WorkerMetricsPort, logger)
		defer shutdown()
	}

	err = app.Poller.Run(ctx, usecase.RunOptions{
		Continuous:    flags.continuous,
		Interval:      time.Duration(flags.interval) * time.Second,
		RecordTimeout: cfg.RecordTimeout(),
	})
	if err != nil {
		logger.Error("worker run failed", "error", err)
		return err
	}
	return nil
}

func serveMetrics(app *bootstrap.App, port string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	srv := &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
