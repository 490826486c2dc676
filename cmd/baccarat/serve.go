package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/baccarat-tracker/internal/api"
	"github.com/yourusername/baccarat-tracker/internal/health"
	"github.com/yourusername/baccarat-tracker/internal/scheduler"
)

func (a *app) newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and live analysis feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			// Server logs go to stdout like any other service
			a.logger.SetOutput(cmd.OutOrStdout())

			ctx, stop := signal.NotifyContext(a.context(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override the configured listen port")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	healthCfg := health.Config{
		ServiceName: a.cfg.App.Name,
		Version:     Version,
		Logger:      a.logger,
		Store:       a.store,
	}

	var sched *scheduler.Scheduler
	if a.cfg.AutosaveEnabled() {
		sched = scheduler.NewScheduler(a.tracker, a.logger)
		if _, err := sched.ScheduleAutosave(a.cfg.Storage.AutosaveSchedule); err != nil {
			return fmt.Errorf("failed to schedule autosave: %w", err)
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		healthCfg.Autosave = sched
	}
	checker := health.NewChecker(healthCfg)

	server := api.NewServer(api.Config{
		Addr:           a.cfg.ListenAddress(),
		RateLimit:      a.cfg.Server.RateLimit,
		RateBurst:      a.cfg.Server.RateBurst,
		ReadTimeout:    a.cfg.ReadTimeout(),
		WriteTimeout:   a.cfg.WriteTimeout(),
		MetricsEnabled: a.cfg.Metrics.Enabled,
		MetricsPath:    a.cfg.Metrics.Path,
	}, a.tracker, checker, a.logger)

	checker.SetReady(true)
	a.logger.WithField("snapshot", a.store.Path()).Info("Tracker ready")
	serveErr := server.Start(ctx)
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			a.logger.WithError(err).Error("Scheduler shutdown failed")
		}
	} else if err := a.tracker.Flush(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("Final snapshot save failed")
	}

	return serveErr
}
