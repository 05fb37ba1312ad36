package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goroku-app/goroku/internal/app"
	"github.com/goroku-app/goroku/internal/platform/telemetry"
	"github.com/goroku-app/goroku/internal/ports"
	"github.com/goroku-app/goroku/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daemon: daily lineup refresh plus the ops listener",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, cleanup, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      rt.cfg.Telemetry.Enabled,
		Endpoint:     rt.cfg.Telemetry.Endpoint,
		ServiceName:  rt.cfg.Telemetry.ServiceName,
		Version:      rt.cfg.App.Version,
		Environment:  rt.cfg.App.Environment,
		SamplingRate: rt.cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			rt.logger.Error("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	prom := app.NewPromMetrics()

	registry := ports.NewHealthRegistry()
	if err := registry.Register(rt.store); err != nil {
		return err
	}

	lineups := app.NewLineupService(app.LineupDeps{
		Store:  rt.store,
		Logger: rt.logger,
		Prom:   prom,
	})

	refresher := scheduler.NewRefresher(scheduler.RefresherConfig{
		Lineups: lineups,
		Logger:  rt.logger,
	})

	rt.logger.Info("daemon starting",
		slog.String("version", Version),
		slog.String("environment", rt.cfg.App.Environment),
		slog.Bool("ops_enabled", rt.cfg.Ops.Enabled),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return refresher.Run(ctx)
	})
	if rt.cfg.Ops.Enabled {
		ops := scheduler.NewOpsServer(rt.cfg.Ops.Addr, registry, rt.logger)
		g.Go(func() error {
			return ops.Run(ctx)
		})
	}

	err = g.Wait()
	rt.logger.Info("daemon stopped")
	return err
}
