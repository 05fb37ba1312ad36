package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/goroku-app/goroku/internal/adapters/llm"
	"github.com/goroku-app/goroku/internal/adapters/store"
	"github.com/goroku-app/goroku/internal/app"
	"github.com/goroku-app/goroku/internal/pipeline"
	"github.com/goroku-app/goroku/internal/platform/config"
	"github.com/goroku-app/goroku/internal/platform/logging"
	"github.com/goroku-app/goroku/internal/platform/telemetry"
	"github.com/goroku-app/goroku/internal/ratelimit"
)

// runtime bundles the pieces every command needs.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	store  store.Store
}

// newRuntime loads config, sets up logging, and opens the quote store.
// The returned cleanup must be called before exit.
func newRuntime(ctx context.Context) (*runtime, func(), error) {
	profile := os.Getenv("GOROKU_PROFILE")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	st, err := store.Open(ctx, store.Config{
		Backend:  store.Backend(cfg.Storage.Backend),
		Path:     cfg.Storage.Path,
		BasePath: cfg.Storage.BasePath,
		DSN:      cfg.Storage.DSN,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening quote store: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, store: st}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Error("closing quote store", slog.Any("error", err))
		}
	}
	return rt, cleanup, nil
}

// newGenerationService wires the full generation flow from the runtime.
func (rt *runtime) newGenerationService(prom *app.PromMetrics) (*app.GenerationService, error) {
	model, err := llm.New(llm.Config{
		BaseURL: rt.cfg.Model.BaseURL,
		APIKey:  rt.cfg.Model.APIKey,
		Model:   rt.cfg.Model.Name,
		Timeout: rt.cfg.Model.Timeout,
		Logger:  rt.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	limiter := ratelimit.NewStore(
		ratelimit.WithPurgeThreshold(rt.cfg.RateLimit.PurgeThreshold),
	)

	// Instruments come from the global meter provider, a noop unless the
	// daemon enabled telemetry.
	otelMetrics, err := telemetry.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("creating telemetry instruments: %w", err)
	}

	return app.NewGenerationService(app.GenerationDeps{
		Limiter: limiter,
		Store:   rt.store,
		Model:   model,
		Logger:  rt.logger,
		Prom:    prom,
		Otel:    otelMetrics,
	}, app.GenerationConfig{
		InputMax: rt.cfg.Limits.InputMax,
		Limits: pipeline.Limits{
			InterpretedMax:       rt.cfg.Limits.InterpretedMax,
			OfficialMax:          rt.cfg.Limits.OfficialMax,
			CombinedMax:          rt.cfg.Limits.CombinedMax,
			MinInterpretedTokens: rt.cfg.Limits.MinInterpretedTokens,
		},
		ClientMax:   rt.cfg.RateLimit.ClientMax,
		GlobalMax:   rt.cfg.RateLimit.GlobalMax,
		Window:      rt.cfg.RateLimit.Window,
		MaxExamples: rt.cfg.Prompt.MaxExamples,
		Temperature: rt.cfg.Model.Temperature,
		MaxTokens:   rt.cfg.Model.MaxTokens,
		TopP:        rt.cfg.Model.TopP,
	}), nil
}
