// Package app contains the application services that orchestrate the
// generation and lineup use cases. It coordinates the domain pipeline and
// external collaborators through ports, and carries the cross-cutting
// concerns of logging and metrics.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/goroku-app/goroku/internal/domain"
	"github.com/goroku-app/goroku/internal/pipeline"
	"github.com/goroku-app/goroku/internal/platform/logging"
	"github.com/goroku-app/goroku/internal/platform/telemetry"
	"github.com/goroku-app/goroku/internal/ports"
	"github.com/goroku-app/goroku/internal/prompt"
	"github.com/goroku-app/goroku/internal/ratelimit"
)

const (
	// clientKeyPrefix namespaces limiter keys so generation gates never
	// collide with other limiter users sharing the store.
	clientKeyPrefix = "generate:"

	// globalKey is the shared key for the all-clients gate.
	globalKey = "generate:global"
)

// GenerationConfig carries the tunables for the generation flow.
type GenerationConfig struct {
	InputMax    int
	Limits      pipeline.Limits
	ClientMax   int
	GlobalMax   int
	Window      time.Duration
	MaxExamples int
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// GenerationResult is one accepted generation.
type GenerationResult struct {
	ID          int64
	Original    string
	Interpreted string
	Official    string
}

// GenerationService runs the full generation flow: input validation, the
// dual rate-limit gate, prompt assembly, the model call, output parsing,
// and persistence. Every failure comes back as one of the classified
// domain errors; nothing is retried internally.
type GenerationService struct {
	limiter *ratelimit.Store
	store   ports.QuoteStore
	model   ports.LanguageModel
	cfg     GenerationConfig
	logger  *slog.Logger
	prom    *PromMetrics
	otel    *telemetry.Metrics
}

// GenerationDeps bundles the collaborators for NewGenerationService.
type GenerationDeps struct {
	Limiter *ratelimit.Store
	Store   ports.QuoteStore
	Model   ports.LanguageModel
	Logger  *slog.Logger
	Prom    *PromMetrics
	Otel    *telemetry.Metrics
}

// NewGenerationService creates a generation service.
func NewGenerationService(deps GenerationDeps, cfg GenerationConfig) *GenerationService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationService{
		limiter: deps.Limiter,
		store:   deps.Store,
		model:   deps.Model,
		cfg:     cfg,
		logger:  logger,
		prom:    deps.Prom,
		otel:    deps.Otel,
	}
}

// Generate runs one generation request for input on behalf of clientKey.
// Every log line for the request carries a freshly minted request id.
func (s *GenerationService) Generate(ctx context.Context, input, clientKey string) (GenerationResult, error) {
	ctx = logging.WithContext(ctx, s.logger)
	ctx = logging.WithRequestID(ctx, uuid.NewString())

	done := s.otel.GenerationStarted(ctx)
	start := time.Now()

	result, err := s.generate(ctx, input, clientKey)
	s.record(err, time.Since(start), done)
	return result, err
}

func (s *GenerationService) generate(ctx context.Context, input, clientKey string) (GenerationResult, error) {
	logger := logging.FromContext(ctx)

	if err := prompt.ValidateInput(input, s.cfg.InputMax); err != nil {
		return GenerationResult{}, err
	}
	input = prompt.SanitizeInput(input)

	if res := s.limiter.Check(clientKeyPrefix+clientKey, s.cfg.ClientMax, s.cfg.Window); !res.Allowed {
		logger.InfoContext(ctx, "client rate limit hit",
			slog.String("client", clientKey),
			slog.Time("reset_at", res.ResetAt),
		)
		return GenerationResult{}, domain.NewRateLimitError(domain.ScopeClient, s.cfg.ClientMax, res.ResetAt)
	}
	if res := s.limiter.Check(globalKey, s.cfg.GlobalMax, s.cfg.Window); !res.Allowed {
		logger.WarnContext(ctx, "global rate limit hit",
			slog.Time("reset_at", res.ResetAt),
		)
		return GenerationResult{}, domain.NewRateLimitError(domain.ScopeGlobal, s.cfg.GlobalMax, res.ResetAt)
	}

	examples := s.loadExamples(ctx)

	raw, err := s.model.Complete(ctx, ports.CompletionRequest{
		System:      prompt.SystemPrompt(examples, s.cfg.MaxExamples),
		User:        prompt.UserPrompt(input),
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		TopP:        s.cfg.TopP,
	})
	if err != nil {
		logger.ErrorContext(ctx, "completion failed", slog.Any("error", err))
		return GenerationResult{}, err
	}

	processed, err := pipeline.Process(raw, s.cfg.Limits)
	if err != nil {
		logger.WarnContext(ctx, "completion rejected", slog.Any("error", err))
		return GenerationResult{}, err
	}

	quote := domain.Quote{
		Original:    input,
		Interpreted: processed.Interpreted,
		Official:    processed.Official,
	}

	id, err := s.store.Append(ctx, quote)
	if err != nil {
		logger.ErrorContext(ctx, "persist failed", slog.Any("error", err))
		return GenerationResult{}, err
	}

	logger.InfoContext(ctx, "generation accepted",
		slog.Int64("quote_id", id),
	)

	return GenerationResult{
		ID:          id,
		Original:    input,
		Interpreted: processed.Interpreted,
		Official:    processed.Official,
	}, nil
}

// loadExamples builds the few-shot block from the store. A failed load
// degrades to the built-in default example rather than failing the
// request: prompt quality is worth less than availability here.
func (s *GenerationService) loadExamples(ctx context.Context) string {
	quotes, err := s.store.LoadAll(ctx)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "example load failed, using default example",
			slog.Any("error", err),
		)
		return prompt.DefaultExample
	}

	block := prompt.SelectExamples(quotes, s.cfg.MaxExamples)
	if block == "" {
		return prompt.DefaultExample
	}
	return block
}

// record translates the outcome into metric labels.
func (s *GenerationService) record(err error, elapsed time.Duration, done func(outcome string)) {
	outcome := "ok"
	switch {
	case err == nil:
	case domain.IsRateLimited(err):
		outcome = "rate_limited"
	case domain.IsUpstream(err):
		outcome = "upstream"
	case domain.IsGenerationInvalid(err):
		outcome = "invalid"
	case domain.IsStore(err):
		outcome = "store"
	case domain.IsValidation(err):
		outcome = "validation"
	default:
		outcome = "error"
	}
	done(outcome)

	if s.prom == nil {
		return
	}
	s.prom.GenerationRequests.Inc()
	s.prom.GenerationLatency.Observe(elapsed.Seconds())
	if err == nil {
		return
	}
	if outcome == "rate_limited" {
		scope := "client"
		var rlErr *domain.RateLimitError
		if errors.As(err, &rlErr) && rlErr.Scope == domain.ScopeGlobal {
			scope = "global"
		}
		s.prom.RateLimited.WithLabelValues(scope).Inc()
		return
	}
	s.prom.GenerationErrors.WithLabelValues(outcome).Inc()
}
