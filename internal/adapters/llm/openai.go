// Package llm implements the language-model port against an
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goroku-app/goroku/internal/domain"
	"github.com/goroku-app/goroku/internal/ports"
)

const (
	// instrumentationName is used for the OpenTelemetry tracer.
	instrumentationName = "github.com/goroku-app/goroku/internal/adapters/llm"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Config configures an OpenAI-compatible client.
type Config struct {
	// BaseURL is the API root, without the trailing /chat/completions.
	BaseURL string

	// APIKey is sent as a bearer token.
	APIKey string

	// Model is the model identifier passed through to the endpoint.
	Model string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Logger is an optional logger. If nil, the default logger is used.
	Logger *slog.Logger
}

// Client calls an OpenAI-compatible chat completions endpoint.
//
// Every failure is classified here into the domain upstream taxonomy; the
// rest of the pipeline only ever sees the closed set of causes. The client
// never retries: a single failure is terminal for the request.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a client from cfg, applying defaults for unset fields.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		logger:  cfg.Logger,
		tracer:  otel.Tracer(instrumentationName),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// Complete implements ports.LanguageModel.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm.Complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("llm.model", c.model)),
	)
	defer span.End()

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		upErr := domain.NewUpstreamError(domain.CauseTransient, 0, err.Error())
		span.RecordError(upErr)
		span.SetStatus(codes.Error, "request failed")
		return "", upErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		upErr := domain.NewUpstreamError(domain.CauseTransient, resp.StatusCode, err.Error())
		span.RecordError(upErr)
		span.SetStatus(codes.Error, "read response")
		return "", upErr
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		upErr := classify(resp.StatusCode, respBody)
		c.logger.WarnContext(ctx, "completion request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("cause", string(upErr.Cause)),
		)
		span.RecordError(upErr)
		span.SetStatus(codes.Error, "upstream error")
		return "", upErr
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", domain.NewUpstreamError(domain.CauseTransient, resp.StatusCode,
			"malformed completion response: "+err.Error())
	}
	if parsed.Error != nil {
		return "", classifyMessage(resp.StatusCode, parsed.Error.Type+": "+parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", domain.NewUpstreamError(domain.CauseTransient, resp.StatusCode,
			"completion response contained no choices")
	}

	span.SetStatus(codes.Ok, "")

	return parsed.Choices[0].Message.Content, nil
}

// classify maps a non-200 response onto the upstream cause taxonomy. The
// status code decides first; quota-flavored message markers override for
// providers that report billing problems under generic statuses.
func classify(status int, body []byte) *domain.UpstreamError {
	var parsed struct {
		Error *apiError `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		msg = parsed.Error.Type + ": " + parsed.Error.Message
	}
	return classifyMessage(status, msg)
}

func classifyMessage(status int, msg string) *domain.UpstreamError {
	cause := domain.CauseTransient
	switch {
	case hasQuotaMarker(msg):
		cause = domain.CauseQuota
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		cause = domain.CauseAuth
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		cause = domain.CauseQuota
	case status == http.StatusBadRequest || status == http.StatusNotFound ||
		status == http.StatusUnprocessableEntity:
		cause = domain.CauseBadRequest
	}
	return &domain.UpstreamError{Cause: cause, Status: status, Message: msg}
}

// quotaMarkers are substrings providers use for billing and quota failures.
var quotaMarkers = []string{"insufficient_quota", "rate_limit", "billing"}

func hasQuotaMarker(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range quotaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
