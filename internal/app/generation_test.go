package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goroku-app/goroku/internal/domain"
	"github.com/goroku-app/goroku/internal/pipeline"
	"github.com/goroku-app/goroku/internal/platform/telemetry"
	"github.com/goroku-app/goroku/internal/ports"
	"github.com/goroku-app/goroku/internal/ratelimit"
)

const wellFormedCompletion = "通訳「We will keep pushing forward together」\n公式「これからも全力で頑張ります」"

type fakeModel struct {
	raw      string
	err      error
	requests []ports.CompletionRequest
}

func (m *fakeModel) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.raw, nil
}

type fakeStore struct {
	quotes    []domain.Quote
	loadErr   error
	appendErr error
	appended  []domain.Quote
	nextID    int64
}

func (s *fakeStore) LoadAll(_ context.Context) ([]domain.Quote, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.quotes, nil
}

func (s *fakeStore) Append(_ context.Context, q domain.Quote) (int64, error) {
	if s.appendErr != nil {
		return 0, s.appendErr
	}
	s.nextID++
	s.appended = append(s.appended, q)
	return s.nextID, nil
}

func (s *fakeStore) AdjustLikes(context.Context, int64, int64) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *fakeStore) AdjustReposts(context.Context, int64, int64) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *fakeStore) AdjustQuotedReposts(context.Context, int64, int64) (int64, error) {
	return 0, errors.New("not implemented")
}

func testConfig() GenerationConfig {
	return GenerationConfig{
		InputMax:    25,
		Limits:      pipeline.DefaultLimits(),
		ClientMax:   20,
		GlobalMax:   100,
		Window:      time.Hour,
		MaxExamples: 3,
		Temperature: 0.7,
		MaxTokens:   150,
		TopP:        0.9,
	}
}

func newTestService(model *fakeModel, store *fakeStore, cfg GenerationConfig) *GenerationService {
	return NewGenerationService(GenerationDeps{
		Limiter: ratelimit.NewStore(),
		Store:   store,
		Model:   model,
	}, cfg)
}

func TestGenerate_Success(t *testing.T) {
	model := &fakeModel{raw: wellFormedCompletion}
	store := &fakeStore{}
	svc := newTestService(model, store, testConfig())

	got, err := svc.Generate(context.Background(), "調子はどうですか", "client-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "We will keep pushing forward together", got.Interpreted)
	assert.Equal(t, "これからも全力で頑張ります", got.Official)

	require.Len(t, store.appended, 1)
	assert.Equal(t, "調子はどうですか", store.appended[0].Original)
	assert.NotEmpty(t, store.appended[0].Official)
}

// The otel instruments must work wired through the deps, not just as the
// nil-guarded default: the CLI bootstrap always constructs them.
func TestGenerate_WithTelemetryInstruments(t *testing.T) {
	instruments, err := telemetry.NewMetrics()
	require.NoError(t, err)

	model := &fakeModel{raw: wellFormedCompletion}
	store := &fakeStore{}
	svc := NewGenerationService(GenerationDeps{
		Limiter: ratelimit.NewStore(),
		Store:   store,
		Model:   model,
		Otel:    instruments,
	}, testConfig())

	got, err := svc.Generate(context.Background(), "調子はどうですか", "client-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	// Failures record through the same instruments.
	model.err = domain.NewUpstreamError(domain.CauseQuota, 429, "insufficient_quota")
	_, err = svc.Generate(context.Background(), "もう一度", "client-1")
	assert.True(t, domain.IsUpstream(err))
}

func TestGenerate_InputTooLong(t *testing.T) {
	model := &fakeModel{raw: wellFormedCompletion}
	svc := newTestService(model, &fakeStore{}, testConfig())

	_, err := svc.Generate(context.Background(), strings.Repeat("あ", 26), "client-1")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, model.requests, "model must not be called for invalid input")
}

func TestGenerate_ClientRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.ClientMax = 1

	model := &fakeModel{raw: wellFormedCompletion}
	svc := newTestService(model, &fakeStore{}, cfg)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "今日の試合", "client-1")
	require.NoError(t, err)

	_, err = svc.Generate(ctx, "今日の試合", "client-1")
	require.Error(t, err)
	assert.True(t, domain.IsRateLimited(err))

	var rlErr *domain.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, domain.ScopeClient, rlErr.Scope)

	// A different client is unaffected by the first client's cap.
	_, err = svc.Generate(ctx, "今日の試合", "client-2")
	assert.NoError(t, err)
}

func TestGenerate_GlobalRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.GlobalMax = 1

	model := &fakeModel{raw: wellFormedCompletion}
	svc := newTestService(model, &fakeStore{}, cfg)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "今日の試合", "client-1")
	require.NoError(t, err)

	_, err = svc.Generate(ctx, "今日の試合", "client-2")
	require.Error(t, err)

	var rlErr *domain.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, domain.ScopeGlobal, rlErr.Scope)
}

func TestGenerate_UpstreamErrorPropagates(t *testing.T) {
	model := &fakeModel{err: domain.NewUpstreamError(domain.CauseQuota, 429, "slow down")}
	store := &fakeStore{}
	svc := newTestService(model, store, testConfig())

	_, err := svc.Generate(context.Background(), "今日の試合", "client-1")
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
	assert.Empty(t, store.appended)
}

func TestGenerate_InvalidCompletionNotPersisted(t *testing.T) {
	model := &fakeModel{raw: "通訳「too short」\n公式「短い」"}
	store := &fakeStore{}
	svc := newTestService(model, store, testConfig())

	_, err := svc.Generate(context.Background(), "今日の試合", "client-1")
	require.Error(t, err)
	assert.True(t, domain.IsGenerationInvalid(err))
	assert.Empty(t, store.appended)
}

func TestGenerate_ExampleLoadFailureDegrades(t *testing.T) {
	model := &fakeModel{raw: wellFormedCompletion}
	store := &fakeStore{loadErr: domain.NewStoreError("load", errors.New("disk gone"))}
	svc := newTestService(model, store, testConfig())

	_, err := svc.Generate(context.Background(), "今日の試合", "client-1")
	require.NoError(t, err, "a failed example load must not fail the request")

	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].System, "憧れる",
		"system prompt falls back to the built-in default example")
}

func TestGenerate_StoreExamplesReachPrompt(t *testing.T) {
	model := &fakeModel{raw: wellFormedCompletion}
	store := &fakeStore{quotes: []domain.Quote{
		{ID: 1, Original: "最高", Official: "最高の結果を出せました", Likes: 10},
	}}
	svc := newTestService(model, store, testConfig())

	_, err := svc.Generate(context.Background(), "今日の試合", "client-1")
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].System, "最高の結果を出せました")
}

func TestGenerate_AppendFailurePropagates(t *testing.T) {
	model := &fakeModel{raw: wellFormedCompletion}
	store := &fakeStore{appendErr: domain.NewStoreError("append", errors.New("disk full"))}
	svc := newTestService(model, store, testConfig())

	_, err := svc.Generate(context.Background(), "今日の試合", "client-1")
	require.Error(t, err)
	assert.True(t, domain.IsStore(err))
}

func TestGenerate_SamplingConfigPassedThrough(t *testing.T) {
	model := &fakeModel{raw: wellFormedCompletion}
	svc := newTestService(model, &fakeStore{}, testConfig())

	_, err := svc.Generate(context.Background(), "今日の試合", "client-1")
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	req := model.requests[0]
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	assert.Equal(t, 150, req.MaxTokens)
	assert.InDelta(t, 0.9, req.TopP, 1e-9)
	assert.Contains(t, req.User, "今日の試合")
}
