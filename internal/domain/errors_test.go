package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitError(t *testing.T) {
	resetAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	err := NewRateLimitError(ScopeClient, 20, resetAt)

	assert.True(t, IsRateLimited(err))
	assert.False(t, IsUpstream(err))
	assert.Contains(t, err.Error(), "client")
	assert.Contains(t, err.Error(), "20")

	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 30*time.Minute, rlErr.RetryAfter(resetAt.Add(-30*time.Minute)))
	assert.Equal(t, time.Duration(0), rlErr.RetryAfter(resetAt.Add(time.Minute)))
}

func TestUpstreamError(t *testing.T) {
	tests := []struct {
		name   string
		cause  UpstreamCause
		status int
	}{
		{"auth", CauseAuth, 401},
		{"quota", CauseQuota, 429},
		{"bad request", CauseBadRequest, 400},
		{"transient", CauseTransient, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUpstreamError(tt.cause, tt.status, "boom")
			assert.True(t, IsUpstream(err))

			var upErr *UpstreamError
			require.True(t, errors.As(err, &upErr))
			assert.Equal(t, tt.cause, upErr.Cause)
			assert.Equal(t, tt.status, upErr.Status)
		})
	}
}

func TestUpstreamError_NoStatus(t *testing.T) {
	err := NewUpstreamError(CauseTransient, 0, "connection refused")
	assert.NotContains(t, err.Error(), "status")
}

func TestGenerationInvalidError(t *testing.T) {
	err := NewGenerationInvalidError("official", "empty after all fallbacks")
	assert.True(t, IsGenerationInvalid(err))
	assert.Contains(t, err.Error(), "official")
}

func TestStoreError_PreservesUnderlying(t *testing.T) {
	underlying := errors.New("disk full")
	err := NewStoreError("append", underlying)

	assert.True(t, IsStore(err))
	assert.True(t, errors.Is(err, ErrStore))

	// The original cause stays reachable through the wrap chain.
	wrapped := fmt.Errorf("persisting quote: %w", err)
	assert.True(t, IsStore(wrapped))
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("input", "too long")
	assert.True(t, IsValidation(err))
	assert.False(t, IsGenerationInvalid(err))
}

func TestQuoteValidate(t *testing.T) {
	assert.NoError(t, Quote{Original: "入力", Official: "公式"}.Validate())
	assert.True(t, IsValidation(Quote{Original: "入力"}.Validate()))
	assert.True(t, IsValidation(Quote{Official: "公式"}.Validate()))
	assert.True(t, IsValidation(Quote{Original: "入力", Official: "   "}.Validate()))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		quote Quote
		want  int64
	}{
		{"floor of one with zero engagement", Quote{}, 1},
		{"multiplicative across axes", Quote{Likes: 2, Reposts: 1}, 6},
		{"all axes rewarded", Quote{Likes: 1, Reposts: 1, QuotedReposts: 1}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.quote.Score())
		})
	}
}

func TestCanonicalSlotLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
		ok    bool
	}{
		{"右", "右", true},
		{"捕", "捕", true},
		{"DH", "DH", true},
		{"指", "DH", true}, // alias
		{"先発", "", false},
		{"抑え", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := CanonicalSlotLabel(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
