// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT transport errors.
// They are infrastructure-agnostic and can be mapped to exit codes or
// response statuses by the caller.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrRateLimited indicates a request cap was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates the language-model call failed.
	ErrUpstream = errors.New("upstream service error")

	// ErrGenerationInvalid indicates model output failed extraction or validation.
	ErrGenerationInvalid = errors.New("generation invalid")

	// ErrStore indicates a persistence read or write failed.
	ErrStore = errors.New("store error")

	// ErrValidation indicates user input failed validation.
	ErrValidation = errors.New("validation failed")
)

// RateLimitScope identifies which gate rejected the request.
type RateLimitScope string

const (
	// ScopeClient is the per-client hourly cap.
	ScopeClient RateLimitScope = "client"

	// ScopeGlobal is the shared cap across all clients.
	ScopeGlobal RateLimitScope = "global"
)

// RateLimitError carries enough context for the caller to render a retry hint.
type RateLimitError struct {
	Scope   RateLimitScope
	Limit   int
	ResetAt time.Time
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit of %d exceeded, resets at %s",
		e.Scope, e.Limit, e.ResetAt.Format(time.RFC3339))
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// RetryAfter returns the duration until the window resets, floored at zero.
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	d := e.ResetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// NewRateLimitError creates a rate limit error with context.
func NewRateLimitError(scope RateLimitScope, limit int, resetAt time.Time) error {
	return &RateLimitError{Scope: scope, Limit: limit, ResetAt: resetAt}
}

// UpstreamCause is the closed set of upstream failure classes.
// Classification happens once at the boundary where the external call is
// made; the rest of the pipeline only ever handles this taxonomy.
type UpstreamCause string

const (
	// CauseAuth covers invalid or missing credentials.
	CauseAuth UpstreamCause = "auth"

	// CauseQuota covers billing, quota, and provider throttling failures.
	CauseQuota UpstreamCause = "quota"

	// CauseBadRequest covers requests the provider rejected as malformed.
	CauseBadRequest UpstreamCause = "bad_request"

	// CauseTransient covers provider outages and network failures.
	CauseTransient UpstreamCause = "transient"
)

// UpstreamError provides context for language-model call failures.
type UpstreamError struct {
	Cause   UpstreamCause
	Status  int
	Message string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s error (status %d): %s", e.Cause, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s error: %s", e.Cause, e.Message)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// NewUpstreamError creates an upstream error with context.
func NewUpstreamError(cause UpstreamCause, status int, message string) error {
	return &UpstreamError{Cause: cause, Status: status, Message: message}
}

// GenerationInvalidError provides context for parser and validator rejections.
type GenerationInvalidError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *GenerationInvalidError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("generation invalid: %s field %s", e.Field, e.Reason)
	}
	return "generation invalid: " + e.Reason
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *GenerationInvalidError) Unwrap() error {
	return ErrGenerationInvalid
}

// NewGenerationInvalidError creates a generation invalid error with context.
func NewGenerationInvalidError(field, reason string) error {
	return &GenerationInvalidError{Field: field, Reason: reason}
}

// StoreError wraps a persistence failure, preserving the underlying error.
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *StoreError) Unwrap() error {
	return ErrStore
}

// NewStoreError creates a store error wrapping the underlying failure.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// ValidationError provides context for input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsRateLimited checks if an error is a rate limit rejection.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUpstream checks if an error is an upstream service failure.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsGenerationInvalid checks if an error is a generation rejection.
func IsGenerationInvalid(err error) bool {
	return errors.Is(err, ErrGenerationInvalid)
}

// IsStore checks if an error is a persistence failure.
func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsValidation checks if an error is an input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
