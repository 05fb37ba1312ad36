package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                  { return s.name }
func (s stubChecker) Check(_ context.Context) error { return s.err }

func TestHealthRegistry_AllHealthy(t *testing.T) {
	reg := NewHealthRegistry()
	require.NoError(t, reg.Register(stubChecker{name: "store"}))
	require.NoError(t, reg.Register(stubChecker{name: "model"}))

	result := reg.CheckAll(context.Background())

	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Len(t, result.Checks, 2)
	assert.Equal(t, HealthStatusHealthy, result.Checks["store"].Status)
}

func TestHealthRegistry_UnhealthyComponent(t *testing.T) {
	reg := NewHealthRegistry()
	require.NoError(t, reg.Register(stubChecker{name: "store"}))
	require.NoError(t, reg.Register(stubChecker{name: "model", err: errors.New("connection refused")}))

	result := reg.CheckAll(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Equal(t, HealthStatusHealthy, result.Checks["store"].Status)
	assert.Equal(t, HealthStatusUnhealthy, result.Checks["model"].Status)
	assert.Equal(t, "connection refused", result.Checks["model"].Message)
}

func TestHealthRegistry_DuplicateName(t *testing.T) {
	reg := NewHealthRegistry()
	require.NoError(t, reg.Register(stubChecker{name: "store"}))

	err := reg.Register(stubChecker{name: "store"})
	assert.ErrorIs(t, err, ErrDuplicateChecker)
}

func TestHealthRegistry_Empty(t *testing.T) {
	reg := NewHealthRegistry()

	result := reg.CheckAll(context.Background())

	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
}
