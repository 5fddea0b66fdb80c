package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errDown = errors.New("down")

func fail() error { return errDown }

func ok() error { return nil }

func TestCircuitBreaker_Ciclo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "kafka", FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: 10 * time.Second})
	cb.now = func() time.Time { return now }

	assert.Equal(t, CBClosed, cb.State())
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errDown)
	}
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(11 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FalloEnHalfOpenReabre(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "redis", FailureThreshold: 1, OpenTimeout: time.Second})
	cb.now = func() time.Time { return now }

	_ = cb.Execute(fail)
	now = now.Add(2 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(fail)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_ExitoReiniciaFallos(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "redis", FailureThreshold: 2})

	_ = cb.Execute(fail)
	_ = cb.Execute(ok)
	_ = cb.Execute(fail)
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_NilEjecuta(t *testing.T) {
	var cb *CircuitBreaker
	assert.ErrorIs(t, cb.Execute(fail), errDown)
	assert.NoError(t, cb.Execute(ok))
}

func TestCBStateString(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
	assert.Equal(t, "unknown", CBState(9).String())
}
