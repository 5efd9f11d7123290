package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetryConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.RequestsPerSecond = 0
	cfg.Timeout = time.Second
	return cfg
}

func noSleep(r *Resilient) *Resilient {
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestIsRetriableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"rate limit", errors.New("POST /v1/messages: 429 Too Many Requests"), true},
		{"gemini quota", errors.New("Error 429, Status: RESOURCE_EXHAUSTED"), true},
		{"overloaded", errors.New("529 overloaded_error"), true},
		{"server error", errors.New("503 Service Unavailable"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"auth", errors.New("401 Unauthorized"), false},
		{"unknown", errors.New("something odd"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetriableError(tt.err))
		})
	}
}

func TestResilientRetriesTransientErrors(t *testing.T) {
	var calls int32
	next := CompleterFunc(func(context.Context, string, string) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", errors.New("503 Service Unavailable")
		}
		return "ok", nil
	})

	r := noSleep(NewResilient(next, testRetryConfig()))
	out, err := r.Complete(context.Background(), "sys", "prompt")

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), calls)
	assert.Equal(t, CircuitClosed, r.Breaker().State())
}

func TestResilientGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	next := CompleterFunc(func(context.Context, string, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.New("502 bad gateway")
	})

	cfg := testRetryConfig()
	cfg.FailureThreshold = 10
	r := noSleep(NewResilient(next, cfg))
	_, err := r.Complete(context.Background(), "", "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, int32(3), calls)
}

func TestResilientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	next := CompleterFunc(func(context.Context, string, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.New("401 invalid x-api-key")
	})

	r := noSleep(NewResilient(next, testRetryConfig()))
	_, err := r.Complete(context.Background(), "", "prompt")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls)
	assert.Equal(t, CircuitClosed, r.Breaker().State(), "auth failures don't trip the breaker")
}

func TestResilientOpensCircuit(t *testing.T) {
	next := CompleterFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("500 internal server error")
	})

	cfg := testRetryConfig()
	cfg.MaxRetries = 0
	cfg.FailureThreshold = 2
	r := noSleep(NewResilient(next, cfg))

	for i := 0; i < 2; i++ {
		_, err := r.Complete(context.Background(), "", "p")
		require.Error(t, err)
	}
	assert.Equal(t, CircuitOpen, r.Breaker().State())

	_, err := r.Complete(context.Background(), "", "p")
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, 1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrCircuitOpen)

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, 2, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestResilientHonoursCancellation(t *testing.T) {
	next := CompleterFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("503 service unavailable")
	})
	r := NewResilient(next, testRetryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Complete(ctx, "", "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCircuitStateString(t *testing.T) {
	assert.Equal(t, "CLOSED", CircuitClosed.String())
	assert.Equal(t, "OPEN", CircuitOpen.String())
	assert.Equal(t, "HALF_OPEN", CircuitHalfOpen.String())
	assert.Equal(t, "UNKNOWN", CircuitState(9).String())
}
