package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RetryConfig holds retry configuration for API calls
type RetryConfig struct {
	MaxRetries        int           // Maximum number of retries (default: 2)
	InitialBackoff    time.Duration // Initial backoff duration (default: 500ms)
	MaxBackoff        time.Duration // Maximum backoff duration (default: 5s)
	BackoffMultiplier float64       // Backoff multiplier (default: 2.0)
	Timeout           time.Duration // Per-request timeout (default: 20s)

	// Circuit breaker settings
	CircuitBreakerEnabled bool          // Enable circuit breaker (default: true)
	FailureThreshold      int           // Failures before opening circuit (default: 3)
	SuccessThreshold      int           // Successes in half-open before closing (default: 1)
	OpenTimeout           time.Duration // How long to keep circuit open (default: 30s)

	// Throughput limits
	MaxConcurrentCalls int     // Maximum concurrent API calls (default: 2, 0 = unlimited)
	RequestsPerSecond  float64 // Sustained request rate (default: 2, 0 = unlimited)
	Burst              int     // Rate limiter burst size (default: 4)
}

// DefaultRetryConfig returns the default retry configuration. A user is waiting
// on every call, so retries are short.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:            2,
		InitialBackoff:        500 * time.Millisecond,
		MaxBackoff:            5 * time.Second,
		BackoffMultiplier:     2.0,
		Timeout:               20 * time.Second,
		CircuitBreakerEnabled: true,
		FailureThreshold:      3,
		SuccessThreshold:      1,
		OpenTimeout:           30 * time.Second,
		MaxConcurrentCalls:    2,
		RequestsPerSecond:     2,
		Burst:                 4,
	}
}

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation, requests pass through
	CircuitOpen                         // Too many failures, block requests (fail fast)
	CircuitHalfOpen                     // Testing recovery, allow limited requests
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calling a failing provider until it has had time to recover
type CircuitBreaker struct {
	mu sync.Mutex

	state            CircuitState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	now              func() time.Time
	logger           *slog.Logger
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration
func NewCircuitBreaker(failureThreshold, successThreshold int, openTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:            CircuitClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		openTimeout:      openTimeout,
		now:              time.Now,
		logger:           slog.Default(),
	}
}

// Allow checks if a request should be allowed through the circuit breaker.
// Returns ErrCircuitOpen if the circuit is open and hasn't timed out yet.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed, CircuitHalfOpen:
		return nil
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) > cb.openTimeout {
			cb.transition(CircuitHalfOpen)
			return nil
		}
		return ErrCircuitOpen
	default:
		return ErrCircuitOpen
	}
}

// RecordSuccess records a successful request
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failureCount = 0
	case CircuitHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.transition(CircuitClosed)
		}
	}
}

// RecordFailure records a failed request
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()

	switch cb.state {
	case CircuitClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.transition(CircuitOpen)
		}
	case CircuitHalfOpen:
		// Any failure in half-open immediately opens the circuit
		cb.transition(CircuitOpen)
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// transition must be called with the lock held
func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to
	cb.successCount = 0
	if to == CircuitClosed {
		cb.failureCount = 0
	}
	cb.logger.Info("circuit breaker state transition",
		"from", from.String(), "to", to.String(), "failures", cb.failureCount)
}

// Resilient wraps a Completer with rate limiting, a concurrency cap, retries
// with exponential backoff and a circuit breaker. It is safe for concurrent use.
type Resilient struct {
	next    Completer
	retry   RetryConfig
	breaker *CircuitBreaker
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewResilient wraps next according to cfg
func NewResilient(next Completer, cfg RetryConfig) *Resilient {
	r := &Resilient{
		next:   next,
		retry:  cfg,
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	if cfg.CircuitBreakerEnabled {
		r.breaker = NewCircuitBreaker(cfg.FailureThreshold, cfg.SuccessThreshold, cfg.OpenTimeout)
	}
	if cfg.MaxConcurrentCalls > 0 {
		r.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentCalls))
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return r
}

// Breaker returns the circuit breaker, nil when disabled
func (r *Resilient) Breaker() *CircuitBreaker { return r.breaker }

// Complete implements Completer
func (r *Resilient) Complete(ctx context.Context, system, prompt string) (string, error) {
	var out string
	err := r.retryWithBackoff(ctx, "completion", func(attemptCtx context.Context) error {
		text, err := r.next.Complete(attemptCtx, system, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}

// retryWithBackoff executes an operation with retry and exponential backoff
func (r *Resilient) retryWithBackoff(ctx context.Context, operation string, fn func(context.Context) error) error {
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("failed to acquire concurrency slot for %s: %w", operation, err)
		}
		defer r.sem.Release(1)
	}

	var lastErr error
	backoff := r.retry.InitialBackoff

	for attempt := 0; attempt <= r.retry.MaxRetries; attempt++ {
		if r.breaker != nil {
			if err := r.breaker.Allow(); err != nil {
				return fmt.Errorf("%s failed: %w", operation, err)
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s failed: rate limiter: %w", operation, err)
			}
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.retry.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.retry.Timeout)
		}
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			if r.breaker != nil {
				r.breaker.RecordSuccess()
			}
			if attempt > 0 {
				r.logger.Info("AI API call succeeded after retries", "operation", operation, "retries", attempt)
			}
			return nil
		}
		lastErr = err

		// Non-retriable errors (like auth failures) don't count against the breaker
		if !isRetriableError(err) {
			r.logger.Warn("AI API call failed with non-retriable error", "operation", operation, "error", err)
			return err
		}
		if r.breaker != nil {
			r.breaker.RecordFailure()
		}
		if attempt == r.retry.MaxRetries {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s failed: context canceled: %w", operation, ctx.Err())
		}

		r.logger.Info("AI API call failed, retrying",
			"operation", operation, "attempt", attempt+1, "max_attempts", r.retry.MaxRetries+1,
			"backoff", backoff, "error", err)
		if err := r.sleep(ctx, backoff); err != nil {
			return fmt.Errorf("%s failed: context canceled during backoff: %w", operation, err)
		}
		backoff = time.Duration(float64(backoff) * r.retry.BackoffMultiplier)
		if backoff > r.retry.MaxBackoff {
			backoff = r.retry.MaxBackoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, r.retry.MaxRetries+1, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRetriableError determines if an error is retriable (transient)
func isRetriableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Provider SDKs wrap HTTP status codes in their error text
	errStr := strings.ToLower(err.Error())

	for _, transient := range []string{
		"429", "rate limit", "resource_exhausted",
		"500", "502", "503", "504",
		"internal server error", "bad gateway", "service unavailable", "gateway timeout", "overloaded",
		"connection refused", "connection reset", "timeout", "temporary failure", "network",
	} {
		if strings.Contains(errStr, transient) {
			return true
		}
	}

	// 4xx client errors and anything unknown are not retried
	return false
}
