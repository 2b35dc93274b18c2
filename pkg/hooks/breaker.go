package hooks

import (
	"sync"
	"time"
)

// State is the delivery gate for one hook endpoint.
type State string

const (
	// StateClosed admits every request.
	StateClosed State = "closed"
	// StateOpen rejects requests until the reset timeout passes.
	StateOpen State = "open"
	// StateHalfOpen admits trial requests after the timeout.
	StateHalfOpen State = "half_open"
)

// CircuitBreakerConfig tunes when an endpoint is cut off and how it recovers.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that trips
	// the breaker open.
	FailureThreshold int
	// ResetTimeout is how long an open breaker waits before admitting a
	// trial request.
	ResetTimeout time.Duration
	// HalfOpenMaxAttempts is the number of trial successes needed to
	// close again. Zero means one.
	HalfOpenMaxAttempts int
}

// CircuitBreaker cuts off a hook endpoint that keeps failing so dead
// endpoints do not eat a request timeout on every event.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	trials   int
	openedAt time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.HalfOpenMaxAttempts <= 0 {
		cfg.HalfOpenMaxAttempts = 1
	}
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

// AllowRequest reports whether a delivery attempt may proceed, moving an
// expired open breaker to half-open.
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.openedAt) <= cb.cfg.ResetTimeout {
			return false
		}
		cb.state = StateHalfOpen
		cb.trials = 0
	}
	return true
}

// RecordSuccess clears the failure count. In half-open, enough successes
// close the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state != StateHalfOpen {
		cb.state = StateClosed
		return
	}
	cb.trials++
	if cb.trials >= cb.cfg.HalfOpenMaxAttempts {
		cb.state = StateClosed
	}
}

// RecordFailure counts a failed delivery. A half-open breaker reopens
// immediately; a closed one opens at the threshold.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
		cb.state = StateOpen
		cb.openedAt = time.Now()
	}
}

// State returns the current gate state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
