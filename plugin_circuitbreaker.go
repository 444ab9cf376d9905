package endpointfetcher

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// CircuitState represents the state of the circuit breaker plugin.
type CircuitState int64

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds circuit breaker configuration. Zero values
// fall back to 5 failures / 60s recovery / 2 successes.
type CircuitBreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	SuccessThreshold int
	// TripOn decides whether an error counts as a circuit failure.
	// Default: transport errors and 5xx request failures.
	TripOn func(err error) bool
}

// DefaultTripOn counts transport errors and 5xx request failures.
func DefaultTripOn(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := IsRequestFailure(err); ok {
		return re.Status >= 500
	}
	return true
}

type circuitBreaker struct {
	config      CircuitBreakerConfig
	state       int64
	failures    int64
	successes   int64
	lastFailure int64
}

func newCircuitBreaker(config CircuitBreakerConfig) *circuitBreaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout == 0 {
		config.RecoveryTimeout = 60 * time.Second
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 2
	}
	if config.TripOn == nil {
		config.TripOn = DefaultTripOn
	}
	return &circuitBreaker{config: config, state: int64(StateClosed)}
}

func (cb *circuitBreaker) allow() bool {
	switch CircuitState(atomic.LoadInt64(&cb.state)) {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		last := atomic.LoadInt64(&cb.lastFailure)
		if time.Now().UnixNano()-last >= int64(cb.config.RecoveryTimeout) {
			if atomic.CompareAndSwapInt64(&cb.state, int64(StateOpen), int64(StateHalfOpen)) {
				atomic.StoreInt64(&cb.successes, 0)
			}
			return true
		}
		return false
	default:
		return false
	}
}

func (cb *circuitBreaker) recordFailure() {
	atomic.StoreInt64(&cb.lastFailure, time.Now().UnixNano())
	switch CircuitState(atomic.LoadInt64(&cb.state)) {
	case StateClosed:
		if atomic.AddInt64(&cb.failures, 1) >= int64(cb.config.FailureThreshold) {
			atomic.StoreInt64(&cb.state, int64(StateOpen))
		}
	case StateHalfOpen:
		// A half-open probe failing reopens the circuit immediately.
		atomic.StoreInt64(&cb.state, int64(StateOpen))
		atomic.StoreInt64(&cb.successes, 0)
	}
}

func (cb *circuitBreaker) recordSuccess() {
	if CircuitState(atomic.LoadInt64(&cb.state)) != StateHalfOpen {
		return
	}
	if atomic.AddInt64(&cb.successes, 1) >= int64(cb.config.SuccessThreshold) {
		atomic.StoreInt64(&cb.state, int64(StateClosed))
		atomic.StoreInt64(&cb.failures, 0)
	}
}

func (cb *circuitBreaker) currentState() CircuitState {
	return CircuitState(atomic.LoadInt64(&cb.state))
}

// CircuitBreakerPlugin returns a plugin whose handler wrapper rejects calls
// with ErrCircuitOpen after repeated failures, probing half-open after the
// recovery timeout. The current state is exposed as the "state" method
// under identity "circuitbreaker".
func CircuitBreakerPlugin(config CircuitBreakerConfig) *Plugin {
	cb := newCircuitBreaker(config)

	return &Plugin{
		Identity: "circuitbreaker",
		HandlerWrapper: func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, call *CallContext) (any, error) {
				if !cb.allow() {
					return nil, fmt.Errorf("%w: %s %s", ErrCircuitOpen, call.Method, call.Path)
				}
				out, err := next(ctx, call)
				if cb.config.TripOn(err) {
					cb.recordFailure()
					return nil, err
				}
				if err == nil {
					cb.recordSuccess()
				}
				return out, err
			}
		},
		Methods: MethodMap{
			"state": func(ctx context.Context, args ...any) (any, error) {
				return cb.currentState().String(), nil
			},
		},
	}
}
