package endpointfetcher

import (
	"context"
	"errors"
	"time"

	"github.com/lorenzo-vecchio/endpoint-fetcher/internal/backoff"
)

// RetryConfig configures RetryPlugin. Zero values fall back to the
// defaults noted on each field.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts after the first
	// failure. Default 3.
	MaxRetries int
	// InitialBackoff is the base delay before the first retry. Default 100ms.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts. Default 10s.
	MaxBackoff time.Duration
	// Multiplier is the exponential growth factor. Default 2.0.
	Multiplier float64
	// Jitter is the uniform jitter fraction in [0, 1]. Default 0.1.
	Jitter float64
	// Decorrelated switches to AWS-style decorrelated jitter instead of
	// exponential backoff with uniform jitter.
	Decorrelated bool
	// RetryOn decides whether a failed call is retried. Default:
	// DefaultRetryOn.
	RetryOn func(err error) bool
}

// DefaultRetryOn retries transport errors and 5xx or 429 request failures.
// Context cancellation is never retried.
func DefaultRetryOn(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if re, ok := IsRequestFailure(err); ok {
		return re.Status >= 500 || re.Status == 429
	}
	return true
}

// RetryPlugin returns a plugin whose handler wrapper re-invokes the whole
// inner call chain on retriable failures with backoff between attempts.
// Because the wrapper sits outside the enhanced transport, hooks re-fire on
// every attempt.
func RetryPlugin(cfg RetryConfig) *Plugin {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 100 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.Jitter == 0 {
		cfg.Jitter = 0.1
	}
	if cfg.RetryOn == nil {
		cfg.RetryOn = DefaultRetryOn
	}

	var strategy backoff.Strategy = backoff.ExponentialJitter{}
	if cfg.Decorrelated {
		strategy = backoff.DecorrelatedJitter{}
	}
	params := backoff.Params{
		Initial:    cfg.InitialBackoff,
		Max:        cfg.MaxBackoff,
		Multiplier: cfg.Multiplier,
		Jitter:     cfg.Jitter,
	}

	return &Plugin{
		Identity: "retry",
		HandlerWrapper: func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, call *CallContext) (any, error) {
				var out any
				var err error
				for attempt := 0; ; attempt++ {
					out, err = next(ctx, call)
					if err == nil || attempt >= cfg.MaxRetries || !cfg.RetryOn(err) {
						return out, err
					}
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(strategy.Delay(attempt, params)):
					}
				}
			}
		},
	}
}
