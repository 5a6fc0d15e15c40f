package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diderot/internal/core"
	"diderot/internal/logger"
	"diderot/internal/metrics"

	"golang.org/x/time/rate"
)

// WithTimeout bounds every call by d. A zero duration leaves calls unbounded.
func WithTimeout(next TextGenerator, d time.Duration) TextGenerator {
	if d <= 0 {
		return next
	}
	return GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next.Generate(ctx, req)
	})
}

// WithRetry retries failed calls up to maxRetries times, waiting delay*(attempt+1)
// between attempts. Cancellation of the caller's context stops retrying.
func WithRetry(next TextGenerator, maxRetries int, delay time.Duration) TextGenerator {
	if maxRetries <= 0 {
		return next
	}
	return GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		var lastErr error
		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				logger.Debug("Retrying text generation", "stage", req.Stage, "attempt", attempt, "error", lastErr.Error())
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(delay * time.Duration(attempt)):
				}
			}

			text, err := next.Generate(ctx, req)
			if err == nil {
				return text, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				break
			}
		}
		return "", fmt.Errorf("%w: generation failed after %d attempts: %v", core.ErrSourceUnavailable, maxRetries+1, lastErr)
	})
}

// WithRateLimit paces calls to requestsPerMinute using a token bucket.
func WithRateLimit(next TextGenerator, requestsPerMinute int) TextGenerator {
	if requestsPerMinute <= 0 {
		return next
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)

	return GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		if err := limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}
		return next.Generate(ctx, req)
	})
}

// WithMetrics records latency and outcome per stage.
func WithMetrics(next TextGenerator, m *metrics.Metrics) TextGenerator {
	if m == nil {
		return next
	}
	return GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		start := time.Now()
		text, err := next.Generate(ctx, req)
		m.ObserveGeneration(req.Stage, time.Since(start), err)
		return text, err
	})
}

// IsUnavailable reports whether err means the backend could not produce any text.
func IsUnavailable(err error) bool {
	return err != nil && !errors.Is(err, core.ErrMalformedGeneration)
}
