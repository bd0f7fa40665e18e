package generator

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// RetryConfig bounds the transport-level retry around a backend call.
// Backoff is exponential with jitter; validation retries are a separate
// concern owned by the workflow's quality gate, not by this wrapper.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
}

// DefaultRetryConfig matches the original client: 3 attempts, 2s base
// delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: 2 * time.Second, MaxWait: 30 * time.Second}
}

// delay computes the exponential backoff for a zero-based attempt number,
// with up to one second of jitter, capped at MaxWait.
func (c RetryConfig) delay(attempt int) time.Duration {
	d := c.InitialWait * (1 << attempt)
	if c.MaxWait > 0 && d > c.MaxWait {
		d = c.MaxWait
	}
	return d + time.Duration(rand.Int63n(int64(time.Second)))
}

// Retrying wraps a TextGenerator with bounded retry/backoff. Empty
// completions are retried like transport errors since the caller cannot
// use them either way.
type Retrying struct {
	inner TextGenerator
	cfg   RetryConfig
}

// WithRetry wraps gen with the given retry policy. Zero or negative
// MaxAttempts falls back to the default config.
func WithRetry(gen TextGenerator, cfg RetryConfig) *Retrying {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}
	if cfg.InitialWait <= 0 {
		cfg.InitialWait = DefaultRetryConfig().InitialWait
	}
	return &Retrying{inner: gen, cfg: cfg}
}

func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		text, err := r.inner.Generate(ctx, prompt)
		if err == nil && text != "" {
			return text, nil
		}
		if err == nil {
			err = ErrEmptyCompletion
		}
		lastErr = err

		if attempt == r.cfg.MaxAttempts-1 {
			break
		}
		wait := r.cfg.delay(attempt)
		slog.Debug("generator call failed, backing off",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", r.cfg.MaxAttempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}
