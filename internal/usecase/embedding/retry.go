package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/candidex/internal/domain"
	logpkg "github.com/kailas-cloud/candidex/internal/logger"
	"github.com/kailas-cloud/candidex/internal/metrics"
)

// RetryPolicy controls how transient provider failures are retried.
type RetryPolicy struct {
	MaxRetries     int           // retries after the first attempt
	BaseDelay      time.Duration // first wait
	Factor         float64       // growth per retry
	Jitter         float64       // +/- fraction applied to each wait
	AttemptTimeout time.Duration // deadline for a single provider call, 0 = none
	MaxRetryAfter  time.Duration // cap on a provider Retry-After hint, 0 = 30s
}

// DefaultRetryPolicy returns 3 retries, 200ms base, factor 2, 20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     3,
		BaseDelay:      200 * time.Millisecond,
		Factor:         2,
		Jitter:         0.2,
		AttemptTimeout: 10 * time.Second,
		MaxRetryAfter:  30 * time.Second,
	}
}

// RetryingEmbedder retries transient provider failures with exponential backoff.
// 5xx, timeouts, connection failures and 429 are retried; other 4xx are not.
// A 429 Retry-After hint lengthens the next wait when it exceeds the computed backoff.
type RetryingEmbedder struct {
	inner    domain.Embedder
	policy   RetryPolicy
	limiter  *rate.Limiter
	newTimer func() backoff.Timer
	logger   *zap.Logger
}

// NewRetryingEmbedder wraps inner with the given policy.
func NewRetryingEmbedder(inner domain.Embedder, policy RetryPolicy, logger *zap.Logger) *RetryingEmbedder {
	if policy.MaxRetryAfter <= 0 {
		policy.MaxRetryAfter = 30 * time.Second
	}
	return &RetryingEmbedder{inner: inner, policy: policy, logger: logger}
}

// WithRateLimit caps outgoing provider calls per second. rps <= 0 disables the limiter.
func (r *RetryingEmbedder) WithRateLimit(rps float64, burst int) *RetryingEmbedder {
	if rps <= 0 {
		r.limiter = nil
		return r
	}
	if burst < 1 {
		burst = 1
	}
	r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return r
}

// WithTimer replaces the wait timer, used by tests to avoid sleeping.
func (r *RetryingEmbedder) WithTimer(newTimer func() backoff.Timer) *RetryingEmbedder {
	r.newTimer = newTimer
	return r
}

// Embed calls the provider, retrying transient failures per policy.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, domain.ErrEmptyInput
	}

	hinted := &retryAfterBackOff{BackOff: r.exponential(), max: r.policy.MaxRetryAfter}
	b := backoff.WithContext(backoff.WithMaxRetries(hinted, uint64(max(0, r.policy.MaxRetries))), ctx)

	var (
		result  domain.EmbeddingResult
		lastErr error
		attempt int
	)
	op := func() error {
		attempt++
		res, err := r.attempt(ctx, text)
		if err == nil {
			result = res
			return nil
		}
		lastErr = err

		transient, hint := classify(err)
		if !transient || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		hinted.hint = hint
		return err
	}

	log := logpkg.Or(ctx, r.logger)
	notify := func(err error, wait time.Duration) {
		metrics.EmbeddingRetriesTotal.WithLabelValues(retryReason(err)).Inc()
		log.Debug("Retrying embedding call",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	var timer backoff.Timer
	if r.newTimer != nil {
		timer = r.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(op, b, notify, timer)
	if err == nil {
		result.Hash = domain.ContentHash(text)
		return result, nil
	}

	// Cancellation while waiting surfaces ctx.Err(); keep the provider cause.
	if ctx.Err() != nil {
		if lastErr == nil {
			lastErr = ctx.Err()
		}
		return domain.EmbeddingResult{}, fmt.Errorf("%w: after %d attempts: %w", domain.ErrProviderTimeout, attempt, lastErr)
	}
	return domain.EmbeddingResult{}, fmt.Errorf("embed after %d attempts: %w", attempt, err)
}

func (r *RetryingEmbedder) attempt(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return domain.EmbeddingResult{}, fmt.Errorf("%w: waiting for rate limiter: %w", domain.ErrProviderTimeout, err)
			}
			return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
	}

	attemptCtx := ctx
	if r.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.policy.AttemptTimeout)
		defer cancel()
	}

	res, err := r.inner.Embed(attemptCtx, text)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrProviderTimeout) {
			return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrProviderTimeout, err)
		}
		return domain.EmbeddingResult{}, err
	}
	return res, nil
}

func (r *RetryingEmbedder) exponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.BaseDelay
	b.Multiplier = r.policy.Factor
	b.RandomizationFactor = r.policy.Jitter
	b.MaxInterval = r.policy.MaxRetryAfter
	b.MaxElapsedTime = 0
	return b
}

// classify reports whether err is worth retrying and any server-provided wait hint.
func classify(err error) (bool, time.Duration) {
	switch {
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrEmbeddingQuotaExceeded),
		errors.Is(err, domain.ErrRateLimited) && !isProviderError(err):
		return false, 0
	}

	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return pe.Transient(), pe.RetryAfter
	}
	if errors.Is(err, domain.ErrProviderTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true, 0
	}
	return false, 0
}

func isProviderError(err error) bool {
	var pe *domain.ProviderError
	return errors.As(err, &pe)
}

func retryReason(err error) string {
	var pe *domain.ProviderError
	switch {
	case errors.As(err, &pe) && pe.StatusCode == 429:
		return "rate_limited"
	case errors.As(err, &pe) && pe.StatusCode >= 500:
		return "server_error"
	case errors.As(err, &pe):
		return "transport"
	default:
		return "timeout"
	}
}

// retryAfterBackOff stretches the next wait to a provider hint when the hint is longer.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
	max  time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	hint := b.hint
	b.hint = 0
	if hint > b.max {
		hint = b.max
	}
	if hint > next {
		return hint
	}
	return next
}
