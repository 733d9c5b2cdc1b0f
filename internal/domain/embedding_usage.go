package domain

import (
	"context"
	"sync/atomic"
)

type embeddingUsageKey struct{}

// EmbeddingUsage collects token usage for a single request.
// Batch workers write concurrently, so counters are atomic.
type EmbeddingUsage struct {
	tokens atomic.Int64
	calls  atomic.Int64
	failed atomic.Int64
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens. Cache hits record a call with 0 tokens.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.tokens.Add(int64(n))
		u.calls.Add(1)
	}
}

// AddFailure records a text whose embedding ended Unavailable.
func (u *EmbeddingUsage) AddFailure() {
	if u != nil {
		u.failed.Add(1)
	}
}

// TotalTokens returns the tokens consumed so far.
func (u *EmbeddingUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	return int(u.tokens.Load())
}

// Used reports whether any embedding call completed.
func (u *EmbeddingUsage) Used() bool {
	return u != nil && u.calls.Load() > 0
}

// Failed returns the number of Unavailable embeddings.
func (u *EmbeddingUsage) Failed() int {
	if u == nil {
		return 0
	}
	return int(u.failed.Load())
}
