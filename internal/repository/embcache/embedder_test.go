package embcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/db"
	"github.com/kailas-cloud/candidex/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	var gotKey string
	ms.setNXFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) (bool, error) {
		gotKey = key
		if ttl != 0 {
			t.Errorf("expected no ttl by default, got %v", ttl)
		}
		return true, nil
	}

	result, err := ce.Embed(context.Background(), "  golang  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if want := testPrefix + domain.ContentHash("golang"); gotKey != want {
		t.Errorf("key = %q, want %q", gotKey, want)
	}
	if result.Hash != domain.ContentHash("golang") {
		t.Error("expected content hash on result")
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	cached := encodeVector([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Errorf("cache hit must not call the provider, got %d calls", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: &domain.ProviderError{StatusCode: 500}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.setNXFn = func(context.Context, string, []byte, time.Duration) (bool, error) {
		t.Error("failed embeddings must not be cached")
		return false, nil
	}

	_, err := ce.Embed(context.Background(), "test text")
	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestEmbed_StoreErrorsDegradeToMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("connection reset") }
	ms.setNXFn = func(context.Context, string, []byte, time.Duration) (bool, error) {
		return false, errors.New("connection reset")
	}

	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("store failure must not fail the call: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected provider call, got %d", inner.calls)
	}
}

func TestEmbed_CorruptEntryIgnored(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) { return []byte{1, 2, 3}, nil }

	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("corrupt entry should fall through to provider, got %d calls", inner.calls)
	}
}

func TestEmbed_TTLPassedToStore(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ce.WithTTL(time.Hour)

	var got time.Duration
	ms.setNXFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) (bool, error) {
		got = ttl
		return true, nil
	}
	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != time.Hour {
		t.Errorf("ttl = %v, want 1h", got)
	}
}

func TestMemoryStore_InsertIfAbsent(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	ok, _ := m.SetNX(ctx, "k", []byte("first"), 0)
	if !ok {
		t.Fatal("first write should succeed")
	}
	ok, _ = m.SetNX(ctx, "k", []byte("second"), 0)
	if ok {
		t.Fatal("second write should be rejected")
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "first" {
		t.Fatalf("expected first value to win, got %q, %v", got, err)
	}
	if _, err := m.Get(ctx, "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryStore_ConcurrentEmbed(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5, 0.5}, TotalTokens: 2}}
	mem := NewMemoryStore()
	ce := New(inner, mem, testPrefix, nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ce.Embed(context.Background(), "shared text"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if mem.Len() != 1 {
		t.Errorf("expected a single cache entry, got %d", mem.Len())
	}
	res, err := ce.Embed(context.Background(), "shared text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 0 {
		t.Errorf("expected a hit after warmup, got %d tokens", res.TotalTokens)
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("index %d: got %v want %v", i, out[i], in[i])
		}
	}
}
