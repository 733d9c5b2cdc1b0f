package embedding

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/domain"
	logpkg "github.com/kailas-cloud/candidex/internal/logger"
)

// DefaultPoolSize is the number of concurrent in-flight embedding calls.
const DefaultPoolSize = 8

// Group is a set of texts embedded through the same embedder,
// e.g. job texts with the job instruction prefix.
type Group struct {
	Embedder domain.Embedder
	Texts    []string
}

// Pool embeds many texts with bounded concurrency.
// Identical texts within a group (by content hash) are embedded once and fanned out.
type Pool struct {
	embedder domain.Embedder
	workers  int
	logger   *zap.Logger
}

// NewPool creates a pool of workers. embedder is used by EmbedMany and by
// groups that leave Embedder nil. workers <= 0 uses DefaultPoolSize.
func NewPool(embedder domain.Embedder, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultPoolSize
	}
	return &Pool{embedder: embedder, workers: workers, logger: logger}
}

// Workers returns the concurrency bound.
func (p *Pool) Workers() int { return p.workers }

type slotRef struct{ group, index int }

type poolJob struct {
	embedder domain.Embedder
	text     string
	refs     []slotRef
}

// EmbedMany returns one slot per input text, in input order.
// A failed text marks its slot Unavailable; the batch is never aborted.
// When ctx is done, texts not yet embedded come back Unavailable with the context error.
func (p *Pool) EmbedMany(ctx context.Context, texts []string) []domain.EmbeddingSlot {
	return p.EmbedGroups(ctx, Group{Embedder: p.embedder, Texts: texts})[0]
}

// EmbedGroups runs all groups through a single bounded worker set.
// The result has one slot slice per group, positionally aligned with its Texts.
func (p *Pool) EmbedGroups(ctx context.Context, groups ...Group) [][]domain.EmbeddingSlot {
	out := make([][]domain.EmbeddingSlot, len(groups))
	var jobs []*poolJob
	total := 0

	for g, grp := range groups {
		out[g] = make([]domain.EmbeddingSlot, len(grp.Texts))
		total += len(grp.Texts)
		emb := grp.Embedder
		if emb == nil {
			emb = p.embedder
		}
		byHash := make(map[string]*poolJob, len(grp.Texts))
		for i, t := range grp.Texts {
			if strings.TrimSpace(t) == "" {
				out[g][i] = domain.EmbeddingSlot{Err: domain.ErrEmptyInput}
				continue
			}
			h := domain.ContentHash(t)
			if j, ok := byHash[h]; ok {
				j.refs = append(j.refs, slotRef{g, i})
				continue
			}
			j := &poolJob{embedder: emb, text: t, refs: []slotRef{{g, i}}}
			byHash[h] = j
			jobs = append(jobs, j)
		}
	}
	if len(jobs) == 0 {
		return out
	}

	queue := make(chan *poolJob, len(jobs))
	for _, j := range jobs {
		queue <- j
	}
	close(queue)

	usage := domain.UsageFromContext(ctx)
	log := logpkg.Or(ctx, p.logger)
	start := time.Now()

	var wg sync.WaitGroup
	var embedded, failed atomic.Int64
	workers := min(p.workers, len(jobs))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				slot := embedOne(ctx, j.embedder, j.text)
				if slot.Err != nil {
					failed.Add(1)
					usage.AddFailure()
				} else {
					embedded.Add(1)
					usage.AddTokens(slot.Result.TotalTokens)
				}
				// Each job owns its slot refs, so no lock is needed.
				for _, r := range j.refs {
					out[r.group][r.index] = slot
				}
			}
		}()
	}
	wg.Wait()

	fields := []zap.Field{
		zap.Int("texts", total),
		zap.Int("unique", len(jobs)),
		zap.Int("workers", workers),
		zap.Duration("duration", time.Since(start)),
	}
	if n := failed.Load(); n > 0 {
		log.Warn("Embedding batch finished with unavailable slots", append(fields, zap.Int64("failed", n))...)
	} else {
		log.Debug("Embedding batch finished", append(fields, zap.Int64("embedded", embedded.Load()))...)
	}
	return out
}

func embedOne(ctx context.Context, emb domain.Embedder, text string) domain.EmbeddingSlot {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingSlot{Err: err}
	}
	res, err := emb.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingSlot{Err: err}
	}
	if len(res.Embedding) == 0 {
		return domain.EmbeddingSlot{Err: domain.ErrProviderError}
	}
	return domain.EmbeddingSlot{Result: res}
}
