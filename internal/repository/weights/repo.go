package weights

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/candidex/internal/domain"
	"github.com/kailas-cloud/candidex/internal/domain/score"
	domweights "github.com/kailas-cloud/candidex/internal/domain/weights"
)

// store is the consumer interface for weight hashes (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo keeps recruiter weights per job as a hash under {prefix}weights:{jobID}.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a weights repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Put stores the weights for a job, replacing every category.
func (r *Repo) Put(ctx context.Context, jobID string, w domweights.Vector) error {
	if err := w.Validate(); err != nil {
		return err
	}
	fields := make(map[string]string, len(score.Categories))
	for _, c := range score.Categories {
		fields[string(c)] = strconv.FormatFloat(w.Of(c), 'f', -1, 64)
	}
	key := r.key(jobID)
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns the stored weights, or domain.ErrNotFound when none were set.
func (r *Repo) Get(ctx context.Context, jobID string) (domweights.Vector, error) {
	key := r.key(jobID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domweights.Vector{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domweights.Vector{}, fmt.Errorf("weights for job %s: %w", jobID, domain.ErrNotFound)
	}

	var vals [4]float64
	for i, c := range score.Categories {
		raw, ok := m[string(c)]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domweights.Vector{}, fmt.Errorf("weights %s field %s: %w", key, c, err)
		}
		vals[i] = f
	}
	return domweights.Vector{
		Skills:     vals[score.Skills.Index()],
		Experience: vals[score.Experience.Index()],
		Projects:   vals[score.Projects.Index()],
		Education:  vals[score.Education.Index()],
	}, nil
}

// GetOrDefault returns the stored weights, falling back to equal weights.
func (r *Repo) GetOrDefault(ctx context.Context, jobID string) (domweights.Vector, error) {
	w, err := r.Get(ctx, jobID)
	if err == nil {
		return w, nil
	}
	if isNotFound(err) {
		return domweights.Equal(), nil
	}
	return domweights.Vector{}, err
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func (r *Repo) key(jobID string) string {
	return r.keyPrefix + "weights:" + jobID
}
