package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/candidex/internal/db"
	"github.com/kailas-cloud/candidex/internal/domain"
	domjob "github.com/kailas-cloud/candidex/internal/domain/job"
)

// store is the consumer interface for job documents (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Repo reads job openings stored as JSON documents under {prefix}job:{id}.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a job repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Get returns a job by ID or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domjob.Requirement, error) {
	key := r.keyPrefix + "job:" + id
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domjob.Requirement{}, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
		}
		return domjob.Requirement{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseJob(id, raw)
}
