package candidate

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/candidex/internal/db"
	"github.com/kailas-cloud/candidex/internal/domain"
	domcand "github.com/kailas-cloud/candidex/internal/domain/candidate"
)

// store is the consumer interface for candidate documents (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
}

// Repo reads candidate profiles stored as JSON documents under {prefix}candidate:{id}.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a candidate repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Get returns a profile by ID or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domcand.Profile, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcand.Profile{}, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
		}
		return domcand.Profile{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseProfile(id, raw)
}

// GetMany fetches profiles in one round-trip. IDs with no stored document are
// returned in missing; found profiles keep the input order.
func (r *Repo) GetMany(ctx context.Context, ids []string) (found []domcand.Profile, missing []string, err error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}

	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, nil, fmt.Errorf("json.get candidates: %w", err)
	}

	found = make([]domcand.Profile, 0, len(ids))
	for i, id := range ids {
		if i >= len(raws) || raws[i] == nil {
			missing = append(missing, id)
			continue
		}
		p, err := parseProfile(id, raws[i])
		if err != nil {
			return nil, nil, err
		}
		found = append(found, p)
	}
	return found, missing, nil
}

func (r *Repo) key(id string) string {
	return r.keyPrefix + "candidate:" + id
}
