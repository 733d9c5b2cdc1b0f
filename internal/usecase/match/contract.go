package match

import (
	"context"

	"github.com/kailas-cloud/candidex/internal/domain"
	domcand "github.com/kailas-cloud/candidex/internal/domain/candidate"
	domjob "github.com/kailas-cloud/candidex/internal/domain/job"
	"github.com/kailas-cloud/candidex/internal/usecase/embedding"
)

// JobReader reads job openings.
type JobReader interface {
	Get(ctx context.Context, id string) (domjob.Requirement, error)
}

// CandidateReader reads candidate profiles in bulk. IDs without a stored
// profile come back in missing rather than as an error.
type CandidateReader interface {
	GetMany(ctx context.Context, ids []string) (found []domcand.Profile, missing []string, err error)
}

// BatchEmbedder embeds several text groups through one bounded worker set.
type BatchEmbedder interface {
	EmbedGroups(ctx context.Context, groups ...embedding.Group) [][]domain.EmbeddingSlot
}
