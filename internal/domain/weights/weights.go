// Package weights defines the recruiter-supplied category weight vector.
package weights

import (
	"math"

	"github.com/kailas-cloud/candidex/internal/domain"
	"github.com/kailas-cloud/candidex/internal/domain/score"
)

// Vector holds one non-negative weight per category. Values need not sum to anything
// in particular; Normalize scales them to sum to 1.
type Vector struct {
	Skills     float64
	Experience float64
	Projects   float64
	Education  float64
}

// Equal returns the default 25/25/25/25 vector.
func Equal() Vector {
	return Vector{Skills: 25, Experience: 25, Projects: 25, Education: 25}
}

// Of returns the weight for a category.
func (v Vector) Of(c score.Category) float64 {
	switch c {
	case score.Skills:
		return v.Skills
	case score.Experience:
		return v.Experience
	case score.Projects:
		return v.Projects
	case score.Education:
		return v.Education
	default:
		return 0
	}
}

// Validate rejects negative or non-finite weights.
func (v Vector) Validate() error {
	for _, c := range score.Categories {
		w := v.Of(c)
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return domain.Validationf("weight %s must be finite", c)
		}
		if w < 0 {
			return domain.Validationf("weight %s must be non-negative, got %v", c, w)
		}
	}
	return nil
}

// Normalize returns the vector scaled to sum to 1.0.
// All-zero vectors fail with ErrInvalidWeight.
func (v Vector) Normalize() (Vector, error) {
	if err := v.Validate(); err != nil {
		return Vector{}, err
	}
	peak := max(v.Skills, v.Experience, v.Projects, v.Education)
	if peak == 0 {
		return Vector{}, domain.ErrInvalidWeight
	}
	// Scaling by the largest weight first keeps the sum finite for any finite input.
	s := Vector{
		Skills:     v.Skills / peak,
		Experience: v.Experience / peak,
		Projects:   v.Projects / peak,
		Education:  v.Education / peak,
	}
	sum := s.Skills + s.Experience + s.Projects + s.Education
	return Vector{
		Skills:     s.Skills / sum,
		Experience: s.Experience / sum,
		Projects:   s.Projects / sum,
		Education:  s.Education / sum,
	}, nil
}
