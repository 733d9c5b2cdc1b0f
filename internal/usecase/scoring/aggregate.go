package scoring

import (
	"math"

	"github.com/kailas-cloud/candidex/internal/domain"
	"github.com/kailas-cloud/candidex/internal/domain/score"
	"github.com/kailas-cloud/candidex/internal/domain/weights"
)

// Aggregate is the weighted total of four category scores, rounded half away
// from zero and clamped to [0,100]. scores must be in score.Categories order.
// All-zero weights fail with domain.ErrInvalidWeight.
func Aggregate(scores [4]score.CategoryScore, w weights.Vector) (int, error) {
	norm, err := w.Normalize()
	if err != nil {
		return 0, err
	}
	var total float64
	for i, c := range score.Categories {
		if scores[i].Category() != c {
			return 0, domain.Validationf("score %d is %q, expected %q", i, scores[i].Category(), c)
		}
		total += norm.Of(c) * scores[i].Value()
	}
	return int(score.Clamp(math.Round(total))), nil
}
