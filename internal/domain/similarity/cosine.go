// Package similarity computes vector similarity for embeddings.
package similarity

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/candidex/internal/domain"
)

// Cosine returns the cosine similarity of a and b remapped from [-1,1] to [0,1]
// via (cos+1)/2. If either vector has zero L2 norm the result is exactly 0.
// Accumulation is done in float64.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(cos) {
		return 0, nil
	}
	// Rounding can push |cos| slightly past 1.
	cos = math.Max(-1, math.Min(1, cos))
	return (cos + 1) / 2, nil
}
