package match

import (
	"sort"

	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	"github.com/kailas-cloud/candidex/internal/domain/score"
)

// Rank orders results best first and keeps the top k.
// Ties on total break on skills, then experience (both higher first), then the
// lexicographically smaller candidate ID. k <= 0 yields an empty slice.
func Rank(results []dommatch.Result, k int) []dommatch.Result {
	if k <= 0 {
		return []dommatch.Result{}
	}
	out := make([]dommatch.Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// Less reports whether a ranks strictly ahead of b.
func Less(a, b dommatch.Result) bool {
	if a.Total() != b.Total() {
		return a.Total() > b.Total()
	}
	if as, bs := a.Score(score.Skills).Value(), b.Score(score.Skills).Value(); as != bs {
		return as > bs
	}
	if ae, be := a.Score(score.Experience).Value(), b.Score(score.Experience).Value(); ae != be {
		return ae > be
	}
	return a.CandidateID() < b.CandidateID()
}
