// Package score holds per-category match scores and their evidence.
package score

import (
	"fmt"
	"math"
)

// Category names one of the four scored dimensions.
type Category string

// Scored categories.
const (
	Skills     Category = "skills"
	Experience Category = "experience"
	Projects   Category = "projects"
	Education  Category = "education"
)

// Categories is the fixed evaluation order. Aggregation iterates in this order.
var Categories = [4]Category{Skills, Experience, Projects, Education}

// Index returns the position of c in Categories, or -1.
func (c Category) Index() int {
	for i, cc := range Categories {
		if cc == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return c.Index() >= 0 }

// Evidence explains how a category score was derived.
type Evidence struct {
	MatchedTerms []string
	Similarity   float64 // remapped cosine in [0,1]; 0 when degraded
	Semantic     float64 // 0..100
	Rule         float64 // 0..100
	Degraded     bool    // semantic signal was unavailable
}

// CategoryScore is a 0..100 score for a single category.
type CategoryScore struct {
	category Category
	value    float64
	evidence Evidence
}

// New validates and creates a CategoryScore.
func New(c Category, value float64, ev Evidence) (CategoryScore, error) {
	if !c.Valid() {
		return CategoryScore{}, fmt.Errorf("unknown category %q", c)
	}
	if math.IsNaN(value) || value < 0 || value > 100 {
		return CategoryScore{}, fmt.Errorf("category %s score %v out of range [0,100]", c, value)
	}
	return CategoryScore{category: c, value: value, evidence: ev}, nil
}

// Must is New for values already known to be in range.
func Must(c Category, value float64, ev Evidence) CategoryScore {
	s, err := New(c, value, ev)
	if err != nil {
		panic(err)
	}
	return s
}

// Category returns the scored category.
func (s CategoryScore) Category() Category { return s.category }

// Value returns the score in [0,100].
func (s CategoryScore) Value() float64 { return s.value }

// Evidence returns the explanation for the score.
func (s CategoryScore) Evidence() Evidence { return s.evidence }

// Clamp bounds v to [0,100], mapping NaN to 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
