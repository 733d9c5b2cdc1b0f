package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/candidex/internal/domain/candidate"
	"github.com/kailas-cloud/candidex/internal/domain/job"
	"github.com/kailas-cloud/candidex/internal/domain/score"
)

// RuleSignal is the keyword/heuristic half of a category score.
type RuleSignal struct {
	Value   float64 // 0..100
	Matched []string
}

// Rules computes rule-based signals. now resolves open-ended ranges like "2020 - present".
type Rules struct {
	now func() time.Time
}

// NewRules creates rule evaluators. A nil clock uses time.Now.
func NewRules(now func() time.Time) Rules {
	if now == nil {
		now = time.Now
	}
	return Rules{now: now}
}

// For returns the rule signal of one category.
func (r Rules) For(c score.Category, j job.Requirement, p candidate.Profile) RuleSignal {
	switch c {
	case score.Skills:
		return r.Skills(j, p)
	case score.Experience:
		return r.Experience(j, p)
	case score.Projects:
		return r.Projects(j, p)
	case score.Education:
		return r.Education(j, p)
	default:
		return RuleSignal{}
	}
}

// Skills is the share of job skill keywords found among the candidate's skills.
func (r Rules) Skills(j job.Requirement, p candidate.Profile) RuleSignal {
	v, matched := keywordCoverage(j.SkillKeywords(), p.Skills().All())
	return RuleSignal{Value: v, Matched: matched}
}

// Projects is the share of job skill keywords found among project technologies.
func (r Rules) Projects(j job.Requirement, p candidate.Profile) RuleSignal {
	v, matched := keywordCoverage(j.SkillKeywords(), p.Technologies())
	return RuleSignal{Value: v, Matched: matched}
}

// Experience is min(100, 100*years/max(1, minYears)), years summed over parseable durations.
func (r Rules) Experience(j job.Requirement, p candidate.Profile) RuleSignal {
	now := r.now()
	var years float64
	for _, e := range p.Experience() {
		years += parseYears(e.Duration, now)
	}
	v := math.Min(100, 100*years/math.Max(1, j.MinExperienceYears()))
	return RuleSignal{Value: v, Matched: []string{strconv.FormatFloat(years, 'f', 1, 64) + " years"}}
}

// Education is 100 when a degree matches and the GPA (if both sides state one)
// meets the minimum, 50 when only the degree matches, else 0.
// A job without a degree requirement scores 100.
func (r Rules) Education(j job.Requirement, p candidate.Profile) RuleSignal {
	want := j.Education()
	degree := strings.ToLower(strings.TrimSpace(want.Degree))
	if degree == "" {
		return RuleSignal{Value: 100}
	}

	best := 0.0
	var matched []string
	for _, e := range p.Education() {
		if !strings.Contains(strings.ToLower(e.Degree), degree) {
			continue
		}
		v := 50.0
		gpa, hasGPA := parseGPA(e.GPA)
		if want.MinGPA <= 0 || !hasGPA || gpa >= want.MinGPA {
			v = 100
		}
		if v > best {
			best = v
			matched = []string{e.Degree}
		}
	}
	return RuleSignal{Value: best, Matched: matched}
}

var gpaRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseGPA reads the first number of a GPA string such as "3.7/4.0".
func parseGPA(s string) (float64, bool) {
	m := gpaRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
