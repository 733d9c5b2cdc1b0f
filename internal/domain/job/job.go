// Package job holds the structured requirements of a job opening.
package job

import (
	"fmt"
	"strings"
)

// Item is a categorized requirement, responsibility or skill line.
type Item struct {
	Category    string
	Description string
}

// EducationConstraint is the minimum education accepted for the role.
type EducationConstraint struct {
	Degree    string
	Institute string
	MinGPA    float64
}

// Requirement is the job aggregate (immutable value object).
type Requirement struct {
	id                 string
	description        string
	requirements       []Item
	responsibilities   []Item
	skills             []Item
	minExperienceYears float64
	education          EducationConstraint
	applicants         []string
}

// Spec carries the fields for New.
type Spec struct {
	ID                 string
	Description        string
	Requirements       []Item
	Responsibilities   []Item
	Skills             []Item
	MinExperienceYears float64
	Education          EducationConstraint
	Applicants         []string
}

// New validates and creates a Requirement.
func New(s Spec) (Requirement, error) {
	if strings.TrimSpace(s.ID) == "" {
		return Requirement{}, fmt.Errorf("job ID is required")
	}
	if s.MinExperienceYears < 0 {
		return Requirement{}, fmt.Errorf("min experience years must be non-negative")
	}
	if s.Education.MinGPA < 0 {
		return Requirement{}, fmt.Errorf("min GPA must be non-negative")
	}
	return Requirement{
		id:                 s.ID,
		description:        s.Description,
		requirements:       append([]Item(nil), s.Requirements...),
		responsibilities:   append([]Item(nil), s.Responsibilities...),
		skills:             append([]Item(nil), s.Skills...),
		minExperienceYears: s.MinExperienceYears,
		education:          s.Education,
		applicants:         dedup(s.Applicants),
	}, nil
}

// ID returns the job identifier.
func (r Requirement) ID() string { return r.id }

// Description returns the free-text job description.
func (r Requirement) Description() string { return r.description }

// Requirements returns requirement items.
func (r Requirement) Requirements() []Item { return r.requirements }

// Responsibilities returns responsibility items.
func (r Requirement) Responsibilities() []Item { return r.responsibilities }

// Skills returns skill items.
func (r Requirement) Skills() []Item { return r.skills }

// MinExperienceYears returns the minimum years of experience.
func (r Requirement) MinExperienceYears() float64 { return r.minExperienceYears }

// Education returns the education constraint.
func (r Requirement) Education() EducationConstraint { return r.education }

// Applicants returns the IDs of candidates who applied, in application order.
func (r Requirement) Applicants() []string { return r.applicants }

// SkillKeywords splits skill descriptions on commas, semicolons and slashes into
// lowercased, deduplicated keywords.
func (r Requirement) SkillKeywords() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range r.skills {
		for _, kw := range strings.FieldsFunc(it.Description, isKeywordSep) {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}

// SkillsText is the text embedded for the skills category.
func (r Requirement) SkillsText() string {
	return joinItems(r.skills, ", ")
}

// ExperienceText is the text embedded for the experience category.
func (r Requirement) ExperienceText() string {
	parts := []string{strings.TrimSpace(r.description), joinItems(r.responsibilities, "\n")}
	return joinNonEmpty(parts, "\n")
}

// ProjectsText is the text embedded for the projects category.
func (r Requirement) ProjectsText() string {
	parts := []string{joinItems(r.requirements, "\n"), joinItems(r.skills, ", ")}
	return joinNonEmpty(parts, "\n")
}

// EducationText is the text embedded for the education category.
func (r Requirement) EducationText() string {
	return joinNonEmpty([]string{r.education.Degree, r.education.Institute}, ", ")
}

func isKeywordSep(r rune) bool {
	return r == ',' || r == ';' || r == '/' || r == '\n'
}

func joinItems(items []Item, sep string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Description)
	}
	return joinNonEmpty(parts, sep)
}

func joinNonEmpty(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
