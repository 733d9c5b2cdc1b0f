// Package candidate holds the structured resume of an applicant.
package candidate

import (
	"fmt"
	"strings"
)

// Skills groups candidate skill strings by kind.
type Skills struct {
	Technical []string
	Soft      []string
	Languages []string
	Tools     []string
	Other     []string
}

// All returns every skill string across groups.
func (s Skills) All() []string {
	out := make([]string, 0, len(s.Technical)+len(s.Soft)+len(s.Languages)+len(s.Tools)+len(s.Other))
	out = append(out, s.Technical...)
	out = append(out, s.Tools...)
	out = append(out, s.Languages...)
	out = append(out, s.Other...)
	out = append(out, s.Soft...)
	return out
}

// Experience is a single employment entry.
type Experience struct {
	JobTitle    string
	Company     string
	Duration    string
	Description []string
}

// Education is a single degree entry. GPA is kept as written on the resume.
type Education struct {
	Degree      string
	Institution string
	Year        string
	GPA         string
}

// Project is a single portfolio entry.
type Project struct {
	Title        string
	Description  string
	Technologies []string
}

// Profile is the candidate aggregate (immutable value object).
type Profile struct {
	id         string
	skills     Skills
	experience []Experience
	education  []Education
	projects   []Project
}

// New validates and creates a Profile.
func New(id string, skills Skills, exp []Experience, edu []Education, proj []Project) (Profile, error) {
	if strings.TrimSpace(id) == "" {
		return Profile{}, fmt.Errorf("candidate ID is required")
	}
	return Profile{
		id:         id,
		skills:     skills,
		experience: append([]Experience(nil), exp...),
		education:  append([]Education(nil), edu...),
		projects:   append([]Project(nil), proj...),
	}, nil
}

// ID returns the candidate identifier.
func (p Profile) ID() string { return p.id }

// Skills returns the grouped skills.
func (p Profile) Skills() Skills { return p.skills }

// Experience returns employment entries.
func (p Profile) Experience() []Experience { return p.experience }

// Education returns degree entries.
func (p Profile) Education() []Education { return p.education }

// Projects returns portfolio entries.
func (p Profile) Projects() []Project { return p.projects }

// Technologies returns the union of project technologies, in first-seen order.
func (p Profile) Technologies() []string {
	seen := make(map[string]bool)
	var out []string
	for _, pr := range p.projects {
		for _, t := range pr.Technologies {
			k := strings.ToLower(strings.TrimSpace(t))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, t)
		}
	}
	return out
}

// SkillsText is the text embedded for the skills category.
func (p Profile) SkillsText() string {
	s := p.skills
	parts := make([]string, 0, len(s.Technical)+len(s.Tools)+len(s.Languages)+len(s.Other))
	parts = append(parts, s.Technical...)
	parts = append(parts, s.Tools...)
	parts = append(parts, s.Languages...)
	parts = append(parts, s.Other...)
	return joinNonEmpty(parts, ", ")
}

// ExperienceText is the text embedded for the experience category.
func (p Profile) ExperienceText() string {
	lines := make([]string, 0, len(p.experience))
	for _, e := range p.experience {
		head := strings.TrimSpace(e.JobTitle)
		if c := strings.TrimSpace(e.Company); c != "" {
			head += " at " + c
		}
		desc := joinNonEmpty(e.Description, " ")
		lines = append(lines, joinNonEmpty([]string{head, desc}, ": "))
	}
	return joinNonEmpty(lines, "\n")
}

// ProjectsText is the text embedded for the projects category.
func (p Profile) ProjectsText() string {
	lines := make([]string, 0, len(p.projects))
	for _, pr := range p.projects {
		line := joinNonEmpty([]string{pr.Title, pr.Description}, ": ")
		if techs := joinNonEmpty(pr.Technologies, ", "); techs != "" {
			line = joinNonEmpty([]string{line, "(" + techs + ")"}, " ")
		}
		lines = append(lines, line)
	}
	return joinNonEmpty(lines, "\n")
}

// EducationText is the text embedded for the education category.
func (p Profile) EducationText() string {
	lines := make([]string, 0, len(p.education))
	for _, e := range p.education {
		lines = append(lines, joinNonEmpty([]string{e.Degree, e.Institution}, ", "))
	}
	return joinNonEmpty(lines, "\n")
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
