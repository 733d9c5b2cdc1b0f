package candidate

import (
	"encoding/json"
	"fmt"

	domcand "github.com/kailas-cloud/candidex/internal/domain/candidate"
)

// profileDoc is the JSON document written by the resume parser.
type profileDoc struct {
	ID     string `json:"id"`
	Skills struct {
		Technical []string `json:"technical"`
		Soft      []string `json:"soft"`
		Languages []string `json:"languages"`
		Tools     []string `json:"tools"`
		Other     []string `json:"other"`
	} `json:"skills"`
	Experience []struct {
		JobTitle    string   `json:"job_title"`
		Company     string   `json:"company"`
		Duration    string   `json:"duration"`
		Description []string `json:"description"`
	} `json:"experience"`
	Education []struct {
		Degree      string `json:"degree"`
		Institution string `json:"institution"`
		Year        string `json:"year"`
		GPA         string `json:"gpa"`
	} `json:"education"`
	Projects []struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Technologies []string `json:"technologies"`
	} `json:"projects"`
}

// parseProfile decodes a stored document. JSON.GET with a "$" path wraps the
// document in an array, so both shapes are accepted.
func parseProfile(id string, raw []byte) (domcand.Profile, error) {
	var doc profileDoc
	if err := unmarshalDoc(raw, &doc); err != nil {
		return domcand.Profile{}, fmt.Errorf("decode candidate %s: %w", id, err)
	}

	skills := domcand.Skills{
		Technical: doc.Skills.Technical,
		Soft:      doc.Skills.Soft,
		Languages: doc.Skills.Languages,
		Tools:     doc.Skills.Tools,
		Other:     doc.Skills.Other,
	}
	exp := make([]domcand.Experience, 0, len(doc.Experience))
	for _, e := range doc.Experience {
		exp = append(exp, domcand.Experience{
			JobTitle: e.JobTitle, Company: e.Company, Duration: e.Duration, Description: e.Description,
		})
	}
	edu := make([]domcand.Education, 0, len(doc.Education))
	for _, e := range doc.Education {
		edu = append(edu, domcand.Education{
			Degree: e.Degree, Institution: e.Institution, Year: e.Year, GPA: e.GPA,
		})
	}
	proj := make([]domcand.Project, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		proj = append(proj, domcand.Project{
			Title: p.Title, Description: p.Description, Technologies: p.Technologies,
		})
	}

	// The key is authoritative for the id.
	return domcand.New(id, skills, exp, edu, proj)
}

func unmarshalDoc(raw []byte, v any) error {
	if len(raw) > 0 && raw[0] == '[' {
		var wrapped []json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return err
		}
		if len(wrapped) == 0 {
			return fmt.Errorf("empty document")
		}
		raw = wrapped[0]
	}
	return json.Unmarshal(raw, v)
}
