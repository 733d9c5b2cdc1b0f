package job

import (
	"encoding/json"
	"fmt"

	domjob "github.com/kailas-cloud/candidex/internal/domain/job"
)

type itemDoc struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

type applicationDoc struct {
	CandidateID string `json:"candidateId"`
}

// jobDoc is the JSON document written by the job service.
type jobDoc struct {
	JobDescription     string    `json:"jobDescription"`
	Requirements       []itemDoc `json:"requirements"`
	Responsibilities   []itemDoc `json:"responsibilities"`
	Skills             []itemDoc `json:"skills"`
	MinExperienceYears float64   `json:"minExperienceYears"`
	EducationConstr    struct {
		Degree    string  `json:"degree"`
		Institute string  `json:"institute"`
		MinGPA    float64 `json:"minGpa"`
	} `json:"educationConstraint"`
	Applicants   []string         `json:"applicants"`
	Applications []applicationDoc `json:"applications"`
}

func parseJob(id string, raw []byte) (domjob.Requirement, error) {
	if len(raw) > 0 && raw[0] == '[' {
		var wrapped []json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped) == 0 {
			return domjob.Requirement{}, fmt.Errorf("decode job %s: malformed document", id)
		}
		raw = wrapped[0]
	}

	var doc jobDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domjob.Requirement{}, fmt.Errorf("decode job %s: %w", id, err)
	}

	applicants := append([]string(nil), doc.Applicants...)
	for _, a := range doc.Applications {
		applicants = append(applicants, a.CandidateID)
	}

	req, err := domjob.New(domjob.Spec{
		ID:                 id,
		Description:        doc.JobDescription,
		Requirements:       items(doc.Requirements),
		Responsibilities:   items(doc.Responsibilities),
		Skills:             items(doc.Skills),
		MinExperienceYears: doc.MinExperienceYears,
		Education: domjob.EducationConstraint{
			Degree:    doc.EducationConstr.Degree,
			Institute: doc.EducationConstr.Institute,
			MinGPA:    doc.EducationConstr.MinGPA,
		},
		Applicants: applicants,
	})
	if err != nil {
		return domjob.Requirement{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	return req, nil
}

func items(in []itemDoc) []domjob.Item {
	out := make([]domjob.Item, 0, len(in))
	for _, it := range in {
		out = append(out, domjob.Item{Category: it.Category, Description: it.Description})
	}
	return out
}
