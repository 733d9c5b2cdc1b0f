// Package shortlist models the per-job stage machine for applicants.
package shortlist

import (
	"time"

	"github.com/kailas-cloud/candidex/internal/domain"
)

// Stage is an applicant's position in the hiring funnel for one job.
type Stage string

// Stages.
const (
	Applicant   Stage = "APPLICANT"
	Shortlisted Stage = "SHORTLISTED"
	Finalist    Stage = "FINALIST"
	Rejected    Stage = "REJECTED"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case Applicant, Shortlisted, Finalist, Rejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s Stage) Terminal() bool { return s == Finalist }

var allowed = map[Stage]map[Stage]bool{
	Applicant:   {Shortlisted: true, Rejected: true},
	Shortlisted: {Finalist: true, Rejected: true},
	Rejected:    {Shortlisted: true},
}

// CanTransition reports whether from -> to is a legal move. Same-stage moves are not transitions.
func CanTransition(from, to Stage) bool {
	return allowed[from][to]
}

// Check returns an IllegalTransitionError when from -> to is not allowed.
func Check(candidateID string, from, to Stage) error {
	if !CanTransition(from, to) {
		return &domain.IllegalTransitionError{CandidateID: candidateID, From: string(from), To: string(to)}
	}
	return nil
}

// Transition is one append-only entry of a candidate's stage history.
type Transition struct {
	JobID       string
	CandidateID string
	From        Stage
	To          Stage
	At          time.Time
}

// Decision is the current stage of a candidate for a job.
type Decision struct {
	candidateID string
	stage       Stage
	decidedAt   time.Time
}

// NewDecision creates a Decision.
func NewDecision(candidateID string, stage Stage, decidedAt time.Time) Decision {
	return Decision{candidateID: candidateID, stage: stage, decidedAt: decidedAt}
}

// CandidateID returns the candidate identifier.
func (d Decision) CandidateID() string { return d.candidateID }

// Stage returns the current stage.
func (d Decision) Stage() Stage { return d.stage }

// DecidedAt returns when the stage was entered. Zero for untouched applicants.
func (d Decision) DecidedAt() time.Time { return d.decidedAt }
