package shortlist

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/candidex/internal/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Stage
		want     bool
	}{
		{Applicant, Shortlisted, true},
		{Applicant, Rejected, true},
		{Applicant, Finalist, false},
		{Shortlisted, Finalist, true},
		{Shortlisted, Rejected, true},
		{Shortlisted, Applicant, false},
		{Rejected, Shortlisted, true},
		{Rejected, Finalist, false},
		{Rejected, Applicant, false},
		{Finalist, Shortlisted, false},
		{Finalist, Rejected, false},
		{Finalist, Applicant, false},
		{Shortlisted, Shortlisted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCheck_FinalistIsTerminal(t *testing.T) {
	err := Check("c1", Finalist, Rejected)
	var ite *domain.IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if ite.From != "FINALIST" || ite.To != "REJECTED" || ite.CandidateID != "c1" {
		t.Errorf("unexpected fields: %+v", ite)
	}
	if !Finalist.Terminal() || Shortlisted.Terminal() {
		t.Error("only FINALIST is terminal")
	}
}

func TestStageValid(t *testing.T) {
	if !Applicant.Valid() || Stage("HIRED").Valid() {
		t.Error("unexpected stage validity")
	}
}
