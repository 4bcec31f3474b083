package core

import (
	"context"
	"fmt"

	"poms/pkg/domain"
)

// NewPatientStatusRule returns the blocking rule tying patient status to the
// discharge date.
func NewPatientStatusRule() domain.Rule {
	return patientStatusRule{}
}

type patientStatusRule struct{}

func (patientStatusRule) Name() string { return "patient_status_derivation" }

func (patientStatusRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, ch := range changes {
		if ch.Entity != EntityPatient || ch.Action == ActionDelete {
			continue
		}
		after, ok := ch.After.(Patient)
		if !ok {
			continue
		}
		current, ok := view.FindPatient(after.ID)
		if !ok {
			continue
		}
		if want := current.DerivedStatus(); current.Status != want {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "patient_status_derivation",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("patient %d status %q does not match discharge date (want %q)", current.ID, current.Status, want),
				Entity:   domain.EntityPatient,
				EntityID: current.ID,
			})
		}
	}
	return res, nil
}
