package core

import (
	"context"
	"fmt"

	"poms/pkg/domain"
)

// NewDanglingReferencesRule returns a warning rule reporting records whose
// doctor or patient reference no longer resolves. It only inspects records
// touched by the transaction and the dependents of deleted doctors.
func NewDanglingReferencesRule() domain.Rule {
	return danglingReferencesRule{}
}

type danglingReferencesRule struct{}

func (danglingReferencesRule) Name() string { return "dangling_references" }

func (r danglingReferencesRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	warn := func(entity EntityType, id int, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("%s %d %s", entity, id, msg),
			Entity:   entity,
			EntityID: id,
		})
	}
	doctorExists := func(id int) bool { _, ok := view.FindDoctor(id); return ok }
	patientExists := func(id int) bool { _, ok := view.FindPatient(id); return ok }

	for _, ch := range changes {
		if ch.Action == ActionDelete {
			continue
		}
		switch after := ch.After.(type) {
		case Patient:
			if !doctorExists(after.DoctorID) {
				warn(EntityPatient, after.ID, fmt.Sprintf("references missing doctor %d", after.DoctorID))
			}
		case Appointment:
			if !doctorExists(after.DoctorID) {
				warn(EntityAppointment, after.ID, fmt.Sprintf("references missing doctor %d", after.DoctorID))
			}
			if !patientExists(after.PatientID) {
				warn(EntityAppointment, after.ID, fmt.Sprintf("references missing patient %d", after.PatientID))
			}
		case TreatmentPlan:
			if !doctorExists(after.DoctorID) {
				warn(EntityTreatmentPlan, after.ID, fmt.Sprintf("references missing doctor %d", after.DoctorID))
			}
		case Diagnosis:
			if !patientExists(after.PatientID) {
				warn(EntityDiagnosis, after.ID, fmt.Sprintf("references missing patient %d", after.PatientID))
			}
		case Bill:
			if !patientExists(after.PatientID) {
				warn(EntityBill, after.ID, fmt.Sprintf("references missing patient %d", after.PatientID))
			}
		}
	}

	removed := deletedIDs(changes, EntityDoctor)
	if len(removed) == 0 {
		return res, nil
	}
	for _, p := range view.ListPatients() {
		if _, ok := removed[p.DoctorID]; ok {
			warn(EntityPatient, p.ID, fmt.Sprintf("references deleted doctor %d", p.DoctorID))
		}
	}
	for _, a := range view.ListAppointments() {
		if _, ok := removed[a.DoctorID]; ok {
			warn(EntityAppointment, a.ID, fmt.Sprintf("references deleted doctor %d", a.DoctorID))
		}
	}
	for _, t := range view.ListTreatmentPlans() {
		if _, ok := removed[t.DoctorID]; ok {
			warn(EntityTreatmentPlan, t.ID, fmt.Sprintf("references deleted doctor %d", t.DoctorID))
		}
	}
	return res, nil
}
