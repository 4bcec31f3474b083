package core

import (
	"context"

	"poms/pkg/domain"
)

// DeletePatient removes a patient and every record scoped to it: the room it
// occupies is vacated, then its bills, appointments, treatment plans, and
// diagnoses are deleted, then the patient itself.
func (s *Service) DeletePatient(ctx context.Context, id int) (Result, error) {
	res, err := s.run(ctx, "delete_patient", func(tx Transaction) error {
		if _, ok := tx.FindPatient(id); !ok {
			return domain.ErrNotFound{Entity: EntityPatient, ID: id}
		}
		return cascadeDeletePatient(tx, id)
	})
	if err == nil || domain.IsPersistence(err) {
		s.logger.Info().Int("patient_id", id).Int("changes", len(res.Changes)).Msg("patient deleted with dependents")
	}
	return res, err
}

func cascadeDeletePatient(tx Transaction, id int) error {
	if room, ok := roomOf(tx, id); ok {
		if _, err := vacateRoom(tx, room.ID); err != nil {
			return err
		}
	}
	for _, b := range tx.ListBills() {
		if b.PatientID == id {
			if err := tx.DeleteBill(b.ID); err != nil {
				return err
			}
		}
	}
	for _, a := range tx.ListAppointments() {
		if a.PatientID == id {
			if err := tx.DeleteAppointment(a.ID); err != nil {
				return err
			}
		}
	}
	for _, p := range tx.ListTreatmentPlans() {
		if p.PatientID == id {
			if err := tx.DeleteTreatmentPlan(p.ID); err != nil {
				return err
			}
		}
	}
	for _, d := range tx.ListDiagnoses() {
		if d.PatientID == id {
			if err := tx.DeleteDiagnosis(d.ID); err != nil {
				return err
			}
		}
	}
	return tx.DeletePatient(id)
}
