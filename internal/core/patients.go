package core

import (
	"context"

	"poms/pkg/domain"
)

// PatientUpdate describes an edit of a patient record. RoomID nil leaves the
// room assignment untouched, 0 releases the current room, and any other
// value keeps or moves the patient to that room.
type PatientUpdate struct {
	Apply  func(*Patient) error
	RoomID *int
}

// CreatePatient registers a patient without a room.
func (s *Service) CreatePatient(ctx context.Context, patient Patient) (Patient, Result, error) {
	return s.AdmitPatient(ctx, patient, nil)
}

// AdmitPatient registers a patient and, when roomID is set, assigns the room
// in the same transaction. The assignment is billed by the billing trigger.
func (s *Service) AdmitPatient(ctx context.Context, patient Patient, roomID *int) (Patient, Result, error) {
	var created Patient
	res, err := s.run(ctx, "admit_patient", func(tx Transaction) error {
		var err error
		created, err = tx.CreatePatient(patient)
		if err != nil {
			return err
		}
		if roomID == nil {
			return nil
		}
		_, err = assignRoom(tx, *roomID, created.ID)
		return err
	})
	return created, res, err
}

// UpdatePatient applies an edit and reconciles the room assignment. Staying
// in the same room bills nothing.
func (s *Service) UpdatePatient(ctx context.Context, id int, update PatientUpdate) (Patient, Result, error) {
	var updated Patient
	res, err := s.run(ctx, "update_patient", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdatePatient(id, update.Apply)
		if err != nil {
			return err
		}
		if update.RoomID == nil {
			return nil
		}
		if *update.RoomID == 0 {
			if current, ok := roomOf(tx, id); ok {
				_, err = vacateRoom(tx, current.ID)
			}
			return err
		}
		_, err = assignRoom(tx, *update.RoomID, id)
		return err
	})
	return updated, res, err
}

// ListPatients returns patients in insertion order.
func (s *Service) ListPatients(ctx context.Context) []Patient {
	var out []Patient
	s.read(ctx, func(v TransactionView) { out = v.ListPatients() })
	return out
}

// GetPatient returns a patient by id.
func (s *Service) GetPatient(ctx context.Context, id int) (Patient, error) {
	var (
		p  Patient
		ok bool
	)
	s.read(ctx, func(v TransactionView) { p, ok = v.FindPatient(id) })
	if !ok {
		return Patient{}, domain.ErrNotFound{Entity: EntityPatient, ID: id}
	}
	return p, nil
}
