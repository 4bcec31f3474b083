package core

import (
	"context"
	"fmt"
	"sort"

	"poms/pkg/domain"
)

// roomOf returns the room currently occupied by the patient.
func roomOf(view TransactionView, patientID int) (Room, bool) {
	for _, room := range view.ListRooms() {
		if room.OccupiedBy(patientID) {
			return room, true
		}
	}
	return Room{}, false
}

// assignRoom moves a room from Vacant to Occupied by the patient. A patient
// holding another room is vacated from it first. Assigning a room to the
// patient already in it changes nothing.
func assignRoom(tx Transaction, roomID, patientID int) (Room, error) {
	room, ok := tx.FindRoom(roomID)
	if !ok {
		return Room{}, domain.ErrNotFound{Entity: EntityRoom, ID: roomID}
	}
	if room.OccupiedBy(patientID) {
		return room, nil
	}
	if occupant, ok := room.Occupant(); ok {
		return Room{}, domain.PreconditionError{
			Entity:  EntityRoom,
			ID:      roomID,
			Message: fmt.Sprintf("already occupied by patient %d", occupant),
		}
	}
	if _, ok := tx.FindPatient(patientID); !ok {
		return Room{}, domain.ErrNotFound{Entity: EntityPatient, ID: patientID}
	}
	if current, ok := roomOf(tx, patientID); ok {
		if _, err := vacateRoom(tx, current.ID); err != nil {
			return Room{}, err
		}
	}
	pid := patientID
	return tx.UpdateRoom(roomID, func(r *Room) error {
		r.Occupancy = domain.Occupied
		r.PatientID = &pid
		return nil
	})
}

// vacateRoom moves a room from Occupied to Vacant.
func vacateRoom(tx Transaction, roomID int) (Room, error) {
	room, ok := tx.FindRoom(roomID)
	if !ok {
		return Room{}, domain.ErrNotFound{Entity: EntityRoom, ID: roomID}
	}
	if room.Occupancy != domain.Occupied {
		return Room{}, domain.PreconditionError{Entity: EntityRoom, ID: roomID, Message: "is already vacant"}
	}
	return tx.UpdateRoom(roomID, func(r *Room) error {
		r.Occupancy = domain.Vacant
		r.PatientID = nil
		return nil
	})
}

// CreateRoom adds a room. A room created occupied is billed like an assignment.
func (s *Service) CreateRoom(ctx context.Context, room Room) (Room, Result, error) {
	var created Room
	res, err := s.run(ctx, "create_room", func(tx Transaction) error {
		var err error
		created, err = tx.CreateRoom(room)
		return err
	})
	return created, res, err
}

// UpdateRoom edits a room's type, rate, or occupancy. Handing an occupied room
// to a different patient is refused; vacate it first.
func (s *Service) UpdateRoom(ctx context.Context, id int, mutator func(*Room) error) (Room, Result, error) {
	var updated Room
	res, err := s.run(ctx, "update_room", func(tx Transaction) error {
		before, ok := tx.FindRoom(id)
		if !ok {
			return domain.ErrNotFound{Entity: EntityRoom, ID: id}
		}
		var err error
		updated, err = tx.UpdateRoom(id, mutator)
		if err != nil {
			return err
		}
		prev, wasOccupied := before.Occupant()
		next, isOccupied := updated.Occupant()
		if wasOccupied && isOccupied && prev != next {
			return domain.PreconditionError{
				Entity:  EntityRoom,
				ID:      id,
				Message: fmt.Sprintf("already occupied by patient %d", prev),
			}
		}
		return nil
	})
	return updated, res, err
}

// DeleteRoom removes a vacant room. Occupied rooms yield a PreconditionError.
func (s *Service) DeleteRoom(ctx context.Context, id int) (Result, error) {
	return s.run(ctx, "delete_room", func(tx Transaction) error {
		return tx.DeleteRoom(id)
	})
}

// AssignRoom places the patient in the room, moving them out of any room they
// currently hold. Only a new assignment is billed.
func (s *Service) AssignRoom(ctx context.Context, roomID, patientID int) (Room, Result, error) {
	var room Room
	res, err := s.run(ctx, "assign_room", func(tx Transaction) error {
		var err error
		room, err = assignRoom(tx, roomID, patientID)
		return err
	})
	return room, res, err
}

// VacateRoom releases an occupied room.
func (s *Service) VacateRoom(ctx context.Context, roomID int) (Room, Result, error) {
	var room Room
	res, err := s.run(ctx, "vacate_room", func(tx Transaction) error {
		var err error
		room, err = vacateRoom(tx, roomID)
		return err
	})
	return room, res, err
}

// ListRooms returns rooms in insertion order.
func (s *Service) ListRooms(ctx context.Context) []Room {
	var out []Room
	s.read(ctx, func(v TransactionView) { out = v.ListRooms() })
	return out
}

// GetRoom returns a room by id.
func (s *Service) GetRoom(ctx context.Context, id int) (Room, error) {
	var (
		r  Room
		ok bool
	)
	s.read(ctx, func(v TransactionView) { r, ok = v.FindRoom(id) })
	if !ok {
		return Room{}, domain.ErrNotFound{Entity: EntityRoom, ID: id}
	}
	return r, nil
}

// VacantRooms lists vacant rooms cheapest first, ties by id.
func (s *Service) VacantRooms(ctx context.Context) []Room {
	var out []Room
	for _, room := range s.ListRooms(ctx) {
		if room.Occupancy == domain.Vacant {
			out = append(out, room)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CostPerDay != out[j].CostPerDay {
			return out[i].CostPerDay < out[j].CostPerDay
		}
		return out[i].ID < out[j].ID
	})
	return out
}
