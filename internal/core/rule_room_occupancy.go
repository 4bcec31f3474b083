package core

import (
	"context"
	"fmt"

	"poms/pkg/domain"
)

// NewRoomOccupancyUniqueRule returns the blocking rule that keeps each patient
// in at most one occupied room.
func NewRoomOccupancyUniqueRule() domain.Rule {
	return roomOccupancyUniqueRule{}
}

type roomOccupancyUniqueRule struct{}

func (roomOccupancyUniqueRule) Name() string { return "room_occupancy_unique" }

func (roomOccupancyUniqueRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	touched := map[int]struct{}{}
	for _, room := range changedRooms(changes) {
		if pid, ok := room.Occupant(); ok {
			touched[pid] = struct{}{}
		}
	}
	res := domain.Result{}
	if len(touched) == 0 {
		return res, nil
	}
	held := map[int][]int{}
	for _, room := range view.ListRooms() {
		pid, ok := room.Occupant()
		if !ok {
			continue
		}
		if _, ok := touched[pid]; ok {
			held[pid] = append(held[pid], room.ID)
		}
	}
	for pid, rooms := range held {
		if len(rooms) < 2 {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "room_occupancy_unique",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("patient %d already occupies room %d; cannot also occupy room %d", pid, rooms[0], rooms[len(rooms)-1]),
			Entity:   domain.EntityRoom,
			EntityID: rooms[len(rooms)-1],
		})
	}
	return res, nil
}

// NewRoomOccupancyConsistencyRule returns the blocking rule requiring an
// occupied room to be bound to an existing patient.
func NewRoomOccupancyConsistencyRule() domain.Rule {
	return roomOccupancyConsistencyRule{}
}

type roomOccupancyConsistencyRule struct{}

func (roomOccupancyConsistencyRule) Name() string { return "room_occupancy_consistency" }

func (roomOccupancyConsistencyRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	check := map[int]struct{}{}
	for _, room := range changedRooms(changes) {
		check[room.ID] = struct{}{}
	}
	removed := deletedIDs(changes, EntityPatient)
	for _, room := range view.ListRooms() {
		if pid, ok := room.Occupant(); ok {
			if _, gone := removed[pid]; gone {
				check[room.ID] = struct{}{}
			}
		}
	}
	for id := range check {
		room, ok := view.FindRoom(id)
		if !ok {
			continue
		}
		switch {
		case room.Occupancy == domain.Occupied && room.PatientID == nil:
			res.Violations = append(res.Violations, occupancyViolation(room, "is occupied without a patient"))
		case room.Occupancy == domain.Vacant && room.PatientID != nil:
			res.Violations = append(res.Violations, occupancyViolation(room, "is vacant but bound to a patient"))
		case room.Occupancy == domain.Occupied:
			if _, ok := view.FindPatient(*room.PatientID); !ok {
				res.Violations = append(res.Violations, occupancyViolation(room, fmt.Sprintf("is occupied by missing patient %d", *room.PatientID)))
			}
		}
	}
	return res, nil
}

func occupancyViolation(room Room, msg string) domain.Violation {
	return domain.Violation{
		Rule:     "room_occupancy_consistency",
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("room %d %s", room.ID, msg),
		Entity:   domain.EntityRoom,
		EntityID: room.ID,
	}
}
