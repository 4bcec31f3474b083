package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poms/pkg/domain"
)

func TestAssignRoomMovesPatientAndBillsNewRoom(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	room, res, err := svc.AssignRoom(ctx, 7, 6)
	require.NoError(t, err)
	assert.Equal(t, domain.Occupied, room.Occupancy)
	require.NotNil(t, room.PatientID)
	assert.Equal(t, 6, *room.PatientID)

	old, err := svc.GetRoom(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Vacant, old.Occupancy)
	assert.Nil(t, old.PatientID)

	bills := res.TriggeredBills()
	require.Len(t, bills, 1)
	assert.Equal(t, 6, bills[0].PatientID)
	assert.Equal(t, 30000.0, bills[0].Amount)
	assert.Equal(t, domain.BillUnpaid, bills[0].Status)
	assert.Equal(t, testToday, bills[0].Date)
	assert.Equal(t, "ICU R7", svc.PatientRoom(ctx, 6))
}

func TestAssignRoomRejectsOccupiedRoom(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()
	before := svc.Store().ExportState()

	_, _, err := svc.AssignRoom(ctx, 2, 6)
	require.Error(t, err)
	assert.True(t, domain.IsPrecondition(err))
	assert.Equal(t, before, svc.Store().ExportState())

	_, res, err := svc.AssignRoom(ctx, 2, 2)
	require.NoError(t, err, "same patient is a no-op")
	assert.Empty(t, res.Changes)

	_, _, err = svc.AssignRoom(ctx, 5, 404)
	assert.True(t, domain.IsNotFound(err))
	_, _, err = svc.AssignRoom(ctx, 404, 6)
	assert.True(t, domain.IsNotFound(err))
}

func TestNoPatientEverHoldsTwoRooms(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()
	for _, roomID := range []int{5, 6, 7, 8, 17} {
		_, _, err := svc.AssignRoom(ctx, roomID, 2)
		require.NoError(t, err)
	}
	held := 0
	for _, r := range svc.ListRooms(ctx) {
		if r.OccupiedBy(2) {
			held++
			assert.Equal(t, 17, r.ID)
		}
	}
	assert.Equal(t, 1, held)

	_, _, err := svc.UpdateRoom(ctx, 5, func(r *Room) error {
		r.Occupancy = domain.Occupied
		r.PatientID = intPtr(2)
		return nil
	})
	require.Error(t, err)
	assert.True(t, domain.IsRuleViolation(err))
}

func TestVacateRoom(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	room, res, err := svc.VacateRoom(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.Vacant, room.Occupancy)
	assert.Nil(t, room.PatientID)
	assert.Empty(t, res.TriggeredBills())
	assert.Equal(t, domain.MissingDisplay, svc.PatientRoom(ctx, 5))

	_, _, err = svc.VacateRoom(ctx, 4)
	assert.True(t, domain.IsPrecondition(err))
}

func TestUpdateRoomRefusesHandingOccupiedRoomToAnotherPatient(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	_, _, err := svc.UpdateRoom(ctx, 1, func(r *Room) error {
		r.PatientID = intPtr(19)
		return nil
	})
	require.Error(t, err)
	assert.True(t, domain.IsPrecondition(err))

	room, res, err := svc.UpdateRoom(ctx, 1, func(r *Room) error {
		r.CostPerDay = 6000
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6000.0, room.CostPerDay)
	assert.Empty(t, res.TriggeredBills(), "rate change for the same occupant")
}

func TestDeleteRoomRequiresVacancy(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	_, err := svc.DeleteRoom(ctx, 1)
	assert.True(t, domain.IsPrecondition(err))

	_, err = svc.DeleteRoom(ctx, 5)
	require.NoError(t, err)
	_, err = svc.GetRoom(ctx, 5)
	assert.True(t, domain.IsNotFound(err))
}

func TestVacantRoomsCheapestFirst(t *testing.T) {
	svc := newSeededService(t)
	var ids []int
	for _, r := range svc.VacantRooms(context.Background()) {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{5, 8, 17, 6, 7}, ids)
}

func TestUpdatePatientReleasesAndMovesRooms(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	_, res, err := svc.UpdatePatient(ctx, 4, PatientUpdate{RoomID: intPtr(0)})
	require.NoError(t, err)
	assert.Empty(t, res.TriggeredBills())
	room, err := svc.GetRoom(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.Vacant, room.Occupancy)

	discharged := "2025-05-06"
	p, res, err := svc.UpdatePatient(ctx, 4, PatientUpdate{
		Apply:  func(p *Patient) error { p.DischargeDate = &discharged; return nil },
		RoomID: intPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDischarged, p.Status)
	require.Len(t, res.TriggeredBills(), 1)
	assert.Equal(t, 10000.0, res.TriggeredBills()[0].Amount)
}
