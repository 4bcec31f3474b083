package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poms/pkg/domain"
)

func TestDeletePatientCascades(t *testing.T) {
	svc := NewInMemoryService(WithClock(fixedClock()))
	ctx := context.Background()

	seed := SeedSnapshot(testNow)
	seed.Appointments = append(seed.Appointments, Appointment{
		ID: 15, Date: "2025-05-10", Time: "12:00", Reason: "Review", DoctorID: 2, PatientID: 2,
	})
	_, err := svc.Import(ctx, seed)
	require.NoError(t, err)

	res, err := svc.DeletePatient(ctx, 2)
	require.NoError(t, err)

	counts := map[EntityType]int{}
	for _, ch := range res.Changes {
		counts[ch.Entity]++
	}
	assert.Equal(t, map[EntityType]int{
		EntityRoom: 1, EntityBill: 1, EntityAppointment: 2,
		EntityTreatmentPlan: 1, EntityDiagnosis: 1, EntityPatient: 1,
	}, counts)
	assert.Empty(t, res.TriggeredBills())

	_, err = svc.GetPatient(ctx, 2)
	assert.True(t, domain.IsNotFound(err))
	room, err := svc.GetRoom(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Vacant, room.Occupancy)
	assert.Nil(t, room.PatientID)

	for _, b := range svc.ListBills(ctx) {
		assert.NotEqual(t, 2, b.PatientID)
	}
	for _, a := range svc.ListAppointments(ctx) {
		assert.NotEqual(t, 2, a.PatientID)
	}
	for _, p := range svc.ListTreatmentPlans(ctx) {
		assert.NotEqual(t, 2, p.PatientID)
	}
	for _, d := range svc.ListDiagnoses(ctx) {
		assert.NotEqual(t, 2, d.PatientID)
	}
	assert.Len(t, svc.ListPatients(ctx), 19)
	assert.Len(t, svc.ListBills(ctx), 13)
	assert.Len(t, svc.ListAppointments(ctx), 13)
}

func TestDeleteUnknownPatientChangesNothing(t *testing.T) {
	svc := newSeededService(t)
	before := svc.Store().ExportState()
	_, err := svc.DeletePatient(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, before, svc.Store().ExportState())
}

func TestDeletePatientWithoutRoomOrRecords(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()
	res, err := svc.DeletePatient(ctx, 20)
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, EntityPatient, res.Changes[0].Entity)
}

func TestDeleteDoctorLeavesDanglingReferencesAsWarnings(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	res, err := svc.DeleteDoctor(ctx, 13)
	require.NoError(t, err)
	assert.False(t, res.HasBlocking())
	warned := map[EntityType][]int{}
	for _, v := range res.Warnings() {
		assert.Equal(t, "dangling_references", v.Rule)
		warned[v.Entity] = append(warned[v.Entity], v.EntityID)
	}
	assert.ElementsMatch(t, []int{12, 18}, warned[EntityPatient])
	assert.ElementsMatch(t, []int{10}, warned[EntityAppointment])
	assert.ElementsMatch(t, []int{13}, warned[EntityTreatmentPlan])

	assert.Equal(t, domain.MissingDisplay, svc.DoctorName(ctx, 13))
	p, err := svc.GetPatient(ctx, 18)
	require.NoError(t, err)
	assert.Equal(t, 13, p.DoctorID)
}
