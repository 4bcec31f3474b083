package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poms/pkg/domain"
)

func TestStatsOverSeed(t *testing.T) {
	svc := newSeededService(t)
	st := svc.Stats(context.Background())

	assert.Equal(t, 20, st.TotalPatients)
	assert.Equal(t, 15, st.AdmittedPatients)
	assert.Equal(t, 2, st.NewPatients)
	assert.Equal(t, 14, st.TotalDoctors)
	assert.Equal(t, 18, st.TotalRooms)
	assert.Equal(t, 13, st.OccupiedRooms)
	assert.Equal(t, 3, st.OccupiedICU)
	assert.Equal(t, 2, st.TodayAppointments)
	assert.Equal(t, 6, st.PendingAppointments)
	assert.Equal(t, 300000.0, st.TotalRevenue)
	assert.Equal(t, 190000.0, st.OutstandingBalance)
	assert.Equal(t, 13, st.TreatmentPlans)
	assert.Equal(t, 14, st.Diagnoses)
	assert.Equal(t, 14, st.Bills)
	assert.Equal(t, []MonthCount{
		{Month: "2025-01", Count: 2},
		{Month: "2025-02", Count: 1},
		{Month: "2025-03", Count: 6},
		{Month: "2025-04", Count: 9},
		{Month: "2025-05", Count: 2},
	}, st.AdmissionsByMonth)
	assert.Equal(t, 4, st.DiseaseDistribution["Leukemia"])
	assert.Equal(t, 4, st.DiseaseDistribution["Tumor"])
}

func TestStatsOnEmptyStore(t *testing.T) {
	svc := NewInMemoryService(WithClock(fixedClock()))
	st := svc.Stats(context.Background())
	assert.Zero(t, st.TotalPatients)
	assert.Empty(t, st.AdmissionsByMonth)
	assert.NotNil(t, st.DiseaseDistribution)
}

func TestAccountSummary(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()

	_, _, err := svc.ChargeAdminFee(ctx, 1, 2500, "")
	require.NoError(t, err)

	summary, err := svc.AccountSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Aarav", summary.PatientName)
	assert.Equal(t, 122500.0, summary.TotalBilled)
	assert.Equal(t, 120000.0, summary.TotalPaid)
	assert.Equal(t, 2500.0, summary.Outstanding)
	require.Len(t, summary.Bills, 2)
	assert.Equal(t, testToday, summary.Bills[0].Date)
	assert.Equal(t, "2025-02-11", summary.Bills[1].Date)

	empty, err := svc.AccountSummary(ctx, 20)
	require.NoError(t, err)
	assert.NotNil(t, empty.Bills)
	assert.Zero(t, empty.TotalBilled)

	_, err = svc.AccountSummary(ctx, 404)
	assert.True(t, domain.IsNotFound(err))
}

func TestDisplayLookups(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()
	assert.Equal(t, "Diya", svc.PatientName(ctx, 2))
	assert.Equal(t, "Dr. Zoya", svc.DoctorName(ctx, 10))
	assert.Equal(t, "ICU R4", svc.PatientRoom(ctx, 5))
	assert.Equal(t, domain.MissingDisplay, svc.PatientName(ctx, 404))
	assert.Equal(t, domain.MissingDisplay, svc.DoctorName(ctx, 404))
	assert.Equal(t, domain.MissingDisplay, svc.PatientRoom(ctx, 1))
}
