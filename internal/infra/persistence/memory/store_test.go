package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poms/pkg/domain"
)

func intPtr(v int) *int { return &v }

func seededStore(t *testing.T, rules *domain.RulesEngine, triggers *domain.TriggerEngine) *Store {
	t.Helper()
	store := NewStore(rules, triggers)
	store.ImportState(Snapshot{
		Doctors: []Doctor{{ID: 1, Name: "Dr. Meena", Degree: "MD", Specialization: "Oncology"}},
		Patients: []Patient{{
			ID: 1, Name: "Diya", Age: 8, Gender: domain.GenderFemale, Diagnosis: "Lymphoma",
			AdmissionDate: "2025-02-01", DoctorID: 1,
		}},
		Rooms: []Room{
			{ID: 1, RoomType: domain.RoomPrivate, Occupancy: domain.Occupied, PatientID: intPtr(1), CostPerDay: 15000},
			{ID: 2, RoomType: domain.RoomGeneral, Occupancy: domain.Vacant, CostPerDay: 5000},
		},
	})
	return store
}

func TestCreateAssignsHighWaterIDs(t *testing.T) {
	store := seededStore(t, nil, nil)
	ctx := context.Background()

	var first, second Doctor
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		first, err = tx.CreateDoctor(Doctor{ID: 99, Name: "Dr. Arjun", Specialization: "Pediatrics"})
		if err != nil {
			return err
		}
		second, err = tx.CreateDoctor(Doctor{Name: "Dr. Ravi", Specialization: "Radiology"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first.ID, "caller ids are ignored")
	assert.Equal(t, 3, second.ID)

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error { return tx.DeleteDoctor(3) })
	require.NoError(t, err)

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		d, err := tx.CreateDoctor(Doctor{Name: "Dr. Sneha", Specialization: "Surgery"})
		assert.Equal(t, 4, d.ID, "deleted ids are not reused")
		return err
	})
	require.NoError(t, err)

	names := []string{}
	for _, d := range store.ListDoctors() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Dr. Meena", "Dr. Arjun", "Dr. Sneha"}, names)
}

func TestFailedTransactionLeavesStateUntouched(t *testing.T) {
	store := seededStore(t, nil, nil)
	before := store.ExportState()

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.UpdateRoom(2, func(r *Room) error { r.CostPerDay = 9000; return nil }); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")
	assert.Equal(t, before, store.ExportState())
}

func TestValidationAndReferenceChecks(t *testing.T) {
	store := seededStore(t, nil, nil)
	ctx := context.Background()

	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreatePatient(Patient{Name: "Neel", Age: 14, Gender: domain.GenderMale, Diagnosis: "Sarcoma", AdmissionDate: "2025-03-25", DoctorID: 42})
		return err
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreatePatient(Patient{Name: "Neel", Age: 19, Gender: domain.GenderMale, Diagnosis: "Sarcoma", AdmissionDate: "2025-03-25", DoctorID: 1})
		return err
	})
	assert.True(t, domain.IsValidation(err))

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateBill(77, nil)
		return err
	})
	assert.True(t, domain.IsNotFound(err))

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreateBill(Bill{PatientID: 1, Amount: 50})
		return err
	})
	assert.True(t, domain.IsValidation(err), "amount below floor")
	assert.Empty(t, store.ListBills())
}

func TestPatientStatusAlwaysDerived(t *testing.T) {
	store := seededStore(t, nil, nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdatePatient(1, func(p *Patient) error {
			d := "2025-05-01"
			p.DischargeDate = &d
			p.Status = domain.StatusAdmitted
			return nil
		})
		return err
	})
	require.NoError(t, err)
	p, ok := store.GetPatient(1)
	require.True(t, ok)
	assert.Equal(t, domain.StatusDischarged, p.Status)
}

func TestRoomBindingAndDeleteGuard(t *testing.T) {
	store := seededStore(t, nil, nil)
	ctx := context.Background()

	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		r, err := tx.CreateRoom(Room{RoomType: domain.RoomICU, Occupancy: domain.Vacant, PatientID: intPtr(1), CostPerDay: 30000})
		require.NoError(t, err)
		assert.Nil(t, r.PatientID)
		assert.Equal(t, 3, r.ID)
		return nil
	})
	require.NoError(t, err)

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error { return tx.DeleteRoom(1) })
	assert.True(t, domain.IsPrecondition(err))

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateRoom(2, func(r *Room) error {
			r.Occupancy = domain.Occupied
			r.PatientID = intPtr(55)
			return nil
		})
		return err
	})
	assert.True(t, domain.IsValidation(err), "occupant must exist")

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error { return tx.DeleteRoom(2) })
	require.NoError(t, err)
	_, ok := store.GetRoom(2)
	assert.False(t, ok)
}

func TestBillDefaultsFromTransactionClock(t *testing.T) {
	store := seededStore(t, nil, nil)
	store.SetNowFunc(func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) })

	var bill Bill
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		bill, err = tx.CreateBill(Bill{PatientID: 1, Amount: 2500, Description: "Admin Fee"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BillUnpaid, bill.Status)
	assert.Equal(t, "2025-06-01", bill.Date)
}

type blockAll struct{}

func (blockAll) Name() string { return "block_all" }

func (blockAll) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: "block_all", Severity: domain.SeverityBlock, Message: "nope"}}}, nil
}

func TestBlockingRuleRejectsCommit(t *testing.T) {
	rules := domain.NewRulesEngine()
	rules.Register(blockAll{})
	store := seededStore(t, rules, nil)

	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateDoctor(Doctor{Name: "Dr. Kiran", Specialization: "Pathology"})
		return err
	})
	require.Error(t, err)
	assert.True(t, domain.IsRuleViolation(err))
	assert.True(t, res.HasBlocking())
	assert.Len(t, store.ListDoctors(), 1)
}

type appointmentFee struct{}

func (appointmentFee) Name() string { return "fee" }

func (appointmentFee) Fire(_ context.Context, tx domain.Transaction, changes []domain.Change) error {
	for _, ch := range changes {
		appt, ok := ch.After.(domain.Appointment)
		if ch.Entity != domain.EntityAppointment || ch.Action != domain.ActionCreate || !ok {
			continue
		}
		if _, err := tx.CreateBill(domain.Bill{PatientID: appt.PatientID, Amount: 1000, Description: "Consultation"}); err != nil {
			return err
		}
	}
	return nil
}

func TestTriggersSeePrimaryChangesAndTagOrigin(t *testing.T) {
	triggers := domain.NewTriggerEngine()
	triggers.Register(appointmentFee{})
	store := seededStore(t, nil, triggers)

	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateAppointment(Appointment{Date: "2025-06-02", Time: "10:00", Reason: "Review", DoctorID: 1, PatientID: 1})
		return err
	})
	require.NoError(t, err)
	require.Len(t, res.Changes, 2)
	assert.Empty(t, res.Changes[0].Origin)
	assert.Equal(t, "fee", res.Changes[1].Origin)

	bills := res.TriggeredBills()
	require.Len(t, bills, 1)
	assert.Equal(t, float64(1000), bills[0].Amount)
	assert.Len(t, store.ListBills(), 1)
}

func TestImportStateNormalizes(t *testing.T) {
	store := NewStore(nil, nil)
	discharged := "2025-02-15"
	store.ImportState(Snapshot{
		Patients: []Patient{{ID: 4, Name: "Aarav", DischargeDate: &discharged, Status: domain.StatusAdmitted}},
		Rooms: []Room{
			{ID: 7, RoomType: domain.RoomICU, Occupancy: domain.Occupied, CostPerDay: 30000},
			{ID: 8, RoomType: domain.RoomGeneral, Occupancy: domain.Vacant, PatientID: intPtr(4), CostPerDay: 5000},
		},
	})
	snap := store.ExportState()
	assert.Equal(t, domain.StatusDischarged, snap.Patients[0].Status)
	assert.Equal(t, domain.Vacant, snap.Rooms[0].Occupancy)
	assert.Nil(t, snap.Rooms[1].PatientID)
	assert.NotNil(t, snap.Bills)
	assert.Empty(t, snap.Bills)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		r, err := tx.CreateRoom(Room{RoomType: domain.RoomGeneral, CostPerDay: 5000})
		assert.Equal(t, 9, r.ID)
		return err
	})
	require.NoError(t, err)
}

func TestReplaceResetsCollectionsWithoutChanges(t *testing.T) {
	store := seededStore(t, nil, nil)
	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		tx.Replace(Snapshot{})
		assert.Empty(t, tx.ListRooms())
		d, err := tx.CreateDoctor(Doctor{Name: "Dr. Zoya", Specialization: "Oncology"})
		assert.Equal(t, 1, d.ID)
		return err
	})
	require.NoError(t, err)
	assert.Len(t, res.Changes, 1)
	assert.Empty(t, store.ListPatients())
	assert.Len(t, store.ListDoctors(), 1)
}

func TestViewIsIsolatedFromLaterWrites(t *testing.T) {
	store := seededStore(t, nil, nil)
	err := store.View(context.Background(), func(v TransactionView) error {
		room, ok := v.FindRoom(1)
		require.True(t, ok)
		*room.PatientID = 99
		return nil
	})
	require.NoError(t, err)
	room, _ := store.GetRoom(1)
	assert.Equal(t, 1, *room.PatientID)
}
