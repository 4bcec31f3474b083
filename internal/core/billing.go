package core

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"poms/pkg/domain"
)

// Fixed charges applied by the billing trigger.
const (
	AppointmentFee   = 1000.0
	DiagnosisFee     = 5000.0
	TreatmentPlanFee = 10000.0
	DefaultAdminFee  = 2500.0
)

// AdminFeeDescription is used when an ad-hoc fee carries no description.
const AdminFeeDescription = "Admin Fee"

// BillingTriggerName tags bills created by the billing trigger.
const BillingTriggerName = "auto_billing"

// NewBillingTrigger returns the trigger that appends an unpaid bill for each
// room assignment and each newly created appointment, diagnosis, and
// treatment plan. Updates never bill, except a room moving into occupancy for
// a patient it did not already hold.
func NewBillingTrigger() domain.Trigger {
	return billingTrigger{}
}

type billingTrigger struct{}

func (billingTrigger) Name() string { return BillingTriggerName }

func (billingTrigger) Fire(_ context.Context, tx domain.Transaction, changes []domain.Change) error {
	for _, ch := range changes {
		patientID, amount, description, ok := charge(tx, ch)
		if !ok {
			continue
		}
		if _, err := tx.CreateBill(Bill{
			PatientID:   patientID,
			Amount:      amount,
			Status:      domain.BillUnpaid,
			Date:        tx.Now().Format(domain.DateLayout),
			Description: description,
		}); err != nil {
			return fmt.Errorf("bill %s %s: %w", ch.Entity, ch.Action, err)
		}
	}
	return nil
}

func charge(view domain.TransactionView, ch Change) (int, float64, string, bool) {
	switch ch.Entity {
	case EntityRoom:
		if ch.Action == ActionDelete {
			return 0, 0, "", false
		}
		room, ok := ch.After.(Room)
		if !ok {
			return 0, 0, "", false
		}
		pid, ok := room.Occupant()
		if !ok {
			return 0, 0, "", false
		}
		if before, ok := ch.Before.(Room); ok && before.OccupiedBy(pid) {
			return 0, 0, "", false
		}
		return pid, room.CostPerDay, RoomChargeDescription(room), true
	case EntityAppointment:
		appt, ok := ch.After.(Appointment)
		if ch.Action != ActionCreate || !ok {
			return 0, 0, "", false
		}
		doctor := domain.MissingDisplay
		if d, found := view.FindDoctor(appt.DoctorID); found {
			doctor = d.Name
		}
		return appt.PatientID, AppointmentFee, "Consultation with " + doctor, true
	case EntityDiagnosis:
		diag, ok := ch.After.(Diagnosis)
		if ch.Action != ActionCreate || !ok {
			return 0, 0, "", false
		}
		return diag.PatientID, DiagnosisFee, fmt.Sprintf("%s - %s", diag.DiseaseType, diag.DiagnosisType), true
	case EntityTreatmentPlan:
		plan, ok := ch.After.(TreatmentPlan)
		if ch.Action != ActionCreate || !ok {
			return 0, 0, "", false
		}
		return plan.PatientID, TreatmentPlanFee, plan.Summary(), true
	}
	return 0, 0, "", false
}

// RoomChargeDescription renders the one-day room charge line.
func RoomChargeDescription(room Room) string {
	return fmt.Sprintf("Room & Board: %s R%d (1-day Charge, Rate: ₹%s/day)", room.RoomType, room.ID, humanize.Commaf(room.CostPerDay))
}
