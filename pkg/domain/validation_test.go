package domain

import (
	"errors"
	"fmt"
	"testing"
)

func validPatient() Patient {
	return Patient{
		Name:          "Diya",
		Age:           8,
		DOB:           "2017-06-12",
		Gender:        GenderFemale,
		Diagnosis:     "Lymphoma",
		AdmissionDate: "2025-02-01",
		DoctorID:      2,
	}
}

func TestPatientValidate(t *testing.T) {
	if err := validPatient().Validate(); err != nil {
		t.Fatalf("expected valid patient, got %v", err)
	}
	cases := map[string]func(*Patient){
		"name":      func(p *Patient) { p.Name = "" },
		"diagnosis": func(p *Patient) { p.Diagnosis = " " },
		"age":       func(p *Patient) { p.Age = 19 },
		"gender":    func(p *Patient) { p.Gender = "Unknown" },
		"doctor_id": func(p *Patient) { p.DoctorID = 0 },
		"discharge": func(p *Patient) { p.DischargeDate = strPtr("05/01/2025") },
	}
	for name, mutate := range cases {
		p := validPatient()
		mutate(&p)
		err := p.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		if !IsValidation(err) {
			t.Fatalf("%s: expected validation error type, got %T", name, err)
		}
	}
}

func TestRoomValidate(t *testing.T) {
	room := Room{RoomType: RoomICU, Occupancy: Vacant, CostPerDay: 30000}
	if err := room.Validate(); err != nil {
		t.Fatalf("expected valid room: %v", err)
	}
	room.CostPerDay = 999
	if err := room.Validate(); err == nil {
		t.Fatalf("expected rate floor violation")
	}
	room.CostPerDay = 1000
	room.Occupancy = Occupied
	if err := room.Validate(); err == nil {
		t.Fatalf("expected occupied room without patient to fail")
	}
	room.RoomType = "Suite"
	room.Occupancy = Vacant
	if err := room.Validate(); err == nil {
		t.Fatalf("expected unknown room type to fail")
	}
}

func TestBillValidateAmountFloor(t *testing.T) {
	bill := Bill{PatientID: 1, Amount: 99.99, Status: BillUnpaid, Date: "2025-01-01"}
	if err := bill.Validate(); err == nil {
		t.Fatalf("expected amount floor violation")
	}
	bill.Amount = 100
	if err := bill.Validate(); err != nil {
		t.Fatalf("expected valid bill: %v", err)
	}
}

func TestAppointmentAndPlanValidate(t *testing.T) {
	appt := Appointment{Date: "2025-06-01", Time: "9:5", DoctorID: 1, PatientID: 1}
	if err := appt.Validate(); err == nil {
		t.Fatalf("expected time format violation")
	}
	appt.Time = "09:05"
	if err := appt.Validate(); err != nil {
		t.Fatalf("expected valid appointment: %v", err)
	}
	plan := TreatmentPlan{PatientID: 1, DoctorID: 1, StartDate: "2025-06-01"}
	if err := plan.Validate(); err == nil {
		t.Fatalf("expected missing details to fail")
	}
	diag := Diagnosis{PatientID: 1, DiagnosisType: "Blood", Date: "2025-06-01"}
	if err := diag.Validate(); err == nil {
		t.Fatalf("expected missing disease type to fail")
	}
	if err := (Doctor{Name: "Dr. Meena"}).Validate(); err == nil {
		t.Fatalf("expected missing specialization to fail")
	}
}

func TestErrorHelpersSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("delete: %w", ErrNotFound{Entity: EntityRoom, ID: 3})
	if !IsNotFound(wrapped) {
		t.Fatalf("expected not found")
	}
	if !IsPrecondition(fmt.Errorf("x: %w", PreconditionError{Entity: EntityRoom, ID: 1, Message: "occupied"})) {
		t.Fatalf("expected precondition")
	}
	cause := errors.New("disk full")
	perr := fmt.Errorf("save: %w", PersistenceError{Op: "save", Err: cause})
	if !IsPersistence(perr) || !errors.Is(perr, cause) {
		t.Fatalf("expected persistence error wrapping cause")
	}
	if !IsRuleViolation(RuleViolationError{}) {
		t.Fatalf("expected rule violation")
	}
	if IsValidation(cause) {
		t.Fatalf("plain error is not a validation error")
	}
}
