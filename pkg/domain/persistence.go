package domain

import (
	"context"
	"time"
)

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	TransactionView
	Snapshot() TransactionView
	Now() time.Time
	CreateDoctor(Doctor) (Doctor, error)
	UpdateDoctor(id int, mutator func(*Doctor) error) (Doctor, error)
	DeleteDoctor(id int) error
	CreatePatient(Patient) (Patient, error)
	UpdatePatient(id int, mutator func(*Patient) error) (Patient, error)
	DeletePatient(id int) error
	CreateRoom(Room) (Room, error)
	UpdateRoom(id int, mutator func(*Room) error) (Room, error)
	DeleteRoom(id int) error
	CreateAppointment(Appointment) (Appointment, error)
	UpdateAppointment(id int, mutator func(*Appointment) error) (Appointment, error)
	DeleteAppointment(id int) error
	CreateTreatmentPlan(TreatmentPlan) (TreatmentPlan, error)
	UpdateTreatmentPlan(id int, mutator func(*TreatmentPlan) error) (TreatmentPlan, error)
	DeleteTreatmentPlan(id int) error
	CreateDiagnosis(Diagnosis) (Diagnosis, error)
	UpdateDiagnosis(id int, mutator func(*Diagnosis) error) (Diagnosis, error)
	DeleteDiagnosis(id int) error
	CreateBill(Bill) (Bill, error)
	UpdateBill(id int, mutator func(*Bill) error) (Bill, error)
	DeleteBill(id int) error
	// Replace swaps every collection for the snapshot contents. It records no
	// changes, so triggers do not fire for replaced records.
	Replace(Snapshot)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
}

// Snapshot is the ordered content of the seven collections. Its JSON shape is
// the durable state document.
type Snapshot struct {
	Patients       []Patient       `json:"patients"`
	Doctors        []Doctor        `json:"doctors"`
	Rooms          []Room          `json:"rooms"`
	Appointments   []Appointment   `json:"appointments"`
	TreatmentPlans []TreatmentPlan `json:"treatment_plans"`
	Diagnoses      []Diagnosis     `json:"diagnosis"`
	Bills          []Bill          `json:"billing"`
}

// StateDocument is the persisted form of a snapshot.
type StateDocument struct {
	Snapshot
	LastSaved string `json:"lastSaved,omitempty"`
}

// ExportDocument is the exchange form of a snapshot.
type ExportDocument struct {
	Snapshot
	ExportDate string `json:"exportDate,omitempty"`
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	ExportState() Snapshot
	ImportState(Snapshot)
}
