// Package domain defines the clinical records, value types, and rule and
// trigger primitives shared by the POMS store and service layers.
package domain

import "strings"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	EntityDoctor        EntityType = "doctor"
	EntityPatient       EntityType = "patient"
	EntityRoom          EntityType = "room"
	EntityAppointment   EntityType = "appointment"
	EntityTreatmentPlan EntityType = "treatment_plan"
	EntityDiagnosis     EntityType = "diagnosis"
	EntityBill          EntityType = "bill"
)

// Gender enumerates the accepted patient genders.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// PatientStatus is derived from the discharge date.
type PatientStatus string

const (
	StatusAdmitted   PatientStatus = "Admitted"
	StatusDischarged PatientStatus = "Discharged"
)

// RoomType enumerates ward categories.
type RoomType string

const (
	RoomGeneral     RoomType = "General"
	RoomSemiPrivate RoomType = "Semi-Private"
	RoomPrivate     RoomType = "Private"
	RoomICU         RoomType = "ICU"
)

// Occupancy is the two-state lifecycle of a room.
type Occupancy string

const (
	Vacant   Occupancy = "Vacant"
	Occupied Occupancy = "Occupied"
)

// BillStatus tracks settlement of a bill.
type BillStatus string

const (
	BillPaid   BillStatus = "Paid"
	BillUnpaid BillStatus = "Unpaid"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Doctor is a member of the clinical roster.
type Doctor struct {
	ID             int    `json:"doctor_id"`
	Name           string `json:"name"`
	Degree         string `json:"degree"`
	Specialization string `json:"specialization"`
	Contact        string `json:"contact"`
}

// Patient is an admitted or discharged pediatric patient.
type Patient struct {
	ID            int           `json:"patient_id"`
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	DOB           string        `json:"dob"`
	Gender        Gender        `json:"gender"`
	Address       string        `json:"address"`
	Diagnosis     string        `json:"diagnosis"`
	AdmissionDate string        `json:"admission_date"`
	DischargeDate *string       `json:"discharge_date"`
	DoctorID      int           `json:"doctor_id"`
	Status        PatientStatus `json:"status"`
}

// DerivedStatus returns the status implied by the discharge date.
func (p Patient) DerivedStatus() PatientStatus {
	if p.DischargeDate != nil && strings.TrimSpace(*p.DischargeDate) != "" {
		return StatusDischarged
	}
	return StatusAdmitted
}

// Normalize recomputes derived fields in place.
func (p *Patient) Normalize() {
	if p.DischargeDate != nil && strings.TrimSpace(*p.DischargeDate) == "" {
		p.DischargeDate = nil
	}
	p.Status = p.DerivedStatus()
}

// Room is a bed that can hold at most one patient.
type Room struct {
	ID         int       `json:"room_id"`
	RoomType   RoomType  `json:"room_type"`
	Occupancy  Occupancy `json:"occupancy_status"`
	PatientID  *int      `json:"patient_id"`
	CostPerDay float64   `json:"cost_per_day"`
}

// Occupant reports the patient bound to an occupied room.
func (r Room) Occupant() (int, bool) {
	if r.Occupancy != Occupied || r.PatientID == nil {
		return 0, false
	}
	return *r.PatientID, true
}

// OccupiedBy reports whether the room is occupied by the given patient.
func (r Room) OccupiedBy(patientID int) bool {
	id, ok := r.Occupant()
	return ok && id == patientID
}

// Appointment is a scheduled consultation.
type Appointment struct {
	ID        int    `json:"appointment_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
	DoctorID  int    `json:"doctor_id"`
	PatientID int    `json:"patient_id"`
}

// TreatmentPlan describes a course of treatment.
type TreatmentPlan struct {
	ID          int     `json:"plan_id"`
	PatientID   int     `json:"patient_id"`
	DoctorID    int     `json:"doctor_id"`
	DiagnosisID *int    `json:"diagnosis_id"`
	Details     string  `json:"details"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// Summary returns the first line of the plan details.
func (t TreatmentPlan) Summary() string {
	line, _, _ := strings.Cut(t.Details, "\n")
	return strings.TrimSpace(line)
}

// Diagnosis records a test or scan outcome.
type Diagnosis struct {
	ID            int    `json:"diagnosis_id"`
	PatientID     int    `json:"patient_id"`
	DiagnosisType string `json:"diagnosis_type"`
	DiseaseType   string `json:"disease_type"`
	Date          string `json:"date"`
	Result        string `json:"result"`
	Description   string `json:"description"`
}

// Bill is a charge against a patient account.
type Bill struct {
	ID          int        `json:"bill_id"`
	PatientID   int        `json:"patient_id"`
	Amount      float64    `json:"amount"`
	Status      BillStatus `json:"status"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
}

// Change describes a mutation applied to an entity during a transaction.
// Origin names the trigger that produced the change; it is empty for
// mutations issued by the caller.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
	Origin string
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID int
}

// Result aggregates rule violations and, after a commit, the applied changes.
type Result struct {
	Violations []Violation
	Changes    []Change
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking violations.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity != SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// TriggeredBills returns bills created by triggers within the transaction.
func (r Result) TriggeredBills() []Bill {
	var out []Bill
	for _, ch := range r.Changes {
		if ch.Entity != EntityBill || ch.Action != ActionCreate || ch.Origin == "" {
			continue
		}
		if bill, ok := ch.After.(Bill); ok {
			out = append(out, bill)
		}
	}
	return out
}
