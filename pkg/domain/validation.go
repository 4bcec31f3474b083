package domain

import (
	"strings"
	"time"
)

// Field limits enforced on create and update.
const (
	MinPatientAge  = 1
	MaxPatientAge  = 18
	MinRoomRate    = 1000.0
	MinBillAmount  = 100.0
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	MissingDisplay = "N/A"
)

// ValidGender reports whether g is an accepted gender.
func ValidGender(g Gender) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ValidRoomType reports whether t is a known ward category.
func ValidRoomType(t RoomType) bool {
	switch t {
	case RoomGeneral, RoomSemiPrivate, RoomPrivate, RoomICU:
		return true
	}
	return false
}

type checker struct {
	entity EntityType
	errs   ValidationErrors
}

func (c *checker) fail(field, msg string) {
	c.errs = append(c.errs, ValidationError{Entity: c.entity, Field: field, Message: msg})
}

func (c *checker) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.fail(field, "is required")
	}
}

func (c *checker) positive(field string, value int) {
	if value <= 0 {
		c.fail(field, "must reference an existing record")
	}
}

func (c *checker) date(field, value string, required bool) {
	if strings.TrimSpace(value) == "" {
		if required {
			c.fail(field, "is required")
		}
		return
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		c.fail(field, "must be a YYYY-MM-DD date")
	}
}

// Validate checks the doctor's required fields.
func (d Doctor) Validate() error {
	c := checker{entity: EntityDoctor}
	c.required("name", d.Name)
	c.required("specialization", d.Specialization)
	return c.errs.Err()
}

// Validate checks required fields, the age range and enumerations.
func (p Patient) Validate() error {
	c := checker{entity: EntityPatient}
	c.required("name", p.Name)
	c.required("diagnosis", p.Diagnosis)
	if p.Age < MinPatientAge || p.Age > MaxPatientAge {
		c.fail("age", "must be between 1 and 18")
	}
	if !ValidGender(p.Gender) {
		c.fail("gender", "must be Male, Female or Other")
	}
	c.positive("doctor_id", p.DoctorID)
	c.date("dob", p.DOB, false)
	c.date("admission_date", p.AdmissionDate, true)
	if p.DischargeDate != nil {
		c.date("discharge_date", *p.DischargeDate, false)
	}
	return c.errs.Err()
}

// Validate checks the ward category, rate and occupancy binding.
func (r Room) Validate() error {
	c := checker{entity: EntityRoom}
	if !ValidRoomType(r.RoomType) {
		c.fail("room_type", "must be General, Semi-Private, Private or ICU")
	}
	if r.CostPerDay < MinRoomRate {
		c.fail("cost_per_day", "must be at least 1000")
	}
	switch r.Occupancy {
	case Vacant:
	case Occupied:
		if r.PatientID == nil {
			c.fail("patient_id", "is required when occupied")
		}
	default:
		c.fail("occupancy_status", "must be Vacant or Occupied")
	}
	return c.errs.Err()
}

// Validate checks the appointment slot and references.
func (a Appointment) Validate() error {
	c := checker{entity: EntityAppointment}
	c.positive("patient_id", a.PatientID)
	c.positive("doctor_id", a.DoctorID)
	c.date("date", a.Date, true)
	if _, err := time.Parse(TimeLayout, a.Time); err != nil {
		c.fail("time", "must be HH:MM")
	}
	return c.errs.Err()
}

// Validate checks the plan details and dates.
func (t TreatmentPlan) Validate() error {
	c := checker{entity: EntityTreatmentPlan}
	c.positive("patient_id", t.PatientID)
	c.positive("doctor_id", t.DoctorID)
	c.required("details", t.Details)
	c.date("start_date", t.StartDate, true)
	if t.EndDate != nil {
		c.date("end_date", *t.EndDate, false)
	}
	return c.errs.Err()
}

// Validate checks the diagnosis classification and date.
func (d Diagnosis) Validate() error {
	c := checker{entity: EntityDiagnosis}
	c.positive("patient_id", d.PatientID)
	c.required("diagnosis_type", d.DiagnosisType)
	c.required("disease_type", d.DiseaseType)
	c.date("date", d.Date, true)
	return c.errs.Err()
}

// Validate checks the amount floor and settlement status.
func (b Bill) Validate() error {
	c := checker{entity: EntityBill}
	c.positive("patient_id", b.PatientID)
	if b.Amount < MinBillAmount {
		c.fail("amount", "must be at least 100")
	}
	if b.Status != BillPaid && b.Status != BillUnpaid {
		c.fail("status", "must be Paid or Unpaid")
	}
	c.date("date", b.Date, true)
	return c.errs.Err()
}
