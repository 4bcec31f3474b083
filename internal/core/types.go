package core

import "poms/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Doctor             = domain.Doctor
	Patient            = domain.Patient
	Room               = domain.Room
	Appointment        = domain.Appointment
	TreatmentPlan      = domain.TreatmentPlan
	Diagnosis          = domain.Diagnosis
	Bill               = domain.Bill
	Snapshot           = domain.Snapshot
	ExportDocument     = domain.ExportDocument
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	Trigger            = domain.Trigger
	TriggerEngine      = domain.TriggerEngine
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityDoctor        = domain.EntityDoctor
	EntityPatient       = domain.EntityPatient
	EntityRoom          = domain.EntityRoom
	EntityAppointment   = domain.EntityAppointment
	EntityTreatmentPlan = domain.EntityTreatmentPlan
	EntityDiagnosis     = domain.EntityDiagnosis
	EntityBill          = domain.EntityBill
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
