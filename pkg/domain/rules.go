package domain

import "context"

// RuleView provides read-only access to domain entities for rule evaluation.
type RuleView interface {
	ListDoctors() []Doctor
	ListPatients() []Patient
	ListRooms() []Room
	ListAppointments() []Appointment
	ListTreatmentPlans() []TreatmentPlan
	ListDiagnoses() []Diagnosis
	ListBills() []Bill
	FindDoctor(id int) (Doctor, bool)
	FindPatient(id int) (Patient, bool)
	FindRoom(id int) (Room, bool)
	FindAppointment(id int) (Appointment, bool)
	FindTreatmentPlan(id int) (TreatmentPlan, bool)
	FindDiagnosis(id int) (Diagnosis, bool)
	FindBill(id int) (Bill, bool)
}

// Rule defines an evaluation executed within a transaction boundary.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in registration order.
func (e *RulesEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}

// Trigger derives follow-up mutations from the changes of a transaction. It
// runs inside the same transaction, after the caller's mutations and before
// rule evaluation. Changes made by triggers are not fed back to triggers.
type Trigger interface {
	Name() string
	Fire(ctx context.Context, tx Transaction, changes []Change) error
}

// TriggerEngine holds the registered triggers in registration order.
type TriggerEngine struct {
	triggers []Trigger
}

// NewTriggerEngine constructs an empty trigger engine.
func NewTriggerEngine() *TriggerEngine {
	return &TriggerEngine{}
}

// Register appends a trigger to the engine.
func (e *TriggerEngine) Register(trigger Trigger) {
	e.triggers = append(e.triggers, trigger)
}

// Triggers returns the registered triggers.
func (e *TriggerEngine) Triggers() []Trigger {
	if e == nil {
		return nil
	}
	out := make([]Trigger, len(e.triggers))
	copy(out, e.triggers)
	return out
}
