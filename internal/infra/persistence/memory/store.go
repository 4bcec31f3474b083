// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"poms/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Doctor aliases domain.Doctor for in-memory persistence operations.
	Doctor = domain.Doctor
	// Patient aliases domain.Patient.
	Patient = domain.Patient
	// Room aliases domain.Room.
	Room = domain.Room
	// Appointment aliases domain.Appointment.
	Appointment = domain.Appointment
	// TreatmentPlan aliases domain.TreatmentPlan.
	TreatmentPlan = domain.TreatmentPlan
	// Diagnosis aliases domain.Diagnosis.
	Diagnosis = domain.Diagnosis
	// Bill aliases domain.Bill.
	Bill = domain.Bill
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// TriggerEngine aliases domain.TriggerEngine used to derive records.
	TriggerEngine = domain.TriggerEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// Store provides an in-memory transactional store for the clinical domain.
type Store struct {
	mu       sync.RWMutex
	state    memoryState
	engine   *RulesEngine
	triggers *TriggerEngine
	nowFn    func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules and
// trigger engines. Either may be nil.
func NewStore(engine *RulesEngine, triggers *TriggerEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	if triggers == nil {
		triggers = domain.NewTriggerEngine()
	}
	return &Store{
		state:    newMemoryState(),
		engine:   engine,
		triggers: triggers,
		nowFn:    time.Now,
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot without
// evaluating rules or firing triggers.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// TriggerEngine exposes the currently configured trigger chain.
func (s *Store) TriggerEngine() *TriggerEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.triggers
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc replaces the time provider used to stamp transactions.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// Flush is a no-op for the in-memory store.
func (s *Store) Flush(context.Context) error { return nil }

// Loaded reports whether state was read from durable storage at open. The
// in-memory store never loads.
func (s *Store) Loaded() bool { return false }

// LoadError returns the decode failure observed at open, if any.
func (s *Store) LoadError() error { return nil }

// Close releases resources. It is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// RunInTransaction executes fn within a transactional copy of the store state.
// Registered triggers then run over the caller's changes, rules are evaluated
// over the resulting state, and the copy is committed unless a rule blocks.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTransaction(s.state.clone(), s.nowFn())

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	primary := append([]Change(nil), tx.changes...)
	for _, trigger := range s.triggers.Triggers() {
		tx.origin = trigger.Name()
		if err := trigger.Fire(ctx, tx, primary); err != nil {
			return Result{}, fmt.Errorf("trigger %s: %w", trigger.Name(), err)
		}
	}
	tx.origin = ""

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&tx.state), tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	result.Changes = tx.changes
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTransactionView(&snapshot))
}

// ListDoctors returns committed doctors in insertion order.
func (s *Store) ListDoctors() []Doctor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.doctors.list()
}

// ListPatients returns committed patients in insertion order.
func (s *Store) ListPatients() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.patients.list()
}

// ListRooms returns committed rooms in insertion order.
func (s *Store) ListRooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.rooms.list()
}

// ListAppointments returns committed appointments in insertion order.
func (s *Store) ListAppointments() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.appointments.list()
}

// ListTreatmentPlans returns committed treatment plans in insertion order.
func (s *Store) ListTreatmentPlans() []TreatmentPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.plans.list()
}

// ListDiagnoses returns committed diagnoses in insertion order.
func (s *Store) ListDiagnoses() []Diagnosis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.diagnoses.list()
}

// ListBills returns committed bills in insertion order.
func (s *Store) ListBills() []Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.bills.list()
}

// GetDoctor returns a doctor by id.
func (s *Store) GetDoctor(id int) (Doctor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.doctors.find(id)
}

// GetPatient returns a patient by id.
func (s *Store) GetPatient(id int) (Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.patients.find(id)
}

// GetRoom returns a room by id.
func (s *Store) GetRoom(id int) (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.rooms.find(id)
}

// GetAppointment returns an appointment by id.
func (s *Store) GetAppointment(id int) (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.appointments.find(id)
}

// GetTreatmentPlan returns a treatment plan by id.
func (s *Store) GetTreatmentPlan(id int) (TreatmentPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.plans.find(id)
}

// GetDiagnosis returns a diagnosis by id.
func (s *Store) GetDiagnosis(id int) (Diagnosis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.diagnoses.find(id)
}

// GetBill returns a bill by id.
func (s *Store) GetBill(id int) (Bill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.bills.find(id)
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) ListDoctors() []Doctor               { return v.state.doctors.list() }
func (v transactionView) ListPatients() []Patient             { return v.state.patients.list() }
func (v transactionView) ListRooms() []Room                   { return v.state.rooms.list() }
func (v transactionView) ListAppointments() []Appointment     { return v.state.appointments.list() }
func (v transactionView) ListTreatmentPlans() []TreatmentPlan { return v.state.plans.list() }
func (v transactionView) ListDiagnoses() []Diagnosis          { return v.state.diagnoses.list() }
func (v transactionView) ListBills() []Bill                   { return v.state.bills.list() }

func (v transactionView) FindDoctor(id int) (Doctor, bool)   { return v.state.doctors.find(id) }
func (v transactionView) FindPatient(id int) (Patient, bool) { return v.state.patients.find(id) }
func (v transactionView) FindRoom(id int) (Room, bool)       { return v.state.rooms.find(id) }
func (v transactionView) FindAppointment(id int) (Appointment, bool) {
	return v.state.appointments.find(id)
}
func (v transactionView) FindTreatmentPlan(id int) (TreatmentPlan, bool) {
	return v.state.plans.find(id)
}
func (v transactionView) FindDiagnosis(id int) (Diagnosis, bool) { return v.state.diagnoses.find(id) }
func (v transactionView) FindBill(id int) (Bill, bool)           { return v.state.bills.find(id) }
