package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"poms/internal/infra/persistence/memory"
	"poms/pkg/domain"
)

// Service exposes the transactional operations of the clinical store. It is
// the only mutation entry point for collaborators.
type Service struct {
	store    DurableStore
	logger   zerolog.Logger
	metrics  MetricsRecorder
	tracer   Tracer
	clock    Clock
	notifier BillNotifier
}

// NewService constructs a service backed by the supplied store.
func NewService(store DurableStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   zerolog.Nop(),
		metrics:  noopMetricsRecorder{},
		tracer:   noopTracer{},
		clock:    ClockFunc(time.Now),
		notifier: noopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	store.SetNowFunc(s.clock.Now)
	return s
}

// NewInMemoryService creates an empty service over a non-durable store with
// the default rules and billing trigger.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(NewDefaultRulesEngine(), NewDefaultTriggerEngine()), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() DurableStore {
	return s.store
}

// Logger returns the service logger.
func (s *Service) Logger() zerolog.Logger {
	return s.logger
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// run wraps a store transaction with tracing, metrics, and post-commit
// handling. A PersistenceError means the change committed in memory but was
// not written; it is logged and returned to the caller.
func (s *Service) run(ctx context.Context, op string, fn func(tx Transaction) error) (Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	res, err := s.store.RunInTransaction(ctx, fn)
	committed := err == nil || domain.IsPersistence(err)
	if committed {
		s.afterCommit(ctx, op, res, err)
	} else {
		s.logger.Debug().Err(err).Str("op", op).Msg("operation rejected")
	}
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	return res, err
}

func (s *Service) afterCommit(ctx context.Context, op string, res Result, err error) {
	if err != nil {
		s.logger.Warn().Err(err).Str("op", op).Msg("change applied in memory but not saved")
	}
	for _, v := range res.Warnings() {
		s.logger.Warn().Str("op", op).Str("rule", v.Rule).Str("entity", string(v.Entity)).Int("id", v.EntityID).Msg(v.Message)
	}
	bills := res.TriggeredBills()
	if len(bills) == 0 {
		return
	}
	for _, b := range bills {
		s.logger.Info().Str("op", op).Int("bill_id", b.ID).Int("patient_id", b.PatientID).Float64("amount", b.Amount).Msg(b.Description)
	}
	s.notify(ctx, op, bills)
}

func (s *Service) notify(ctx context.Context, op string, bills []Bill) {
	if nErr := s.notifier.NotifyBills(ctx, bills); nErr != nil {
		s.logger.Warn().Err(nErr).Str("op", op).Int("bills", len(bills)).Msg("bill notification failed")
	}
}

// read runs fn against a committed snapshot.
func (s *Service) read(ctx context.Context, fn func(TransactionView)) {
	_ = s.store.View(ctx, func(v TransactionView) error {
		fn(v)
		return nil
	})
}

// Flush writes the current state to durable storage.
func (s *Service) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

// Close performs a final flush and releases the store.
func (s *Service) Close(ctx context.Context) error {
	flushErr := s.store.Flush(ctx)
	if flushErr != nil {
		s.logger.Error().Err(flushErr).Msg("final flush failed")
	}
	if err := s.store.Close(); err != nil {
		return err
	}
	return flushErr
}

// CreateDoctor adds a doctor to the roster.
func (s *Service) CreateDoctor(ctx context.Context, doctor Doctor) (Doctor, Result, error) {
	var created Doctor
	res, err := s.run(ctx, "create_doctor", func(tx Transaction) error {
		var err error
		created, err = tx.CreateDoctor(doctor)
		return err
	})
	return created, res, err
}

// UpdateDoctor mutates a doctor using the provided mutator.
func (s *Service) UpdateDoctor(ctx context.Context, id int, mutator func(*Doctor) error) (Doctor, Result, error) {
	var updated Doctor
	res, err := s.run(ctx, "update_doctor", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateDoctor(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteDoctor removes a doctor. Patients and appointments referencing it
// keep the id and display it as N/A.
func (s *Service) DeleteDoctor(ctx context.Context, id int) (Result, error) {
	return s.run(ctx, "delete_doctor", func(tx Transaction) error {
		return tx.DeleteDoctor(id)
	})
}

// ListDoctors returns the roster in insertion order.
func (s *Service) ListDoctors(ctx context.Context) []Doctor {
	var out []Doctor
	s.read(ctx, func(v TransactionView) { out = v.ListDoctors() })
	return out
}

// GetDoctor returns a doctor by id.
func (s *Service) GetDoctor(ctx context.Context, id int) (Doctor, error) {
	var (
		d  Doctor
		ok bool
	)
	s.read(ctx, func(v TransactionView) { d, ok = v.FindDoctor(id) })
	if !ok {
		return Doctor{}, domain.ErrNotFound{Entity: EntityDoctor, ID: id}
	}
	return d, nil
}

// CreateAppointment books an appointment; the billing trigger adds the
// consultation charge.
func (s *Service) CreateAppointment(ctx context.Context, appt Appointment) (Appointment, Result, error) {
	var created Appointment
	res, err := s.run(ctx, "create_appointment", func(tx Transaction) error {
		var err error
		created, err = tx.CreateAppointment(appt)
		return err
	})
	return created, res, err
}

// UpdateAppointment mutates an appointment. Edits never bill.
func (s *Service) UpdateAppointment(ctx context.Context, id int, mutator func(*Appointment) error) (Appointment, Result, error) {
	var updated Appointment
	res, err := s.run(ctx, "update_appointment", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateAppointment(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteAppointment removes an appointment.
func (s *Service) DeleteAppointment(ctx context.Context, id int) (Result, error) {
	return s.run(ctx, "delete_appointment", func(tx Transaction) error {
		return tx.DeleteAppointment(id)
	})
}

// ListAppointments returns appointments in insertion order.
func (s *Service) ListAppointments(ctx context.Context) []Appointment {
	var out []Appointment
	s.read(ctx, func(v TransactionView) { out = v.ListAppointments() })
	return out
}

// GetAppointment returns an appointment by id.
func (s *Service) GetAppointment(ctx context.Context, id int) (Appointment, error) {
	var (
		a  Appointment
		ok bool
	)
	s.read(ctx, func(v TransactionView) { a, ok = v.FindAppointment(id) })
	if !ok {
		return Appointment{}, domain.ErrNotFound{Entity: EntityAppointment, ID: id}
	}
	return a, nil
}

// firstDiagnosisID returns the id of the patient's first diagnosis in
// collection order.
func firstDiagnosisID(view TransactionView, patientID int) *int {
	for _, d := range view.ListDiagnoses() {
		if d.PatientID == patientID {
			id := d.ID
			return &id
		}
	}
	return nil
}

// CreateTreatmentPlan records a plan, linking it to the patient's first
// diagnosis when one exists. The billing trigger adds the plan charge.
func (s *Service) CreateTreatmentPlan(ctx context.Context, plan TreatmentPlan) (TreatmentPlan, Result, error) {
	var created TreatmentPlan
	res, err := s.run(ctx, "create_treatment_plan", func(tx Transaction) error {
		plan.DiagnosisID = firstDiagnosisID(tx, plan.PatientID)
		var err error
		created, err = tx.CreateTreatmentPlan(plan)
		return err
	})
	return created, res, err
}

// UpdateTreatmentPlan mutates a plan and re-resolves its diagnosis link.
func (s *Service) UpdateTreatmentPlan(ctx context.Context, id int, mutator func(*TreatmentPlan) error) (TreatmentPlan, Result, error) {
	var updated TreatmentPlan
	res, err := s.run(ctx, "update_treatment_plan", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateTreatmentPlan(id, func(p *TreatmentPlan) error {
			if mutator != nil {
				if err := mutator(p); err != nil {
					return err
				}
			}
			p.DiagnosisID = firstDiagnosisID(tx, p.PatientID)
			return nil
		})
		return err
	})
	return updated, res, err
}

// DeleteTreatmentPlan removes a plan.
func (s *Service) DeleteTreatmentPlan(ctx context.Context, id int) (Result, error) {
	return s.run(ctx, "delete_treatment_plan", func(tx Transaction) error {
		return tx.DeleteTreatmentPlan(id)
	})
}

// ListTreatmentPlans returns plans in insertion order.
func (s *Service) ListTreatmentPlans(ctx context.Context) []TreatmentPlan {
	var out []TreatmentPlan
	s.read(ctx, func(v TransactionView) { out = v.ListTreatmentPlans() })
	return out
}

// GetTreatmentPlan returns a plan by id.
func (s *Service) GetTreatmentPlan(ctx context.Context, id int) (TreatmentPlan, error) {
	var (
		p  TreatmentPlan
		ok bool
	)
	s.read(ctx, func(v TransactionView) { p, ok = v.FindTreatmentPlan(id) })
	if !ok {
		return TreatmentPlan{}, domain.ErrNotFound{Entity: EntityTreatmentPlan, ID: id}
	}
	return p, nil
}

// CreateDiagnosis records a diagnosis; the billing trigger adds the test charge.
func (s *Service) CreateDiagnosis(ctx context.Context, diag Diagnosis) (Diagnosis, Result, error) {
	var created Diagnosis
	res, err := s.run(ctx, "create_diagnosis", func(tx Transaction) error {
		var err error
		created, err = tx.CreateDiagnosis(diag)
		return err
	})
	return created, res, err
}

// UpdateDiagnosis mutates a diagnosis. Edits never bill.
func (s *Service) UpdateDiagnosis(ctx context.Context, id int, mutator func(*Diagnosis) error) (Diagnosis, Result, error) {
	var updated Diagnosis
	res, err := s.run(ctx, "update_diagnosis", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateDiagnosis(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteDiagnosis removes a diagnosis.
func (s *Service) DeleteDiagnosis(ctx context.Context, id int) (Result, error) {
	return s.run(ctx, "delete_diagnosis", func(tx Transaction) error {
		return tx.DeleteDiagnosis(id)
	})
}

// ListDiagnoses returns diagnoses in insertion order.
func (s *Service) ListDiagnoses(ctx context.Context) []Diagnosis {
	var out []Diagnosis
	s.read(ctx, func(v TransactionView) { out = v.ListDiagnoses() })
	return out
}

// GetDiagnosis returns a diagnosis by id.
func (s *Service) GetDiagnosis(ctx context.Context, id int) (Diagnosis, error) {
	var (
		d  Diagnosis
		ok bool
	)
	s.read(ctx, func(v TransactionView) { d, ok = v.FindDiagnosis(id) })
	if !ok {
		return Diagnosis{}, domain.ErrNotFound{Entity: EntityDiagnosis, ID: id}
	}
	return d, nil
}

// CreateBill records a manual bill. Manual bills are not treated as triggered.
func (s *Service) CreateBill(ctx context.Context, bill Bill) (Bill, Result, error) {
	var created Bill
	res, err := s.run(ctx, "create_bill", func(tx Transaction) error {
		var err error
		created, err = tx.CreateBill(bill)
		return err
	})
	return created, res, err
}

// UpdateBill mutates a bill.
func (s *Service) UpdateBill(ctx context.Context, id int, mutator func(*Bill) error) (Bill, Result, error) {
	var updated Bill
	res, err := s.run(ctx, "update_bill", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateBill(id, mutator)
		return err
	})
	return updated, res, err
}

// SetBillStatus marks a bill Paid or Unpaid.
func (s *Service) SetBillStatus(ctx context.Context, id int, status domain.BillStatus) (Bill, Result, error) {
	return s.UpdateBill(ctx, id, func(b *Bill) error {
		b.Status = status
		return nil
	})
}

// DeleteBill removes a bill.
func (s *Service) DeleteBill(ctx context.Context, id int) (Result, error) {
	return s.run(ctx, "delete_bill", func(tx Transaction) error {
		return tx.DeleteBill(id)
	})
}

// ListBills returns bills in insertion order.
func (s *Service) ListBills(ctx context.Context) []Bill {
	var out []Bill
	s.read(ctx, func(v TransactionView) { out = v.ListBills() })
	return out
}

// GetBill returns a bill by id.
func (s *Service) GetBill(ctx context.Context, id int) (Bill, error) {
	var (
		b  Bill
		ok bool
	)
	s.read(ctx, func(v TransactionView) { b, ok = v.FindBill(id) })
	if !ok {
		return Bill{}, domain.ErrNotFound{Entity: EntityBill, ID: id}
	}
	return b, nil
}

// TriggerBill appends an unpaid bill dated today for the patient. It is the
// ad-hoc entry point of the billing engine and notifies like triggered bills.
func (s *Service) TriggerBill(ctx context.Context, patientID int, amount float64, description string) (Bill, Result, error) {
	var created Bill
	res, err := s.run(ctx, "trigger_bill", func(tx Transaction) error {
		if _, ok := tx.FindPatient(patientID); !ok {
			return domain.ErrNotFound{Entity: EntityPatient, ID: patientID}
		}
		var err error
		created, err = tx.CreateBill(Bill{
			PatientID:   patientID,
			Amount:      amount,
			Status:      domain.BillUnpaid,
			Date:        tx.Now().Format(domain.DateLayout),
			Description: description,
		})
		return err
	})
	if err == nil || domain.IsPersistence(err) {
		s.notify(ctx, "trigger_bill", []Bill{created})
	}
	return created, res, err
}

// ChargeAdminFee adds an administrative fee. An empty description becomes
// "Admin Fee"; the amount must be at least 100.
func (s *Service) ChargeAdminFee(ctx context.Context, patientID int, amount float64, description string) (Bill, Result, error) {
	if description == "" {
		description = AdminFeeDescription
	}
	return s.TriggerBill(ctx, patientID, amount, description)
}
