package memory

import (
	"fmt"
	"time"

	"poms/pkg/domain"
)

// transaction represents a mutation set applied to a copy of the store state.
// origin is set while a trigger runs so derived changes can be told apart.
type transaction struct {
	transactionView
	state   memoryState
	changes []Change
	now     time.Time
	origin  string
}

func newTransaction(state memoryState, now time.Time) *transaction {
	tx := &transaction{state: state, now: now}
	tx.transactionView = transactionView{state: &tx.state}
	return tx
}

func (tx *transaction) recordChange(change Change) {
	change.Origin = tx.origin
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// Now returns the timestamp captured when the transaction started.
func (tx *transaction) Now() time.Time { return tx.now }

// Replace swaps the transactional state for the snapshot contents. Id
// allocation restarts from the largest imported id.
func (tx *transaction) Replace(snapshot Snapshot) {
	tx.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

func updateRow[T any](tx *transaction, t *table[T], entity domain.EntityType, id int, mutator func(*T) error, check func(before T, after *T) error) (T, error) {
	var zero T
	i := t.index(id)
	if i < 0 {
		return zero, domain.ErrNotFound{Entity: entity, ID: id}
	}
	before := t.clone(t.rows[i])
	current := t.clone(t.rows[i])
	if mutator != nil {
		if err := mutator(&current); err != nil {
			return zero, err
		}
	}
	t.setKey(&current, id)
	if err := check(before, &current); err != nil {
		return zero, err
	}
	t.rows[i] = t.clone(current)
	tx.recordChange(Change{Entity: entity, Action: domain.ActionUpdate, Before: before, After: t.clone(current)})
	return current, nil
}

func deleteRow[T any](tx *transaction, t *table[T], entity domain.EntityType, id int) error {
	i := t.index(id)
	if i < 0 {
		return domain.ErrNotFound{Entity: entity, ID: id}
	}
	before := t.clone(t.rows[i])
	t.removeAt(i)
	tx.recordChange(Change{Entity: entity, Action: domain.ActionDelete, Before: before})
	return nil
}

func (tx *transaction) requirePatient(entity domain.EntityType, id int) error {
	if _, ok := tx.state.patients.find(id); !ok {
		return domain.ValidationError{Entity: entity, Field: "patient_id", Message: fmt.Sprintf("patient %d does not exist", id)}
	}
	return nil
}

func (tx *transaction) requireDoctor(entity domain.EntityType, id int) error {
	if _, ok := tx.state.doctors.find(id); !ok {
		return domain.ValidationError{Entity: entity, Field: "doctor_id", Message: fmt.Sprintf("doctor %d does not exist", id)}
	}
	return nil
}

// CreateDoctor stores a new doctor with the next free id.
func (tx *transaction) CreateDoctor(d Doctor) (Doctor, error) {
	if err := d.Validate(); err != nil {
		return Doctor{}, err
	}
	created := tx.state.doctors.insert(d)
	tx.recordChange(Change{Entity: domain.EntityDoctor, Action: domain.ActionCreate, After: created})
	return created, nil
}

// UpdateDoctor mutates an existing doctor.
func (tx *transaction) UpdateDoctor(id int, mutator func(*Doctor) error) (Doctor, error) {
	return updateRow(tx, &tx.state.doctors, domain.EntityDoctor, id, mutator, func(_ Doctor, d *Doctor) error {
		return d.Validate()
	})
}

// DeleteDoctor removes a doctor. Records that reference it are left in place.
func (tx *transaction) DeleteDoctor(id int) error {
	return deleteRow(tx, &tx.state.doctors, domain.EntityDoctor, id)
}

// CreatePatient stores a new patient with a derived status.
func (tx *transaction) CreatePatient(p Patient) (Patient, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return Patient{}, err
	}
	if err := tx.requireDoctor(domain.EntityPatient, p.DoctorID); err != nil {
		return Patient{}, err
	}
	created := tx.state.patients.insert(p)
	tx.recordChange(Change{Entity: domain.EntityPatient, Action: domain.ActionCreate, After: clonePatient(created)})
	return created, nil
}

// UpdatePatient mutates an existing patient and re-derives its status.
func (tx *transaction) UpdatePatient(id int, mutator func(*Patient) error) (Patient, error) {
	return updateRow(tx, &tx.state.patients, domain.EntityPatient, id, mutator, func(before Patient, p *Patient) error {
		p.Normalize()
		if err := p.Validate(); err != nil {
			return err
		}
		if p.DoctorID != before.DoctorID {
			return tx.requireDoctor(domain.EntityPatient, p.DoctorID)
		}
		return nil
	})
}

// DeletePatient removes the patient record only. Dependent records are the
// caller's responsibility.
func (tx *transaction) DeletePatient(id int) error {
	return deleteRow(tx, &tx.state.patients, domain.EntityPatient, id)
}

func bindRoom(r *Room) {
	switch r.Occupancy {
	case "":
		if r.PatientID != nil {
			r.Occupancy = domain.Occupied
		} else {
			r.Occupancy = domain.Vacant
		}
	case domain.Vacant:
		r.PatientID = nil
	}
}

// CreateRoom stores a new room. A vacant room never carries a patient.
func (tx *transaction) CreateRoom(r Room) (Room, error) {
	bindRoom(&r)
	if err := r.Validate(); err != nil {
		return Room{}, err
	}
	if id, ok := r.Occupant(); ok {
		if err := tx.requirePatient(domain.EntityRoom, id); err != nil {
			return Room{}, err
		}
	}
	created := tx.state.rooms.insert(r)
	tx.recordChange(Change{Entity: domain.EntityRoom, Action: domain.ActionCreate, After: cloneRoom(created)})
	return created, nil
}

// UpdateRoom mutates an existing room.
func (tx *transaction) UpdateRoom(id int, mutator func(*Room) error) (Room, error) {
	return updateRow(tx, &tx.state.rooms, domain.EntityRoom, id, mutator, func(before Room, r *Room) error {
		bindRoom(r)
		if err := r.Validate(); err != nil {
			return err
		}
		if pid, ok := r.Occupant(); ok && !before.OccupiedBy(pid) {
			return tx.requirePatient(domain.EntityRoom, pid)
		}
		return nil
	})
}

// DeleteRoom removes a vacant room.
func (tx *transaction) DeleteRoom(id int) error {
	if room, ok := tx.state.rooms.find(id); ok && room.Occupancy == domain.Occupied {
		return domain.PreconditionError{Entity: domain.EntityRoom, ID: id, Message: "cannot delete an occupied room; vacate it first"}
	}
	return deleteRow(tx, &tx.state.rooms, domain.EntityRoom, id)
}

func (tx *transaction) checkAppointmentRefs(a Appointment) error {
	if err := tx.requirePatient(domain.EntityAppointment, a.PatientID); err != nil {
		return err
	}
	return tx.requireDoctor(domain.EntityAppointment, a.DoctorID)
}

// CreateAppointment stores a new appointment.
func (tx *transaction) CreateAppointment(a Appointment) (Appointment, error) {
	if err := a.Validate(); err != nil {
		return Appointment{}, err
	}
	if err := tx.checkAppointmentRefs(a); err != nil {
		return Appointment{}, err
	}
	created := tx.state.appointments.insert(a)
	tx.recordChange(Change{Entity: domain.EntityAppointment, Action: domain.ActionCreate, After: created})
	return created, nil
}

// UpdateAppointment mutates an existing appointment.
func (tx *transaction) UpdateAppointment(id int, mutator func(*Appointment) error) (Appointment, error) {
	return updateRow(tx, &tx.state.appointments, domain.EntityAppointment, id, mutator, func(before Appointment, a *Appointment) error {
		if err := a.Validate(); err != nil {
			return err
		}
		if a.PatientID != before.PatientID {
			if err := tx.requirePatient(domain.EntityAppointment, a.PatientID); err != nil {
				return err
			}
		}
		if a.DoctorID != before.DoctorID {
			return tx.requireDoctor(domain.EntityAppointment, a.DoctorID)
		}
		return nil
	})
}

// DeleteAppointment removes an appointment.
func (tx *transaction) DeleteAppointment(id int) error {
	return deleteRow(tx, &tx.state.appointments, domain.EntityAppointment, id)
}

// CreateTreatmentPlan stores a new treatment plan.
func (tx *transaction) CreateTreatmentPlan(p TreatmentPlan) (TreatmentPlan, error) {
	if err := p.Validate(); err != nil {
		return TreatmentPlan{}, err
	}
	if err := tx.requirePatient(domain.EntityTreatmentPlan, p.PatientID); err != nil {
		return TreatmentPlan{}, err
	}
	if err := tx.requireDoctor(domain.EntityTreatmentPlan, p.DoctorID); err != nil {
		return TreatmentPlan{}, err
	}
	created := tx.state.plans.insert(p)
	tx.recordChange(Change{Entity: domain.EntityTreatmentPlan, Action: domain.ActionCreate, After: clonePlan(created)})
	return created, nil
}

// UpdateTreatmentPlan mutates an existing treatment plan.
func (tx *transaction) UpdateTreatmentPlan(id int, mutator func(*TreatmentPlan) error) (TreatmentPlan, error) {
	return updateRow(tx, &tx.state.plans, domain.EntityTreatmentPlan, id, mutator, func(before TreatmentPlan, p *TreatmentPlan) error {
		if err := p.Validate(); err != nil {
			return err
		}
		if p.PatientID != before.PatientID {
			if err := tx.requirePatient(domain.EntityTreatmentPlan, p.PatientID); err != nil {
				return err
			}
		}
		if p.DoctorID != before.DoctorID {
			return tx.requireDoctor(domain.EntityTreatmentPlan, p.DoctorID)
		}
		return nil
	})
}

// DeleteTreatmentPlan removes a treatment plan.
func (tx *transaction) DeleteTreatmentPlan(id int) error {
	return deleteRow(tx, &tx.state.plans, domain.EntityTreatmentPlan, id)
}

// CreateDiagnosis stores a new diagnosis.
func (tx *transaction) CreateDiagnosis(d Diagnosis) (Diagnosis, error) {
	if err := d.Validate(); err != nil {
		return Diagnosis{}, err
	}
	if err := tx.requirePatient(domain.EntityDiagnosis, d.PatientID); err != nil {
		return Diagnosis{}, err
	}
	created := tx.state.diagnoses.insert(d)
	tx.recordChange(Change{Entity: domain.EntityDiagnosis, Action: domain.ActionCreate, After: created})
	return created, nil
}

// UpdateDiagnosis mutates an existing diagnosis.
func (tx *transaction) UpdateDiagnosis(id int, mutator func(*Diagnosis) error) (Diagnosis, error) {
	return updateRow(tx, &tx.state.diagnoses, domain.EntityDiagnosis, id, mutator, func(before Diagnosis, d *Diagnosis) error {
		if err := d.Validate(); err != nil {
			return err
		}
		if d.PatientID != before.PatientID {
			return tx.requirePatient(domain.EntityDiagnosis, d.PatientID)
		}
		return nil
	})
}

// DeleteDiagnosis removes a diagnosis.
func (tx *transaction) DeleteDiagnosis(id int) error {
	return deleteRow(tx, &tx.state.diagnoses, domain.EntityDiagnosis, id)
}

func (tx *transaction) defaultBill(b *Bill) {
	if b.Status == "" {
		b.Status = domain.BillUnpaid
	}
	if b.Date == "" {
		b.Date = tx.now.Format(domain.DateLayout)
	}
}

// CreateBill stores a new bill. Status defaults to Unpaid and the date to the
// transaction day.
func (tx *transaction) CreateBill(b Bill) (Bill, error) {
	tx.defaultBill(&b)
	if err := b.Validate(); err != nil {
		return Bill{}, err
	}
	if err := tx.requirePatient(domain.EntityBill, b.PatientID); err != nil {
		return Bill{}, err
	}
	created := tx.state.bills.insert(b)
	tx.recordChange(Change{Entity: domain.EntityBill, Action: domain.ActionCreate, After: created})
	return created, nil
}

// UpdateBill mutates an existing bill.
func (tx *transaction) UpdateBill(id int, mutator func(*Bill) error) (Bill, error) {
	return updateRow(tx, &tx.state.bills, domain.EntityBill, id, mutator, func(before Bill, b *Bill) error {
		tx.defaultBill(b)
		if err := b.Validate(); err != nil {
			return err
		}
		if b.PatientID != before.PatientID {
			return tx.requirePatient(domain.EntityBill, b.PatientID)
		}
		return nil
	})
}

// DeleteBill removes a bill.
func (tx *transaction) DeleteBill(id int) error {
	return deleteRow(tx, &tx.state.bills, domain.EntityBill, id)
}
