package memory

import (
	"poms/pkg/domain"
)

// table is an insertion-ordered collection keyed by a surrogate integer id.
// high is the largest id ever issued or loaded, so ids freed by deletes are
// not handed out again while the process runs.
type table[T any] struct {
	rows   []T
	high   int
	key    func(T) int
	setKey func(*T, int)
	clone  func(T) T
}

func newTable[T any](key func(T) int, setKey func(*T, int), clone func(T) T) table[T] {
	return table[T]{key: key, setKey: setKey, clone: clone}
}

func (t table[T]) copy() table[T] {
	rows := make([]T, len(t.rows))
	for i, row := range t.rows {
		rows[i] = t.clone(row)
	}
	t.rows = rows
	return t
}

func (t *table[T]) load(rows []T) {
	t.rows = make([]T, 0, len(rows))
	t.high = 0
	for _, row := range rows {
		t.rows = append(t.rows, t.clone(row))
		if id := t.key(row); id > t.high {
			t.high = id
		}
	}
}

func (t *table[T]) index(id int) int {
	for i, row := range t.rows {
		if t.key(row) == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) find(id int) (T, bool) {
	if i := t.index(id); i >= 0 {
		return t.clone(t.rows[i]), true
	}
	var zero T
	return zero, false
}

func (t *table[T]) list() []T {
	out := make([]T, len(t.rows))
	for i, row := range t.rows {
		out[i] = t.clone(row)
	}
	return out
}

func (t *table[T]) nextID() int {
	next := t.high
	for _, row := range t.rows {
		if id := t.key(row); id > next {
			next = id
		}
	}
	return next + 1
}

func (t *table[T]) insert(v T) T {
	id := t.nextID()
	t.setKey(&v, id)
	t.high = id
	t.rows = append(t.rows, t.clone(v))
	return t.clone(v)
}

func (t *table[T]) removeAt(i int) {
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
}

type memoryState struct {
	doctors      table[Doctor]
	patients     table[Patient]
	rooms        table[Room]
	appointments table[Appointment]
	plans        table[TreatmentPlan]
	diagnoses    table[Diagnosis]
	bills        table[Bill]
}

func newMemoryState() memoryState {
	return memoryState{
		doctors: newTable(
			func(d Doctor) int { return d.ID },
			func(d *Doctor, id int) { d.ID = id },
			cloneDoctor,
		),
		patients: newTable(
			func(p Patient) int { return p.ID },
			func(p *Patient, id int) { p.ID = id },
			clonePatient,
		),
		rooms: newTable(
			func(r Room) int { return r.ID },
			func(r *Room, id int) { r.ID = id },
			cloneRoom,
		),
		appointments: newTable(
			func(a Appointment) int { return a.ID },
			func(a *Appointment, id int) { a.ID = id },
			cloneAppointment,
		),
		plans: newTable(
			func(p TreatmentPlan) int { return p.ID },
			func(p *TreatmentPlan, id int) { p.ID = id },
			clonePlan,
		),
		diagnoses: newTable(
			func(d Diagnosis) int { return d.ID },
			func(d *Diagnosis, id int) { d.ID = id },
			cloneDiagnosis,
		),
		bills: newTable(
			func(b Bill) int { return b.ID },
			func(b *Bill, id int) { b.ID = id },
			cloneBill,
		),
	}
}

func (s memoryState) clone() memoryState {
	return memoryState{
		doctors:      s.doctors.copy(),
		patients:     s.patients.copy(),
		rooms:        s.rooms.copy(),
		appointments: s.appointments.copy(),
		plans:        s.plans.copy(),
		diagnoses:    s.diagnoses.copy(),
		bills:        s.bills.copy(),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{
		Patients:       state.patients.list(),
		Doctors:        state.doctors.list(),
		Rooms:          state.rooms.list(),
		Appointments:   state.appointments.list(),
		TreatmentPlans: state.plans.list(),
		Diagnoses:      state.diagnoses.list(),
		Bills:          state.bills.list(),
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	state.doctors.load(s.Doctors)
	state.patients.load(s.Patients)
	state.rooms.load(s.Rooms)
	state.appointments.load(s.Appointments)
	state.plans.load(s.TreatmentPlans)
	state.diagnoses.load(s.Diagnoses)
	state.bills.load(s.Bills)
	return state
}

// migrateSnapshot fills missing collections and re-derives the fields that
// are functions of other fields: patient status and room occupancy binding.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	out := Snapshot{
		Patients:       make([]Patient, 0, len(snapshot.Patients)),
		Doctors:        make([]Doctor, 0, len(snapshot.Doctors)),
		Rooms:          make([]Room, 0, len(snapshot.Rooms)),
		Appointments:   make([]Appointment, 0, len(snapshot.Appointments)),
		TreatmentPlans: make([]TreatmentPlan, 0, len(snapshot.TreatmentPlans)),
		Diagnoses:      make([]Diagnosis, 0, len(snapshot.Diagnoses)),
		Bills:          make([]Bill, 0, len(snapshot.Bills)),
	}
	for _, p := range snapshot.Patients {
		p = clonePatient(p)
		p.Normalize()
		out.Patients = append(out.Patients, p)
	}
	for _, r := range snapshot.Rooms {
		r = cloneRoom(r)
		normalizeRoom(&r)
		out.Rooms = append(out.Rooms, r)
	}
	for _, b := range snapshot.Bills {
		if b.Status == "" {
			b.Status = domain.BillUnpaid
		}
		out.Bills = append(out.Bills, b)
	}
	out.Doctors = append(out.Doctors, snapshot.Doctors...)
	out.Appointments = append(out.Appointments, snapshot.Appointments...)
	for _, p := range snapshot.TreatmentPlans {
		out.TreatmentPlans = append(out.TreatmentPlans, clonePlan(p))
	}
	out.Diagnoses = append(out.Diagnoses, snapshot.Diagnoses...)
	return out
}

// normalizeRoom keeps occupancy and the patient binding in agreement: a
// vacant room holds no patient and an occupied room without one is vacant.
func normalizeRoom(r *Room) {
	switch r.Occupancy {
	case domain.Occupied:
		if r.PatientID == nil {
			r.Occupancy = domain.Vacant
		}
	case domain.Vacant:
		r.PatientID = nil
	case "":
		if r.PatientID != nil {
			r.Occupancy = domain.Occupied
		} else {
			r.Occupancy = domain.Vacant
		}
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneDoctor(d Doctor) Doctor { return d }

func clonePatient(p Patient) Patient {
	p.DischargeDate = cloneString(p.DischargeDate)
	return p
}

func cloneRoom(r Room) Room {
	r.PatientID = cloneInt(r.PatientID)
	return r
}

func cloneAppointment(a Appointment) Appointment { return a }

func clonePlan(p TreatmentPlan) TreatmentPlan {
	p.DiagnosisID = cloneInt(p.DiagnosisID)
	p.EndDate = cloneString(p.EndDate)
	return p
}

func cloneDiagnosis(d Diagnosis) Diagnosis { return d }
func cloneBill(b Bill) Bill                { return b }
