package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"poms/pkg/domain"
)

// Stats summarises the store for the dashboard.
type Stats struct {
	TotalPatients       int            `json:"total_patients"`
	AdmittedPatients    int            `json:"admitted_patients"`
	NewPatients         int            `json:"new_patients_7d"`
	TotalDoctors        int            `json:"total_doctors"`
	OccupiedRooms       int            `json:"occupied_rooms"`
	TotalRooms          int            `json:"total_rooms"`
	OccupiedICU         int            `json:"occupied_icu"`
	TodayAppointments   int            `json:"today_appointments"`
	PendingAppointments int            `json:"pending_appointments"`
	TotalRevenue        float64        `json:"total_revenue"`
	OutstandingBalance  float64        `json:"outstanding_balance"`
	TreatmentPlans      int            `json:"treatment_plans"`
	Diagnoses           int            `json:"diagnoses"`
	Bills               int            `json:"bills"`
	AdmissionsByMonth   []MonthCount   `json:"admissions_by_month"`
	DiseaseDistribution map[string]int `json:"disease_distribution"`
}

// MonthCount is the number of admissions in a YYYY-MM month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// AccountSummary is the billing position of one patient.
type AccountSummary struct {
	PatientID   int     `json:"patient_id"`
	PatientName string  `json:"patient_name"`
	TotalBilled float64 `json:"total_billed"`
	TotalPaid   float64 `json:"total_paid"`
	Outstanding float64 `json:"outstanding"`
	Bills       []Bill  `json:"bills"`
}

// Stats computes dashboard figures relative to the service clock.
func (s *Service) Stats(ctx context.Context) Stats {
	now := s.clock.Now()
	var st Stats
	s.read(ctx, func(v TransactionView) { st = computeStats(v, now) })
	return st
}

func computeStats(v TransactionView, now time.Time) Stats {
	today := now.Format(domain.DateLayout)
	weekAgo := now.AddDate(0, 0, -7).Format(domain.DateLayout)
	st := Stats{DiseaseDistribution: map[string]int{}}

	patients := v.ListPatients()
	st.TotalPatients = len(patients)
	months := map[string]int{}
	for _, p := range patients {
		if p.Status == domain.StatusAdmitted {
			st.AdmittedPatients++
		}
		if p.AdmissionDate >= weekAgo && p.AdmissionDate <= today {
			st.NewPatients++
		}
		if len(p.AdmissionDate) >= 7 {
			months[p.AdmissionDate[:7]]++
		}
		if p.Diagnosis != "" {
			st.DiseaseDistribution[p.Diagnosis]++
		}
	}
	for month, count := range months {
		st.AdmissionsByMonth = append(st.AdmissionsByMonth, MonthCount{Month: month, Count: count})
	}
	sort.Slice(st.AdmissionsByMonth, func(i, j int) bool {
		return st.AdmissionsByMonth[i].Month < st.AdmissionsByMonth[j].Month
	})

	st.TotalDoctors = len(v.ListDoctors())
	rooms := v.ListRooms()
	st.TotalRooms = len(rooms)
	for _, r := range rooms {
		if r.Occupancy != domain.Occupied {
			continue
		}
		st.OccupiedRooms++
		if r.RoomType == domain.RoomICU {
			st.OccupiedICU++
		}
	}
	for _, a := range v.ListAppointments() {
		if a.Date == today {
			st.TodayAppointments++
		}
		if a.Date >= today {
			st.PendingAppointments++
		}
	}
	bills := v.ListBills()
	st.Bills = len(bills)
	for _, b := range bills {
		if b.Status == domain.BillPaid {
			st.TotalRevenue += b.Amount
		} else {
			st.OutstandingBalance += b.Amount
		}
	}
	st.TreatmentPlans = len(v.ListTreatmentPlans())
	st.Diagnoses = len(v.ListDiagnoses())
	return st
}

// AccountSummary returns the patient's bills, newest first, with totals.
func (s *Service) AccountSummary(ctx context.Context, patientID int) (AccountSummary, error) {
	var (
		summary AccountSummary
		found   bool
	)
	s.read(ctx, func(v TransactionView) {
		p, ok := v.FindPatient(patientID)
		if !ok {
			return
		}
		found = true
		summary = AccountSummary{PatientID: p.ID, PatientName: p.Name, Bills: []Bill{}}
		for _, b := range v.ListBills() {
			if b.PatientID != patientID {
				continue
			}
			summary.Bills = append(summary.Bills, b)
			summary.TotalBilled += b.Amount
			if b.Status == domain.BillPaid {
				summary.TotalPaid += b.Amount
			}
		}
	})
	if !found {
		return AccountSummary{}, domain.ErrNotFound{Entity: EntityPatient, ID: patientID}
	}
	summary.Outstanding = summary.TotalBilled - summary.TotalPaid
	sort.SliceStable(summary.Bills, func(i, j int) bool {
		return summary.Bills[i].Date > summary.Bills[j].Date
	})
	return summary, nil
}

// PatientName resolves a patient id for display, or N/A.
func (s *Service) PatientName(ctx context.Context, id int) string {
	name := domain.MissingDisplay
	s.read(ctx, func(v TransactionView) {
		if p, ok := v.FindPatient(id); ok {
			name = p.Name
		}
	})
	return name
}

// DoctorName resolves a doctor id for display, or N/A.
func (s *Service) DoctorName(ctx context.Context, id int) string {
	name := domain.MissingDisplay
	s.read(ctx, func(v TransactionView) {
		if d, ok := v.FindDoctor(id); ok {
			name = d.Name
		}
	})
	return name
}

// PatientRoom renders the room a patient occupies, such as "ICU R4", or N/A.
func (s *Service) PatientRoom(ctx context.Context, patientID int) string {
	label := domain.MissingDisplay
	s.read(ctx, func(v TransactionView) {
		if r, ok := roomOf(v, patientID); ok {
			label = fmt.Sprintf("%s R%d", r.RoomType, r.ID)
		}
	})
	return label
}
