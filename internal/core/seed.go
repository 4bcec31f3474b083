package core

import (
	"time"

	"poms/pkg/domain"
)

// SeedSnapshot returns the sample dataset loaded into an empty store. Two
// appointments are dated on the given day.
func SeedSnapshot(today time.Time) Snapshot {
	day := today.Format(domain.DateLayout)
	return Snapshot{
		Doctors:        seedDoctors(),
		Patients:       seedPatients(),
		Rooms:          seedRooms(),
		Appointments:   seedAppointments(day),
		TreatmentPlans: seedTreatmentPlans(),
		Diagnoses:      seedDiagnoses(),
		Bills:          seedBills(),
	}
}

func intRef(v int) *int       { return &v }
func strRef(v string) *string { return &v }

func seedDoctors() []Doctor {
	return []Doctor{
		{ID: 1, Name: "Dr. Meena", Degree: "MD", Specialization: "Oncology", Contact: "987650001"},
		{ID: 2, Name: "Dr. Arjun", Degree: "MBBS", Specialization: "Pediatrics", Contact: "987650002"},
		{ID: 3, Name: "Dr. Ravi", Degree: "MD", Specialization: "Radiology", Contact: "987650003"},
		{ID: 4, Name: "Dr. Sneha", Degree: "MBBS", Specialization: "Surgery", Contact: "987650004"},
		{ID: 5, Name: "Dr. Kiran", Degree: "MD", Specialization: "Pathology", Contact: "987650005"},
		{ID: 6, Name: "Dr. Priya", Degree: "MBBS", Specialization: "Oncology", Contact: "987650006"},
		{ID: 7, Name: "Dr. Sameer", Degree: "MD", Specialization: "Pediatrics", Contact: "987650007"},
		{ID: 8, Name: "Dr. Neha", Degree: "MBBS", Specialization: "Oncology", Contact: "987650008"},
		{ID: 9, Name: "Dr. Vimal", Degree: "MD", Specialization: "Radiology", Contact: "987650009"},
		{ID: 10, Name: "Dr. Zoya", Degree: "MBBS", Specialization: "Oncology", Contact: "987650010"},
		{ID: 11, Name: "Dr. Imran", Degree: "MD", Specialization: "Surgery", Contact: "987650011"},
		{ID: 12, Name: "Dr. Lakshmi", Degree: "MBBS", Specialization: "Pediatrics", Contact: "987650012"},
		{ID: 13, Name: "Dr. Rohan", Degree: "MD", Specialization: "Oncology", Contact: "987650013"},
		{ID: 14, Name: "Dr. Anjali", Degree: "MBBS", Specialization: "Pathology", Contact: "987650014"},
	}
}

func seedPatients() []Patient {
	m, f := domain.GenderMale, domain.GenderFemale
	patients := []Patient{
		{ID: 1, Name: "Aarav", Age: 10, DOB: "2015-03-10", Gender: m, Address: "Bangalore", Diagnosis: "Leukemia", AdmissionDate: "2025-01-12", DischargeDate: strRef("2025-02-15"), DoctorID: 1},
		{ID: 2, Name: "Diya", Age: 8, DOB: "2017-06-12", Gender: f, Address: "Mysore", Diagnosis: "Lymphoma", AdmissionDate: "2025-02-01", DoctorID: 2},
		{ID: 3, Name: "Rohan", Age: 11, DOB: "2014-01-18", Gender: m, Address: "Chennai", Diagnosis: "Tumor", AdmissionDate: "2025-01-20", DischargeDate: strRef("2025-02-25"), DoctorID: 3},
		{ID: 4, Name: "Kavya", Age: 9, DOB: "2016-04-25", Gender: f, Address: "Hubli", Diagnosis: "Anemia", AdmissionDate: "2025-03-05", DoctorID: 4},
		{ID: 5, Name: "Aditi", Age: 7, DOB: "2018-09-09", Gender: f, Address: "Hassan", Diagnosis: "Infection", AdmissionDate: "2025-03-15", DoctorID: 5},
		{ID: 6, Name: "Vivaan", Age: 6, DOB: "2019-02-20", Gender: m, Address: "Pune", Diagnosis: "Leukemia", AdmissionDate: "2025-03-20", DoctorID: 1},
		{ID: 7, Name: "Misha", Age: 12, DOB: "2013-05-01", Gender: f, Address: "Delhi", Diagnosis: "Neuroblastoma", AdmissionDate: "2025-03-22", DoctorID: 8},
		{ID: 8, Name: "Neel", Age: 14, DOB: "2011-08-15", Gender: m, Address: "Mumbai", Diagnosis: "Sarcoma", AdmissionDate: "2025-03-25", DoctorID: 10},
		{ID: 9, Name: "Tanya", Age: 5, DOB: "2020-11-11", Gender: f, Address: "Kochi", Diagnosis: "Tumor", AdmissionDate: "2025-03-28", DischargeDate: strRef("2025-04-10"), DoctorID: 7},
		{ID: 10, Name: "Jatin", Age: 16, DOB: "2009-01-05", Gender: m, Address: "Hyderabad", Diagnosis: "Anemia", AdmissionDate: "2025-04-01", DoctorID: 12},
		{ID: 11, Name: "Siya", Age: 4, DOB: "2021-09-30", Gender: f, Address: "Jaipur", Diagnosis: "Leukemia", AdmissionDate: "2025-04-05", DoctorID: 6},
		{ID: 12, Name: "Aryan", Age: 13, DOB: "2012-07-07", Gender: m, Address: "Lucknow", Diagnosis: "Lymphoma", AdmissionDate: "2025-04-08", DischargeDate: strRef("2025-05-10"), DoctorID: 13},
		{ID: 13, Name: "Zaina", Age: 9, DOB: "2016-02-14", Gender: f, Address: "Goa", Diagnosis: "Tumor", AdmissionDate: "2025-04-12", DoctorID: 11},
		{ID: 14, Name: "Harsh", Age: 15, DOB: "2010-04-04", Gender: m, Address: "Indore", Diagnosis: "Infection", AdmissionDate: "2025-04-15", DoctorID: 4},
		{ID: 15, Name: "Esha", Age: 7, DOB: "2018-01-28", Gender: f, Address: "Patna", Diagnosis: "Sarcoma", AdmissionDate: "2025-04-18", DoctorID: 8},
		{ID: 16, Name: "Karan", Age: 11, DOB: "2014-10-10", Gender: m, Address: "Bhopal", Diagnosis: "Anemia", AdmissionDate: "2025-04-22", DischargeDate: strRef("2025-05-01"), DoctorID: 2},
		{ID: 17, Name: "Lila", Age: 3, DOB: "2022-03-03", Gender: f, Address: "Ranchi", Diagnosis: "Leukemia", AdmissionDate: "2025-04-25", DoctorID: 1},
		{ID: 18, Name: "Rajat", Age: 17, DOB: "2008-06-06", Gender: m, Address: "Surat", Diagnosis: "Lymphoma", AdmissionDate: "2025-04-28", DoctorID: 13},
		{ID: 19, Name: "Heena", Age: 8, DOB: "2017-12-12", Gender: f, Address: "Nagpur", Diagnosis: "Infection", AdmissionDate: "2025-05-01", DoctorID: 5},
		{ID: 20, Name: "Bhavin", Age: 10, DOB: "2015-05-15", Gender: m, Address: "Vadodara", Diagnosis: "Tumor", AdmissionDate: "2025-05-05", DoctorID: 10},
	}
	for i := range patients {
		patients[i].Normalize()
	}
	return patients
}

func seedRooms() []Room {
	occupied := func(id int, t domain.RoomType, patient int, rate float64) Room {
		return Room{ID: id, RoomType: t, Occupancy: domain.Occupied, PatientID: intRef(patient), CostPerDay: rate}
	}
	vacant := func(id int, t domain.RoomType, rate float64) Room {
		return Room{ID: id, RoomType: t, Occupancy: domain.Vacant, CostPerDay: rate}
	}
	return []Room{
		occupied(1, domain.RoomGeneral, 6, 5000),
		occupied(2, domain.RoomPrivate, 2, 15000),
		occupied(3, domain.RoomSemiPrivate, 4, 10000),
		occupied(4, domain.RoomICU, 5, 30000),
		vacant(5, domain.RoomGeneral, 5000),
		vacant(6, domain.RoomPrivate, 15000),
		vacant(7, domain.RoomICU, 30000),
		vacant(8, domain.RoomGeneral, 5000),
		occupied(9, domain.RoomPrivate, 7, 15000),
		occupied(10, domain.RoomSemiPrivate, 8, 10000),
		occupied(11, domain.RoomGeneral, 10, 5000),
		occupied(12, domain.RoomICU, 11, 30000),
		occupied(13, domain.RoomPrivate, 13, 15000),
		occupied(14, domain.RoomSemiPrivate, 14, 10000),
		occupied(15, domain.RoomGeneral, 15, 5000),
		occupied(16, domain.RoomICU, 17, 30000),
		vacant(17, domain.RoomGeneral, 5000),
		occupied(18, domain.RoomPrivate, 18, 15000),
	}
}

func seedAppointments(today string) []Appointment {
	return []Appointment{
		{ID: 1, Date: "2025-01-10", Time: "10:00", Reason: "Initial Checkup", DoctorID: 1, PatientID: 1},
		{ID: 2, Date: "2025-02-01", Time: "14:30", Reason: "Follow-up", DoctorID: 2, PatientID: 2},
		{ID: 3, Date: "2025-01-18", Time: "09:00", Reason: "Scan Review", DoctorID: 3, PatientID: 3},
		{ID: 4, Date: today, Time: "11:00", Reason: "Routine", DoctorID: 4, PatientID: 4},
		{ID: 5, Date: "2025-03-15", Time: "16:00", Reason: "Consultation", DoctorID: 5, PatientID: 5},
		{ID: 6, Date: "2026-01-10", Time: "10:00", Reason: "Annual Follow-up", DoctorID: 1, PatientID: 1},
		{ID: 7, Date: "2025-03-21", Time: "09:30", Reason: "First Chemo Round", DoctorID: 8, PatientID: 6},
		{ID: 8, Date: "2025-04-10", Time: "15:00", Reason: "Discharge Check", DoctorID: 7, PatientID: 9},
		{ID: 9, Date: "2025-04-15", Time: "10:30", Reason: "Routine Checkup", DoctorID: 12, PatientID: 10},
		{ID: 10, Date: "2025-05-02", Time: "14:00", Reason: "Scan Review", DoctorID: 13, PatientID: 12},
		{ID: 11, Date: "2025-05-08", Time: "09:00", Reason: "Pre-Op Consultation", DoctorID: 11, PatientID: 13},
		{ID: 12, Date: today, Time: "16:00", Reason: "Follow-up", DoctorID: 10, PatientID: 15},
		{ID: 13, Date: "2025-05-15", Time: "11:30", Reason: "Final Checkup", DoctorID: 2, PatientID: 16},
		{ID: 14, Date: "2025-05-20", Time: "13:00", Reason: "Biopsy Review", DoctorID: 1, PatientID: 17},
	}
}

func seedTreatmentPlans() []TreatmentPlan {
	return []TreatmentPlan{
		{ID: 1, PatientID: 1, DoctorID: 1, DiagnosisID: intRef(1), Details: "Chemo Protocol A, 4 cycles", StartDate: "2025-01-14", EndDate: strRef("2025-02-10")},
		{ID: 2, PatientID: 2, DoctorID: 2, DiagnosisID: intRef(2), Details: "Radiation + Chemo Protocol B", StartDate: "2025-02-03", EndDate: strRef("2025-05-01")},
		{ID: 3, PatientID: 4, DoctorID: 4, DiagnosisID: intRef(4), Details: "Iron supplements and monitoring", StartDate: "2025-03-05", EndDate: strRef("2025-06-01")},
		{ID: 4, PatientID: 5, DoctorID: 5, DiagnosisID: intRef(5), Details: "Antibiotics (7 days) and observation", StartDate: "2025-03-15", EndDate: strRef("2025-03-22")},
		{ID: 5, PatientID: 6, DoctorID: 1, DiagnosisID: intRef(6), Details: "High-dose Chemotherapy, 6 cycles", StartDate: "2025-03-21", EndDate: strRef("2025-08-30")},
		{ID: 6, PatientID: 7, DoctorID: 8, DiagnosisID: intRef(7), Details: "Surgery followed by targeted radiation", StartDate: "2025-03-24", EndDate: strRef("2025-07-01")},
		{ID: 7, PatientID: 8, DoctorID: 10, DiagnosisID: intRef(8), Details: "Immunotherapy & Chemo Protocol D", StartDate: "2025-03-26", EndDate: strRef("2025-10-15")},
		{ID: 8, PatientID: 10, DoctorID: 12, DiagnosisID: intRef(10), Details: "B12 injections and dietary changes", StartDate: "2025-04-02", EndDate: strRef("2025-07-01")},
		{ID: 9, PatientID: 11, DoctorID: 6, DiagnosisID: intRef(11), Details: "Milder Chemo Protocol E (maintenance)", StartDate: "2025-04-07", EndDate: strRef("2026-04-07")},
		{ID: 10, PatientID: 13, DoctorID: 11, DiagnosisID: intRef(13), Details: "Immediate Surgery (Scheduled May 15)", StartDate: "2025-04-13", EndDate: strRef("2025-05-30")},
		{ID: 11, PatientID: 15, DoctorID: 8, DiagnosisID: intRef(15), Details: "Pre-operative assessment for bone tumor", StartDate: "2025-04-19", EndDate: strRef("2025-06-01")},
		{ID: 12, PatientID: 17, DoctorID: 1, DiagnosisID: intRef(17), Details: "Induction Phase Chemo", StartDate: "2025-04-26", EndDate: strRef("2025-06-25")},
		{ID: 13, PatientID: 18, DoctorID: 13, DiagnosisID: intRef(18), Details: "Palliative care and symptom control", StartDate: "2025-04-29"},
	}
}

func seedDiagnoses() []Diagnosis {
	rows := []struct {
		kind, description, result, date, disease string
	}{
		{"Blood", "Complete Blood Count", "Leukemia confirmed", "2025-01-13", "Leukemia"},
		{"Scan", "MRI (neck and chest)", "Lymphoma confirmed, stage 2", "2025-02-02", "Lymphoma"},
		{"CT", "Brain CT scan", "Benign Tumor, post-op stable", "2025-01-21", "Tumor"},
		{"Blood", "Iron level test", "Severe Anemia (Positive for low iron)", "2025-03-06", "Anemia"},
		{"Culture", "Blood Culture", "Bacterial infection identified", "2025-03-16", "Infection"},
		{"Marrow", "Bone Marrow Biopsy", "ALL (Acute Lymphoblastic Leukemia) confirmed", "2025-03-20", "Leukemia"},
		{"Scan", "Whole body MIBG Scan", "Stage 4 Neuroblastoma", "2025-03-23", "Neuroblastoma"},
		{"Biopsy", "Needle Biopsy (Femur)", "Ewing Sarcoma", "2025-03-26", "Sarcoma"},
		{"Blood", "Post-op blood screen", "Tumor markers negative", "2025-04-10", "Tumor"},
		{"Blood", "B12/Folate levels", "Folate deficiency anemia", "2025-04-03", "Anemia"},
		{"Marrow", "Bone Marrow Aspirate", "AML (Acute Myeloid Leukemia) confirmed", "2025-04-06", "Leukemia"},
		{"Scan", "CT Chest", "Tumor shrinkage post-treatment", "2025-05-01", "Lymphoma"},
		{"MRI", "Brain MRI", "Glioblastoma confirmed", "2025-04-13", "Tumor"},
		{"Culture", "Pus swab culture", "Staph infection in wound", "2025-04-16", "Infection"},
	}
	out := make([]Diagnosis, len(rows))
	for i, r := range rows {
		out[i] = Diagnosis{
			ID:            i + 1,
			PatientID:     i + 1,
			DiagnosisType: r.kind,
			DiseaseType:   r.disease,
			Date:          r.date,
			Result:        r.result,
			Description:   r.description,
		}
	}
	return out
}

func seedBills() []Bill {
	paid, unpaid := domain.BillPaid, domain.BillUnpaid
	return []Bill{
		{ID: 1, PatientID: 1, Amount: 120000, Status: paid, Date: "2025-02-11", Description: "Chemo Protocol A"},
		{ID: 2, PatientID: 2, Amount: 85000, Status: unpaid, Date: "2025-03-02", Description: "Room/Board Fee"},
		{ID: 3, PatientID: 3, Amount: 150000, Status: paid, Date: "2025-02-26", Description: "Surgery & Recovery"},
		{ID: 4, PatientID: 4, Amount: 5000, Status: unpaid, Date: "2025-03-07", Description: "Iron Level Test"},
		{ID: 5, PatientID: 5, Amount: 5000, Status: paid, Date: "2025-03-16", Description: "Blood Culture Diagnosis"},
		{ID: 6, PatientID: 6, Amount: 5000, Status: unpaid, Date: "2025-03-21", Description: "Room & Board (General R1)"},
		{ID: 7, PatientID: 7, Amount: 15000, Status: unpaid, Date: "2025-03-23", Description: "Room & Board (Private R9)"},
		{ID: 8, PatientID: 8, Amount: 10000, Status: unpaid, Date: "2025-03-26", Description: "Room & Board (Semi-Private R10)"},
		{ID: 9, PatientID: 10, Amount: 5000, Status: paid, Date: "2025-04-02", Description: "B12/Folate Diagnosis"},
		{ID: 10, PatientID: 11, Amount: 30000, Status: unpaid, Date: "2025-04-06", Description: "Room & Board (ICU R12)"},
		{ID: 11, PatientID: 13, Amount: 15000, Status: paid, Date: "2025-04-12", Description: "Room & Board (Private R13)"},
		{ID: 12, PatientID: 14, Amount: 10000, Status: unpaid, Date: "2025-04-15", Description: "Room & Board (Semi-Private R14)"},
		{ID: 13, PatientID: 15, Amount: 5000, Status: paid, Date: "2025-04-18", Description: "Room & Board (General R15)"},
		{ID: 14, PatientID: 17, Amount: 30000, Status: unpaid, Date: "2025-04-26", Description: "Room & Board (ICU R16)"},
	}
}
