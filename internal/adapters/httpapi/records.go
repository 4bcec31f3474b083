package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"poms/internal/core"
	"poms/pkg/domain"
)

// ListDoctors returns all doctors.
func (h *Handler) ListDoctors(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListDoctors(c.Request().Context()))
}

// GetDoctor returns one doctor.
func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, d)
}

// CreateDoctor adds a doctor.
func (h *Handler) CreateDoctor(c echo.Context) error {
	var body domain.Doctor
	if err := bind(c, &body); err != nil {
		return err
	}
	d, res, err := h.svc.CreateDoctor(c.Request().Context(), body)
	return respond(c, http.StatusCreated, d, res, err)
}

// UpdateDoctor applies the fields present in the body to a doctor.
func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := readPatch[domain.Doctor](c)
	if err != nil {
		return err
	}
	d, res, err := h.svc.UpdateDoctor(c.Request().Context(), id, func(cur *domain.Doctor) error {
		keep := cur.ID
		err := applyPatch(raw, cur)
		cur.ID = keep
		return err
	})
	return respond(c, http.StatusOK, d, res, err)
}

// DeleteDoctor removes a doctor. References to it are kept.
func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.DeleteDoctor(c.Request().Context(), id)
	return respond(c, http.StatusOK, nil, res, err)
}

// patientRequest carries an optional room: omitted leaves the assignment as
// is, 0 releases it.
type patientRequest struct {
	domain.Patient
	RoomID *int `json:"room_id"`
}

// ListPatients returns all patients.
func (h *Handler) ListPatients(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListPatients(c.Request().Context()))
}

// GetPatient returns one patient.
func (h *Handler) GetPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, p)
}

// CreatePatient admits a patient, optionally into a room.
func (h *Handler) CreatePatient(c echo.Context) error {
	var body patientRequest
	if err := bind(c, &body); err != nil {
		return err
	}
	room := body.RoomID
	if room != nil && *room == 0 {
		room = nil
	}
	p, res, err := h.svc.AdmitPatient(c.Request().Context(), body.Patient, room)
	return respond(c, http.StatusCreated, p, res, err)
}

// UpdatePatient applies the fields present in the body. A room_id of 0
// releases the current room.
func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := readPatch[patientRequest](c)
	if err != nil {
		return err
	}
	var room struct {
		RoomID *int `json:"room_id"`
	}
	_ = json.Unmarshal(raw, &room)
	p, res, err := h.svc.UpdatePatient(c.Request().Context(), id, core.PatientUpdate{
		Apply: func(cur *domain.Patient) error {
			keep := cur.ID
			err := applyPatch(raw, cur)
			cur.ID = keep
			return err
		},
		RoomID: room.RoomID,
	})
	return respond(c, http.StatusOK, p, res, err)
}

// DeletePatient removes a patient together with their records.
func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.DeletePatient(c.Request().Context(), id)
	if err == nil || domain.IsPersistence(err) {
		h.logger.Info().Int("patient_id", id).Int("changes", len(res.Changes)).Msg("patient removed with dependents")
	}
	return respond(c, http.StatusOK, nil, res, err)
}

// ListAppointments returns all appointments.
func (h *Handler) ListAppointments(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListAppointments(c.Request().Context()))
}

// GetAppointment returns one appointment.
func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, a)
}

// CreateAppointment books an appointment and bills the consultation.
func (h *Handler) CreateAppointment(c echo.Context) error {
	var body domain.Appointment
	if err := bind(c, &body); err != nil {
		return err
	}
	a, res, err := h.svc.CreateAppointment(c.Request().Context(), body)
	return respond(c, http.StatusCreated, a, res, err)
}

// UpdateAppointment applies the fields present in the body to an appointment.
func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := readPatch[domain.Appointment](c)
	if err != nil {
		return err
	}
	a, res, err := h.svc.UpdateAppointment(c.Request().Context(), id, func(cur *domain.Appointment) error {
		keep := cur.ID
		err := applyPatch(raw, cur)
		cur.ID = keep
		return err
	})
	return respond(c, http.StatusOK, a, res, err)
}

// DeleteAppointment removes an appointment.
func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.DeleteAppointment(c.Request().Context(), id)
	return respond(c, http.StatusOK, nil, res, err)
}

// ListTreatmentPlans returns all treatment plans.
func (h *Handler) ListTreatmentPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListTreatmentPlans(c.Request().Context()))
}

// GetTreatmentPlan returns one treatment plan.
func (h *Handler) GetTreatmentPlan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetTreatmentPlan(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, p)
}

// CreateTreatmentPlan adds a plan and bills it.
func (h *Handler) CreateTreatmentPlan(c echo.Context) error {
	var body domain.TreatmentPlan
	if err := bind(c, &body); err != nil {
		return err
	}
	p, res, err := h.svc.CreateTreatmentPlan(c.Request().Context(), body)
	return respond(c, http.StatusCreated, p, res, err)
}

// UpdateTreatmentPlan applies the fields present in the body to a plan.
func (h *Handler) UpdateTreatmentPlan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := readPatch[domain.TreatmentPlan](c)
	if err != nil {
		return err
	}
	p, res, err := h.svc.UpdateTreatmentPlan(c.Request().Context(), id, func(cur *domain.TreatmentPlan) error {
		keep := cur.ID
		err := applyPatch(raw, cur)
		cur.ID = keep
		return err
	})
	return respond(c, http.StatusOK, p, res, err)
}

// DeleteTreatmentPlan removes a treatment plan.
func (h *Handler) DeleteTreatmentPlan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.DeleteTreatmentPlan(c.Request().Context(), id)
	return respond(c, http.StatusOK, nil, res, err)
}

// ListDiagnoses returns all diagnoses.
func (h *Handler) ListDiagnoses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListDiagnoses(c.Request().Context()))
}

// GetDiagnosis returns one diagnosis.
func (h *Handler) GetDiagnosis(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDiagnosis(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, d)
}

// CreateDiagnosis records a diagnosis and bills it.
func (h *Handler) CreateDiagnosis(c echo.Context) error {
	var body domain.Diagnosis
	if err := bind(c, &body); err != nil {
		return err
	}
	d, res, err := h.svc.CreateDiagnosis(c.Request().Context(), body)
	return respond(c, http.StatusCreated, d, res, err)
}

// UpdateDiagnosis applies the fields present in the body to a diagnosis.
func (h *Handler) UpdateDiagnosis(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := readPatch[domain.Diagnosis](c)
	if err != nil {
		return err
	}
	d, res, err := h.svc.UpdateDiagnosis(c.Request().Context(), id, func(cur *domain.Diagnosis) error {
		keep := cur.ID
		err := applyPatch(raw, cur)
		cur.ID = keep
		return err
	})
	return respond(c, http.StatusOK, d, res, err)
}

// DeleteDiagnosis removes a diagnosis.
func (h *Handler) DeleteDiagnosis(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.DeleteDiagnosis(c.Request().Context(), id)
	return respond(c, http.StatusOK, nil, res, err)
}
