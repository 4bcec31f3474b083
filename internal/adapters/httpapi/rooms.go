package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"poms/pkg/domain"
)

type assignRequest struct {
	PatientID int `json:"patient_id"`
}

// roomView adds the display label used by the room board.
type roomView struct {
	domain.Room
	PatientName string `json:"patient_name,omitempty"`
}

// ListRooms returns rooms with the occupant name filled in.
func (h *Handler) ListRooms(c echo.Context) error {
	ctx := c.Request().Context()
	rooms := h.svc.ListRooms(ctx)
	out := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		v := roomView{Room: r}
		if pid, ok := r.Occupant(); ok {
			v.PatientName = h.svc.PatientName(ctx, pid)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

// ListVacantRooms returns rooms free for assignment.
func (h *Handler) ListVacantRooms(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.VacantRooms(c.Request().Context()))
}

// GetRoom returns one room.
func (h *Handler) GetRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.GetRoom(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, r)
}

// CreateRoom adds a room.
func (h *Handler) CreateRoom(c echo.Context) error {
	var body domain.Room
	if err := bind(c, &body); err != nil {
		return err
	}
	r, res, err := h.svc.CreateRoom(c.Request().Context(), body)
	return respond(c, http.StatusCreated, r, res, err)
}

// UpdateRoom applies the fields present in the body to a room.
func (h *Handler) UpdateRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := readPatch[domain.Room](c)
	if err != nil {
		return err
	}
	r, res, err := h.svc.UpdateRoom(c.Request().Context(), id, func(cur *domain.Room) error {
		keep := cur.ID
		err := applyPatch(raw, cur)
		cur.ID = keep
		return err
	})
	return respond(c, http.StatusOK, r, res, err)
}

// DeleteRoom removes a vacant room.
func (h *Handler) DeleteRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.DeleteRoom(c.Request().Context(), id)
	return respond(c, http.StatusOK, nil, res, err)
}

// AssignRoom places a patient in a room.
func (h *Handler) AssignRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body assignRequest
	if err := bind(c, &body); err != nil {
		return err
	}
	r, res, err := h.svc.AssignRoom(c.Request().Context(), id, body.PatientID)
	return respond(c, http.StatusOK, r, res, err)
}

// VacateRoom releases a room.
func (h *Handler) VacateRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	r, res, err := h.svc.VacateRoom(c.Request().Context(), id)
	return respond(c, http.StatusOK, r, res, err)
}
