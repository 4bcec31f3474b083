package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"poms/internal/adapters/statement"
	"poms/internal/core"
	"poms/pkg/domain"
)

type adminFeeRequest struct {
	PatientID   int      `json:"patient_id"`
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
}

type statusRequest struct {
	Status domain.BillStatus `json:"status"`
}

// ListBills returns every bill.
func (h *Handler) ListBills(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListBills(c.Request().Context()))
}

// GetBill returns one bill.
func (h *Handler) GetBill(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	b, err := h.svc.GetBill(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, b)
}

// CreateBill records a manual bill.
func (h *Handler) CreateBill(c echo.Context) error {
	var body domain.Bill
	if err := bind(c, &body); err != nil {
		return err
	}
	b, res, err := h.svc.CreateBill(c.Request().Context(), body)
	return respond(c, http.StatusCreated, b, res, err)
}

// UpdateBill applies the fields present in the body to a bill.
func (h *Handler) UpdateBill(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := readPatch[domain.Bill](c)
	if err != nil {
		return err
	}
	b, res, err := h.svc.UpdateBill(c.Request().Context(), id, func(cur *domain.Bill) error {
		keep := cur.ID
		err := applyPatch(raw, cur)
		cur.ID = keep
		return err
	})
	return respond(c, http.StatusOK, b, res, err)
}

// SetBillStatus marks a bill Paid or Unpaid.
func (h *Handler) SetBillStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body statusRequest
	if err := bind(c, &body); err != nil {
		return err
	}
	b, res, err := h.svc.SetBillStatus(c.Request().Context(), id, body.Status)
	return respond(c, http.StatusOK, b, res, err)
}

// DeleteBill removes a bill.
func (h *Handler) DeleteBill(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.svc.DeleteBill(c.Request().Context(), id)
	return respond(c, http.StatusOK, nil, res, err)
}

// ChargeAdminFee raises an ad-hoc fee. A missing amount uses the default fee.
func (h *Handler) ChargeAdminFee(c echo.Context) error {
	var body adminFeeRequest
	if err := bind(c, &body); err != nil {
		return err
	}
	amount := core.DefaultAdminFee
	if body.Amount != nil {
		amount = *body.Amount
	}
	b, res, err := h.svc.ChargeAdminFee(c.Request().Context(), body.PatientID, amount, body.Description)
	return respond(c, http.StatusCreated, b, res, err)
}

// GetAccount returns the billing summary for a patient.
func (h *Handler) GetAccount(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.AccountSummary(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// GetStatement downloads a patient statement as xlsx.
func (h *Handler) GetStatement(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.AccountSummary(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	data, err := statement.Render(summary)
	if err != nil {
		return errorResponse(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", statement.Filename(summary)))
	return c.Blob(http.StatusOK, statement.ContentType, data)
}

// GetStats returns the dashboard counters.
func (h *Handler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Stats(c.Request().Context()))
}
