// Package httpapi exposes the POMS service over JSON/HTTP with echo.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"poms/internal/adapters/exchange"
	"poms/internal/core"
	"poms/pkg/domain"
)

// PersistenceWarningHeader is set when a change was applied but could not be
// saved.
const PersistenceWarningHeader = "X-Persistence-Warning"

// Options configures the router.
type Options struct {
	Logger zerolog.Logger
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
	// Exchange enables blob-backed export and import. Optional.
	Exchange *exchange.Exchange
}

// Handler serves the API routes.
type Handler struct {
	svc      *core.Service
	exchange *exchange.Exchange
	logger   zerolog.Logger
}

// New builds the echo instance with every route registered.
func New(svc *core.Service, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(Recovery(opts.Logger))
	e.Use(RequestID())
	e.Use(Logger(opts.Logger))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := &Handler{svc: svc, exchange: opts.Exchange, logger: opts.Logger}
	h.RegisterRoutes(e.Group("/api/v1"))
	return e
}

// RegisterRoutes mounts the resource routes on api.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors)
	api.POST("/doctors", h.CreateDoctor)
	api.GET("/doctors/:id", h.GetDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor)
	api.DELETE("/doctors/:id", h.DeleteDoctor)

	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
	api.GET("/patients/:id/account", h.GetAccount)
	api.GET("/patients/:id/statement", h.GetStatement)

	api.GET("/rooms", h.ListRooms)
	api.GET("/rooms/vacant", h.ListVacantRooms)
	api.POST("/rooms", h.CreateRoom)
	api.GET("/rooms/:id", h.GetRoom)
	api.PUT("/rooms/:id", h.UpdateRoom)
	api.DELETE("/rooms/:id", h.DeleteRoom)
	api.POST("/rooms/:id/assign", h.AssignRoom)
	api.POST("/rooms/:id/vacate", h.VacateRoom)

	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)

	api.GET("/treatment-plans", h.ListTreatmentPlans)
	api.POST("/treatment-plans", h.CreateTreatmentPlan)
	api.GET("/treatment-plans/:id", h.GetTreatmentPlan)
	api.PUT("/treatment-plans/:id", h.UpdateTreatmentPlan)
	api.DELETE("/treatment-plans/:id", h.DeleteTreatmentPlan)

	api.GET("/diagnoses", h.ListDiagnoses)
	api.POST("/diagnoses", h.CreateDiagnosis)
	api.GET("/diagnoses/:id", h.GetDiagnosis)
	api.PUT("/diagnoses/:id", h.UpdateDiagnosis)
	api.DELETE("/diagnoses/:id", h.DeleteDiagnosis)

	api.GET("/bills", h.ListBills)
	api.POST("/bills", h.CreateBill)
	api.POST("/bills/admin-fee", h.ChargeAdminFee)
	api.GET("/bills/:id", h.GetBill)
	api.PUT("/bills/:id", h.UpdateBill)
	api.PUT("/bills/:id/status", h.SetBillStatus)
	api.DELETE("/bills/:id", h.DeleteBill)

	api.GET("/stats", h.GetStats)

	api.GET("/data/export", h.ExportData)
	api.POST("/data/export", h.StoreExport)
	api.GET("/data/exports", h.ListExports)
	api.POST("/data/import", h.ImportData)
	api.POST("/data/reset", h.ResetData)
	api.POST("/data/clear", h.ClearData)
}

// ViolationView is the wire form of a rule violation.
type ViolationView struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Entity   string `json:"entity,omitempty"`
	EntityID int    `json:"entity_id,omitempty"`
}

// MutationResponse wraps the record written by a command with the bills the
// billing engine raised and any rule warnings.
type MutationResponse struct {
	Data           any             `json:"data,omitempty"`
	TriggeredBills []domain.Bill   `json:"triggered_bills,omitempty"`
	Warnings       []ViolationView `json:"warnings,omitempty"`
}

func violationViews(in []domain.Violation) []ViolationView {
	if len(in) == 0 {
		return nil
	}
	out := make([]ViolationView, 0, len(in))
	for _, v := range in {
		out = append(out, ViolationView{
			Rule:     v.Rule,
			Severity: string(v.Severity),
			Message:  v.Message,
			Entity:   string(v.Entity),
			EntityID: v.EntityID,
		})
	}
	return out
}

// respond writes a command result. A persistence failure keeps the success
// status and is reported through PersistenceWarningHeader.
func respond(c echo.Context, status int, data any, res domain.Result, err error) error {
	if err != nil {
		if !domain.IsPersistence(err) {
			return errorResponse(err)
		}
		c.Response().Header().Set(PersistenceWarningHeader, err.Error())
	}
	if data == nil && status == http.StatusOK && len(res.TriggeredBills()) == 0 && len(res.Warnings()) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(status, MutationResponse{
		Data:           data,
		TriggeredBills: res.TriggeredBills(),
		Warnings:       violationViews(res.Warnings()),
	})
}

// errorResponse maps domain failures onto HTTP status codes.
func errorResponse(err error) error {
	var ruleErr domain.RuleViolationError
	switch {
	case errors.As(err, &ruleErr):
		return echo.NewHTTPError(http.StatusConflict, map[string]any{
			"error":      err.Error(),
			"violations": violationViews(ruleErr.Result.Violations),
		})
	case domain.IsValidation(err):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
	case domain.IsNotFound(err), exchange.IsMissing(err):
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": err.Error()})
	case domain.IsPrecondition(err):
		return echo.NewHTTPError(http.StatusConflict, map[string]any{"error": err.Error()})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "invalid id"})
	}
	return id, nil
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("invalid body: %v", err)})
	}
	return nil
}

// readPatch reads an update body once. The body must decode as a T so that a
// later applyPatch onto the stored record cannot fail half way.
func readPatch[T any](c echo.Context) ([]byte, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("invalid body: %v", err)})
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("{}"), nil
	}
	var check T
	if err := json.Unmarshal(raw, &check); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("invalid body: %v", err)})
	}
	return raw, nil
}

// applyPatch overlays the keys present in raw onto cur. Omitted keys keep
// their stored values; an explicit null clears optional fields.
func applyPatch(raw []byte, cur any) error {
	return json.Unmarshal(raw, cur)
}

// RequestID tags each request with an id, reusing an incoming X-Request-ID.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			return next(c)
		}
	}
}

// Logger writes one line per request.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return err
		}
	}
}

// Recovery turns handler panics into 500 responses.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)
					logger.Error().
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
			}()
			return next(c)
		}
	}
}
