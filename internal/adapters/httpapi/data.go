package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"poms/internal/adapters/exchange"
)

// ExportData streams the export document as a download.
func (h *Handler) ExportData(c echo.Context) error {
	ctx := c.Request().Context()
	doc := h.svc.Export(ctx)
	var buf bytes.Buffer
	if err := exchange.Encode(&buf, doc); err != nil {
		return errorResponse(err)
	}
	name := fmt.Sprintf("poms_data_%s.json", h.svc.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, buf.Bytes())
}

// StoreExport writes an export into the blob store.
func (h *Handler) StoreExport(c echo.Context) error {
	if h.exchange == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, map[string]any{"error": "blob exchange not configured"})
	}
	info, err := h.exchange.Export(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, info)
}

// ListExports lists exports held in the blob store.
func (h *Handler) ListExports(c echo.Context) error {
	if h.exchange == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, map[string]any{"error": "blob exchange not configured"})
	}
	infos, err := h.exchange.List(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, infos)
}

// ImportData replaces all data with the request body, or with a stored export
// when the key query parameter is set.
func (h *Handler) ImportData(c echo.Context) error {
	ctx := c.Request().Context()
	if key := c.QueryParam("key"); key != "" {
		if h.exchange == nil {
			return echo.NewHTTPError(http.StatusNotImplemented, map[string]any{"error": "blob exchange not configured"})
		}
		res, err := h.exchange.ImportKey(ctx, key)
		return respond(c, http.StatusOK, nil, res, err)
	}
	snapshot, err := exchange.Decode(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	res, err := h.svc.Import(ctx, snapshot)
	return respond(c, http.StatusOK, nil, res, err)
}

// ResetData replaces all data with the sample dataset.
func (h *Handler) ResetData(c echo.Context) error {
	res, err := h.svc.ResetToSeed(c.Request().Context())
	return respond(c, http.StatusOK, nil, res, err)
}

// ClearData empties every collection.
func (h *Handler) ClearData(c echo.Context) error {
	res, err := h.svc.ClearAll(c.Request().Context())
	return respond(c, http.StatusOK, nil, res, err)
}
