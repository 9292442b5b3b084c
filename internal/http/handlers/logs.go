package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Diogovx/offboarding-console/internal/auditlog"
	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/export"
	"github.com/Diogovx/offboarding-console/internal/http/viewmodels"
)

const maxLogPageSize = 100

func logFilterFromQuery(c echo.Context) backendapi.LogFilter {
	return backendapi.LogFilter{
		Action:   strings.TrimSpace(c.QueryParam("action")),
		Username: strings.TrimSpace(c.QueryParam("username")),
		Status:   strings.TrimSpace(c.QueryParam("status")),
		DateFrom: strings.TrimSpace(c.QueryParam("date_from")),
		DateTo:   strings.TrimSpace(c.QueryParam("date_to")),
		Page:     parsePageParam(c),
		Limit:    parseLimitParam(c, auditlog.DefaultPageSize, maxLogPageSize),
	}
}

// HandleLogsList serves one filtered page of the audit trail.
func (h *Handlers) HandleLogsList(c echo.Context) error {
	bound, _, err := h.bound(c)
	if err != nil {
		return err
	}

	filter := logFilterFromQuery(c)
	page, err := bound.ListAuditLogs(c.Request().Context(), filter)
	if err != nil {
		return h.respondBackendError(c, err)
	}

	offset := (filter.Page - 1) * filter.Limit
	from, to := showingRange(page.Total, offset, len(page.Items))
	return c.JSON(http.StatusOK, viewmodels.LogsPage{
		Items:       page.Items,
		Total:       page.Total,
		Page:        filter.Page,
		TotalPages:  totalPages(page.Total, filter.Limit),
		ShowingFrom: from,
		ShowingTo:   to,
	})
}

// HandleLogCatalogs serves the fixed sets the filter dropdowns offer.
func (h *Handlers) HandleLogCatalogs(c echo.Context) error {
	return c.JSON(http.StatusOK, viewmodels.LogCatalogs{
		Actions:  auditlog.Actions(),
		Statuses: auditlog.Statuses(),
		Formats:  export.Formats(),
	})
}
