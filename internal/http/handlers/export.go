package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/export"
	"github.com/Diogovx/offboarding-console/internal/http/viewmodels"
)

// HandleLogsExport submits an export for the current filter, waits for the
// artifact and saves it under the export directory. The response tells the UI
// where to download it and when to drop the success notice.
func (h *Handlers) HandleLogsExport(c echo.Context) error {
	bound, _, err := h.bound(c)
	if err != nil {
		return err
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}

	// The export always covers the whole filtered set, not just the page the
	// operator happens to be looking at.
	filter := logFilterFromQuery(c)
	filter.Page = 1
	filter.Limit = backendapi.ExportSnapshotLimit

	saver := export.FileSaver{Dir: h.Cfg.ExportDir}
	result, err := h.Exporter.Run(c.Request().Context(), bound, format, filter, saver, nil)
	if err != nil {
		switch {
		case errors.Is(err, export.ErrUnsupportedFormat):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, export.ErrInFlight):
			return c.JSON(http.StatusConflict, map[string]string{"error": "An export is already in progress."})
		case errors.Is(err, export.ErrTimedOut):
			return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": "Timed out generating the export. Please try again."})
		}
		return h.respondBackendError(c, err)
	}

	return c.JSON(http.StatusOK, viewmodels.ExportStarted{
		Message:      fmt.Sprintf("Export complete: %s", result.Name),
		FileName:     result.Name,
		ClearAfterMS: export.SuccessMessageTTL.Milliseconds(),
	})
}
