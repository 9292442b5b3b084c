// Package handlers contains the console's HTTP handler logic split by domain.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v4"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/config"
	"github.com/Diogovx/offboarding-console/internal/export"
	"github.com/Diogovx/offboarding-console/internal/http/authn"
	"github.com/Diogovx/offboarding-console/internal/metrics"
	"github.com/Diogovx/offboarding-console/internal/offboard"
)

// ContextKeyRequestID stores the request id (X-Request-ID) for logging.
const ContextKeyRequestID = "request_id"

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg       config.Config
	Backend   *backendapi.Client
	Sessions  *scs.SessionManager
	Executors *offboard.Registry
	Exporter  *export.Pipeline
}

// HandleHealthz reports process liveness.
func (h *Handlers) HandleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// bound returns the backend client bound to the signed-in operator's token.
func (h *Handlers) bound(c echo.Context) (*backendapi.Bound, authn.Principal, error) {
	p, ok := authn.PrincipalFromContext(c)
	if !ok {
		return nil, authn.Principal{}, echo.NewHTTPError(http.StatusUnauthorized)
	}
	return h.Backend.WithToken(p.Token), p, nil
}

// respondBackendError maps a failed backend call to a client response. An
// expired token ends the console session: the operator signs in again rather
// than keep issuing doomed requests.
func (h *Handlers) respondBackendError(c echo.Context, err error) error {
	if errors.Is(err, backendapi.ErrUnauthorized) {
		h.endSession(c)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "session expired"})
	}

	var apiErr *backendapi.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return c.JSON(apiErr.StatusCode, map[string]string{"error": apiErr.Detail})
	}

	slog.Error("backend request failed",
		"error", err,
		"request_id", requestID(c))
	return c.JSON(http.StatusBadGateway, map[string]string{"error": "backend unavailable"})
}

func (h *Handlers) endSession(c echo.Context) {
	if p, ok := authn.PrincipalFromContext(c); ok && h.Executors != nil {
		h.Executors.Drop(p.Token)
	}
	if h.Sessions != nil {
		_ = h.Sessions.Destroy(c.Request().Context())
	}
	metrics.SessionInvalidationsTotal.Inc()
}

func requestID(c echo.Context) string {
	if id, ok := c.Get(ContextKeyRequestID).(string); ok {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
