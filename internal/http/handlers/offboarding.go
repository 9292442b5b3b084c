package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/directory"
	"github.com/Diogovx/offboarding-console/internal/http/viewmodels"
	"github.com/Diogovx/offboarding-console/internal/offboard"
)

// HandleSubjectSearch looks a subject up across the downstream systems and
// loads the result into the operator's offboarding screen.
func (h *Handlers) HandleSubjectSearch(c echo.Context) error {
	bound, p, err := h.bound(c)
	if err != nil {
		return err
	}

	view, err := directory.Lookup(c.Request().Context(), bound, c.Param("registration"))
	if err != nil {
		if errors.Is(err, directory.ErrEmptyRegistration) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "registration is required"})
		}
		return h.respondBackendError(c, err)
	}

	exec := h.Executors.ForSession(p.Token)
	exec.LoadSubject(view)
	return c.JSON(http.StatusOK, viewmodels.NewSubjectView(view, exec.State().String()))
}

// HandleOffboardBegin opens the confirmation step for the loaded subject.
func (h *Handlers) HandleOffboardBegin(c echo.Context) error {
	_, p, err := h.bound(c)
	if err != nil {
		return err
	}
	exec := h.Executors.ForSession(p.Token)
	if err := exec.BeginConfirmation(); err != nil {
		return respondExecutorError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"state": exec.State().String()})
}

// HandleOffboardCancel backs out of the confirmation step.
func (h *Handlers) HandleOffboardCancel(c echo.Context) error {
	_, p, err := h.bound(c)
	if err != nil {
		return err
	}
	exec := h.Executors.ForSession(p.Token)
	if err := exec.CancelConfirmation(); err != nil {
		return respondExecutorError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"state": exec.State().String()})
}

// HandleOffboardConfirm executes the revoke call for the confirmed subject.
// The business outcome, success or failure, always comes back as 200 with the
// settled state; only protocol-level problems map to error statuses.
func (h *Handlers) HandleOffboardConfirm(c echo.Context) error {
	bound, p, err := h.bound(c)
	if err != nil {
		return err
	}
	exec := h.Executors.ForSession(p.Token)

	subject, _ := exec.Subject()
	outcome, err := exec.Confirm(c.Request().Context(), bound)
	if err != nil {
		if errors.Is(err, offboard.ErrNotConfirming) || errors.Is(err, offboard.ErrExecutionInProgress) || errors.Is(err, offboard.ErrNoSubject) {
			return respondExecutorError(c, err)
		}
		// The revoke call itself failed; the outcome carries the operator-
		// facing message, but an expired session still ends it.
		return h.respondRevokeFailure(c, err, outcome, exec)
	}

	slog.Info("offboarding executed",
		"registration", subject.Registration,
		"success", outcome.Success,
		"systems", outcome.Systems,
		"operator", p.DisplayName)
	return c.JSON(http.StatusOK, viewmodels.OutcomeView{
		Success: outcome.Success,
		Message: outcome.Message,
		Systems: outcome.Systems,
		State:   exec.State().String(),
	})
}

func (h *Handlers) respondRevokeFailure(c echo.Context, err error, outcome offboard.Outcome, exec *offboard.Executor) error {
	if errors.Is(err, backendapi.ErrUnauthorized) {
		return h.respondBackendError(c, err)
	}
	return c.JSON(http.StatusOK, viewmodels.OutcomeView{
		Success: false,
		Message: outcome.Message,
		State:   exec.State().String(),
	})
}

func respondExecutorError(c echo.Context, err error) error {
	status := http.StatusConflict
	if errors.Is(err, offboard.ErrNoSubject) {
		status = http.StatusBadRequest
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
