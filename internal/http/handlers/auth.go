package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/http/authn"
	"github.com/Diogovx/offboarding-console/internal/http/viewmodels"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// HandleLoginPost exchanges operator credentials for a backend token and
// starts a console session holding it.
func (h *Handlers) HandleLoginPost(c echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || strings.TrimSpace(req.Password) == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid username or password."})
	}

	ctx := c.Request().Context()
	token, err := h.Backend.Login(ctx, backendapi.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, backendapi.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid username or password."})
		}
		return h.respondBackendError(c, err)
	}

	account, err := h.Backend.WithToken(token).CurrentUser(ctx)
	if err != nil {
		return h.respondBackendError(c, err)
	}

	if err := h.Sessions.RenewToken(ctx); err != nil {
		return err
	}
	h.Sessions.Put(ctx, authn.SessionKeyToken, token)
	h.Sessions.Put(ctx, authn.SessionKeyDisplayName, req.Username)
	h.Sessions.Put(ctx, authn.SessionKeyUserRole, account.UserRole)

	slog.Info("operator signed in",
		"username", req.Username,
		"admin", account.IsAdmin())
	return c.JSON(http.StatusOK, viewmodels.SessionView{
		DisplayName: req.Username,
		IsAdmin:     account.IsAdmin(),
	})
}

// HandleLogoutPost ends the console session.
func (h *Handlers) HandleLogoutPost(c echo.Context) error {
	if h.Sessions == nil {
		return errors.New("auth sessions not configured")
	}
	if p, ok := authn.PrincipalFromContext(c); ok && h.Executors != nil {
		h.Executors.Drop(p.Token)
	}
	if err := h.Sessions.Destroy(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleMe describes the signed-in operator.
func (h *Handlers) HandleMe(c echo.Context) error {
	p, ok := authn.PrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, viewmodels.SessionView{
		DisplayName: p.DisplayName,
		IsAdmin:     p.IsAdmin(),
	})
}
