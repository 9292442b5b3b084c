// Package authn provides session-backed authentication middleware for the
// console. The operator's backend token lives in the server-side session;
// browsers only ever hold the session cookie.
package authn

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v4"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
)

const (
	ContextKeyPrincipal = "auth_principal"

	SessionKeyToken       = "backend_token"
	SessionKeyDisplayName = "display_name"
	SessionKeyUserRole    = "user_role"
)

// Principal is the authenticated operator attached to a request.
type Principal struct {
	Token       string
	DisplayName string
	Role        int
}

// IsAdmin reports whether the operator may trigger offboarding.
func (p Principal) IsAdmin() bool {
	return p.Role == backendapi.AdminRole
}

// PrincipalFromContext returns the principal set by RequireSession.
func PrincipalFromContext(c echo.Context) (Principal, bool) {
	p, ok := c.Get(ContextKeyPrincipal).(Principal)
	return p, ok
}

// LoadPrincipal reads the operator out of the session, if one is signed in.
func LoadPrincipal(c echo.Context, sessions *scs.SessionManager) (Principal, bool) {
	ctx := c.Request().Context()
	token := sessions.GetString(ctx, SessionKeyToken)
	if strings.TrimSpace(token) == "" {
		return Principal{}, false
	}
	return Principal{
		Token:       token,
		DisplayName: sessions.GetString(ctx, SessionKeyDisplayName),
		Role:        sessions.GetInt(ctx, SessionKeyUserRole),
	}, true
}

// RequireSession rejects requests without a signed-in operator and attaches
// the principal for downstream handlers.
func RequireSession(sessions *scs.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := LoadPrincipal(c, sessions)
			if !ok {
				return handleUnauth(c)
			}
			c.Set(ContextKeyPrincipal, principal)
			return next(c)
		}
	}
}

// RequireAdmin gates the irreversible operations behind the admin role.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				return handleUnauth(c)
			}
			if !p.IsAdmin() {
				if isAPIRequest(c) {
					return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
				}
				return echo.NewHTTPError(http.StatusForbidden)
			}
			return next(c)
		}
	}
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func handleUnauth(c echo.Context) error {
	if isAPIRequest(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}

	location := "/login"
	if c.Request().Method == http.MethodGet {
		if next := SanitizeNext(c.Request().URL.RequestURI()); next != "" {
			location = "/login?next=" + url.QueryEscape(next)
		}
	}
	return c.Redirect(http.StatusSeeOther, location)
}

// SanitizeNext keeps post-login redirects on-site.
func SanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || len(next) > 2048 {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || u.Scheme != "" {
		return ""
	}
	if u.Path == "/login" || strings.HasPrefix(u.Path, "/login/") {
		return ""
	}
	if strings.Contains(next, "\\") {
		return ""
	}
	return next
}
