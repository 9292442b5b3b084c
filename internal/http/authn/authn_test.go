package authn

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v4"
)

func TestSanitizeNext(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/logs", "/logs"},
		{"/logs?page=2", "/logs?page=2"},
		{"//evil.example", ""},
		{"https://evil.example/x", ""},
		{"/login", ""},
		{"/login/reset", ""},
		{"/a\\b", ""},
		{strings.Repeat("/a", 2000), ""},
	}
	for _, tc := range cases {
		if got := SanitizeNext(tc.in); got != tc.want {
			t.Errorf("SanitizeNext(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func newTestServer(t *testing.T, seed func(c echo.Context, sessions *scs.SessionManager)) (*echo.Echo, *scs.SessionManager) {
	t.Helper()
	e := echo.New()
	sessions := scs.New()
	e.Use(echo.WrapMiddleware(sessions.LoadAndSave))
	if seed != nil {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				seed(c, sessions)
				return next(c)
			}
		})
	}
	return e, sessions
}

func TestRequireSessionRejectsAnonymousAPIRequest(t *testing.T) {
	e, sessions := newTestServer(t, nil)
	e.GET("/api/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireSession(sessions))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRequireSessionRedirectsAnonymousPageRequest(t *testing.T) {
	e, sessions := newTestServer(t, nil)
	e.GET("/logs", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireSession(sessions))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?page=2", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); !strings.HasPrefix(loc, "/login?next=") {
		t.Fatalf("location = %q", loc)
	}
}

func TestRequireSessionAttachesPrincipal(t *testing.T) {
	e, sessions := newTestServer(t, func(c echo.Context, sessions *scs.SessionManager) {
		ctx := c.Request().Context()
		sessions.Put(ctx, SessionKeyToken, "tok-123")
		sessions.Put(ctx, SessionKeyDisplayName, "Alice")
		sessions.Put(ctx, SessionKeyUserRole, 1)
	})
	e.GET("/api/me", func(c echo.Context) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			t.Fatal("principal missing from context")
		}
		if p.Token != "tok-123" || p.DisplayName != "Alice" || !p.IsAdmin() {
			t.Fatalf("principal = %+v", p)
		}
		return c.NoContent(http.StatusOK)
	}, RequireSession(sessions))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAdminForbidsViewerRole(t *testing.T) {
	e, sessions := newTestServer(t, func(c echo.Context, sessions *scs.SessionManager) {
		ctx := c.Request().Context()
		sessions.Put(ctx, SessionKeyToken, "tok-456")
		sessions.Put(ctx, SessionKeyUserRole, 2)
	})
	e.POST("/api/logs/export", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireSession(sessions), RequireAdmin())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/logs/export", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
