// Package httpapp wires the console's HTTP surface: routing, sessions, CSRF
// and the middleware stack.
package httpapp

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/config"
	"github.com/Diogovx/offboarding-console/internal/export"
	"github.com/Diogovx/offboarding-console/internal/http/authn"
	"github.com/Diogovx/offboarding-console/internal/http/handlers"
	"github.com/Diogovx/offboarding-console/internal/offboard"
)

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h *handlers.Handlers
	e *echo.Echo
}

// NewEchoServer creates the console server with its full middleware stack.
func NewEchoServer(cfg config.Config, backend *backendapi.Client, sessions *scs.SessionManager, executors *offboard.Registry, exporter *export.Pipeline) (*EchoServer, error) {
	h := &handlers.Handlers{
		Cfg:       cfg,
		Backend:   backend,
		Sessions:  sessions,
		Executors: executors,
		Exporter:  exporter,
	}
	es := &EchoServer{h: h, e: echo.New()}
	es.e.HideBanner = true
	es.registerRoutes(sessions)
	return es, nil
}

func (es *EchoServer) registerRoutes(sessions *scs.SessionManager) {
	es.e.Use(middleware.Recover())
	es.e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set(handlers.ContextKeyRequestID, id)
		},
	}))
	es.e.Use(echo.WrapMiddleware(sessions.LoadAndSave))

	es.e.GET("/healthz", es.h.HandleHealthz)

	api := es.e.Group("/api")
	api.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	api.GET("/csrf", handleCSRFToken)
	api.POST("/login", es.h.HandleLoginPost)

	authed := api.Group("", authn.RequireSession(sessions))
	authed.POST("/logout", es.h.HandleLogoutPost)
	authed.GET("/me", es.h.HandleMe)
	authed.GET("/subjects/:registration", es.h.HandleSubjectSearch)
	authed.POST("/offboarding/begin", es.h.HandleOffboardBegin)
	authed.POST("/offboarding/cancel", es.h.HandleOffboardCancel)
	authed.POST("/offboarding/confirm", es.h.HandleOffboardConfirm)

	// The audit surfaces are for admins only; everyone else works the
	// offboarding screen.
	admin := authed.Group("", authn.RequireAdmin())
	admin.GET("/logs", es.h.HandleLogsList)
	admin.GET("/logs/catalog", es.h.HandleLogCatalogs)
	admin.POST("/logs/export", es.h.HandleLogsExport)

	downloads := es.e.Group("/exports", authn.RequireSession(sessions), authn.RequireAdmin())
	downloads.Static("/", es.h.Cfg.ExportDir)
}

func handleCSRFToken(c echo.Context) error {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// Start starts the HTTP server.
func (es *EchoServer) Start(addr string) error {
	return es.e.Start(addr)
}

// StartServer starts the HTTP server with a custom http.Server.
func (es *EchoServer) StartServer(server *http.Server) error {
	return es.e.StartServer(server)
}

// Shutdown gracefully shuts down the HTTP server.
func (es *EchoServer) Shutdown(ctx context.Context) error {
	return es.e.Shutdown(ctx)
}
