package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/config"
	"github.com/Diogovx/offboarding-console/internal/export"
	httpapp "github.com/Diogovx/offboarding-console/internal/http"
	"github.com/Diogovx/offboarding-console/internal/metrics"
	"github.com/Diogovx/offboarding-console/internal/offboard"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the console HTTP server.",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationStructuredLog: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.LoadWithOptions(config.LoadOptions{RequireBackendURL: true})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := backendapi.New(cfg.BackendBaseURL)
	if err != nil {
		return err
	}

	sessions := scs.New()
	sessions.Lifetime = cfg.SessionLifetime
	sessions.Cookie.Secure = cfg.AuthCookieSecure
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		sessions.Store = pgxstore.New(pool)
	}

	pipeline := export.NewPipeline(
		export.WithPollInterval(cfg.ExportPollInterval),
		export.WithPollAttempts(cfg.ExportPollAttempts),
	)

	srv, err := httpapp.NewEchoServer(cfg, backend, sessions, offboard.NewRegistry(), pipeline)
	if err != nil {
		return err
	}

	_, metricsErr := metrics.StartServer(ctx, cfg.MetricsAddr)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("console listening", "addr", cfg.HTTPAddr, "backend", cfg.BackendBaseURL)
		errCh <- srv.StartServer(httpServer)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-metricsErr:
		return err
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
