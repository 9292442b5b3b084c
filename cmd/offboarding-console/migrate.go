package main

import (
	"errors"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/Diogovx/offboarding-console/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Run database migrations for the session store",
	Annotations: map[string]string{annotationStructuredLog: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set; the session store has nothing to migrate")
		}

		m, err := migrate.New(
			"file://db/migrations",
			cfg.DatabaseURL,
		)
		if err != nil {
			return err
		}

		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				slog.Info("no changes to apply")
				return nil
			}
			return err
		}

		slog.Info("migrations applied successfully")
		return nil
	},
}
