package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/richxcame/pos-pricing/migrations"
	"github.com/richxcame/pos-pricing/pkg/config"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"go.uber.org/zap"
)

// Migrate applies every pending embedded migration to the configured database
func Migrate(cfg *config.DatabaseConfig) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("unable to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.URL())
	if err != nil {
		return fmt.Errorf("unable to initialise migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("unable to read migration version: %w", err)
	}

	logger.Info("database migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
