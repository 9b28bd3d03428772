package bootstrap

import (
	"errors"
	"log/slog"
	"strings"

	"storefront/internal/pkg/config"
	"storefront/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/fx"
)

var MigrateModule = fx.Module("migrate",
	fx.Invoke(RunMigrations),
)

// RunMigrations applies the embedded migrations when DB_AUTO_MIGRATE is set.
func RunMigrations(cfg config.Config, logger *slog.Logger) error {
	if !cfg.DB.AutoMigrate {
		return nil
	}
	return MigrateUp(cfg.DB, logger)
}

func MigrateUp(cfg config.DBConfig, logger *slog.Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	dsn := "pgx5://" + strings.TrimPrefix(cfg.BuildDSN(), "postgres://")
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, _ := m.Version()
	logger.Info("database migrated", "version", version, "dirty", dirty)
	return nil
}
