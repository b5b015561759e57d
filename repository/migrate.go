package repository

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/fadhlanhapp/settleup-engine/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration for the configured driver
func RunMigrations(cfg *config.Config) error {
	// Create a separate connection for migrations; closing the migrate
	// instance closes it too.
	var (
		migrateDB *sql.DB
		err       error
	)
	switch cfg.DBDriver {
	case config.DriverSQLite:
		migrateDB, err = sql.Open("sqlite", cfg.SQLiteDBPath)
	case config.DriverPostgres:
		migrateDB, err = sql.Open("postgres", cfg.PostgresDSN())
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	var driver database.Driver
	switch cfg.DBDriver {
	case config.DriverSQLite:
		driver, err = sqlite.WithInstance(migrateDB, &sqlite.Config{})
	default:
		driver, err = postgres.WithInstance(migrateDB, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("create %s driver: %w", cfg.DBDriver, err)
	}

	d, err := iofs.New(migrationsFS, "migrations/"+cfg.DBDriver)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, cfg.DBDriver, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
