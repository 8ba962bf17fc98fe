// Package db opens the journal database and keeps its schema current.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/ahsanfayaz52/hopperhelps/internal/config"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Open connects using cfg.DBDriver and applies pending migrations. Migration
// progress goes to log; a nil log silences it.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch cfg.DBDriver {
	case config.DriverMySQL:
		conn, err = OpenMySQL(ctx, cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBName)
	case config.DriverSQLite:
		conn, err = OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("open: unknown driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, conn, cfg.DBDriver, log); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate runs the embedded goose migrations for the given driver.
func Migrate(ctx context.Context, conn *sql.DB, driver string, log logging.Logger) error {
	dialect, dir, err := gooseTarget(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(newGooseLogger(log))
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, conn, dir); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}

// MigrationVersion reports the schema version recorded by goose.
func MigrationVersion(ctx context.Context, conn *sql.DB, driver string) (int64, error) {
	dialect, _, err := gooseTarget(driver)
	if err != nil {
		return 0, err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("migrate: set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, conn)
}

func gooseTarget(driver string) (dialect, dir string, err error) {
	switch driver {
	case config.DriverMySQL:
		return "mysql", "migrations/mysql", nil
	case config.DriverSQLite:
		return "sqlite3", "migrations/sqlite", nil
	default:
		return "", "", fmt.Errorf("migrate: unknown driver %q", driver)
	}
}
