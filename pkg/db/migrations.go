package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// RunMigrations applies the embedded migrations of dialect ("sqlite" or "postgres").
func RunMigrations(driver database.Driver, dialect string) error {
	source, err := iofs.New(migrations, "migrations/"+dialect)

	if err != nil {
		return fmt.Errorf("migrations: loading %s source: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)

	if err != nil {
		return fmt.Errorf("migrations: creating instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: applying %s: %w", dialect, err)
	}

	return nil
}
