package queue

import (
	"database/sql"
	"fmt"

	"github.com/floodworks/sesloc/migrations"
	"github.com/pressly/goose/v3"
)

// runMigrations applies all pending migrations using goose, reading the SQL
// files embedded in the migrations package. Migrations are additive only so
// schema upgrades never destroy existing queue entries.
func runMigrations(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
