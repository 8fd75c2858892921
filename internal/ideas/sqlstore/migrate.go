package sqlstore

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// MigrateSQLite applies the embedded SQLite schema. PostgreSQL schemas are
// managed separately by cmd/migrate.
func MigrateSQLite(db *sql.DB) error {
	goose.SetBaseFS(sqliteMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/sqlite"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
