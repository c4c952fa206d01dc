package database

import (
	"fmt"
	"strings"
)

// Dialect names a database/sql driver supported by the key-value table.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	default:
		return "", fmt.Errorf("unsupported sql dialect: %q", name)
	}
}

// DriverName is the name registered with database/sql.
func (d Dialect) DriverName() string {
	return string(d)
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SelectEntryQuery reads a single value from kv_entries.
func (d Dialect) SelectEntryQuery() string {
	return "SELECT entry_value FROM kv_entries WHERE entry_key = " + d.Placeholder(1)
}

// UpsertEntryQuery writes a value, replacing any previous one for the same key.
func (d Dialect) UpsertEntryQuery() string {
	values := fmt.Sprintf("(%s, %s, %s)", d.Placeholder(1), d.Placeholder(2), d.Placeholder(3))
	if d == DialectMySQL {
		return "INSERT INTO kv_entries (entry_key, entry_value, updated_at) VALUES " + values +
			" ON DUPLICATE KEY UPDATE entry_value = VALUES(entry_value), updated_at = VALUES(updated_at)"
	}
	return "INSERT INTO kv_entries (entry_key, entry_value, updated_at) VALUES " + values +
		" ON CONFLICT (entry_key) DO UPDATE SET entry_value = excluded.entry_value, updated_at = excluded.updated_at"
}

func (d Dialect) migrationsTableQuery() string {
	switch d {
	case DialectMySQL:
		return `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(255) NOT NULL PRIMARY KEY,
			applied_at DATETIME(3) NOT NULL
		)`
	case DialectPostgres:
		return `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	default:
		return `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL
		)`
	}
}
