package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"genr8-backend/internal/database"
)

// SQLBackend stores values in the kv_entries table of a sqlite3, postgres or
// mysql database.
type SQLBackend struct {
	db      *sql.DB
	dialect database.Dialect
}

// OpenSQL connects, verifies the connection and applies pending migrations.
func OpenSQL(ctx context.Context, dialect database.Dialect, dsn string, log zerolog.Logger) (*SQLBackend, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == database.DialectSQLite {
		// sqlite allows one writer; an in-memory database also lives on a single connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := database.NewMigrator(db, dialect, log).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewSQLBackend(db, dialect), nil
}

// NewSQLBackend wraps an already migrated database.
func NewSQLBackend(db *sql.DB, dialect database.Dialect) *SQLBackend {
	return &SQLBackend{db: db, dialect: dialect}
}

func (s *SQLBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.SelectEntryQuery(), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.UpsertEntryQuery(), key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *SQLBackend) Close() error {
	return s.db.Close()
}
