// Package storage opens the bun databases backing the content store.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultSQLiteDSN keeps data in a shared in-process database.
const DefaultSQLiteDSN = "file:portal?mode=memory&cache=shared"

var ErrDriverUnsupported = errors.New("storage: unsupported driver")
var ErrDSNRequired = errors.New("storage: dsn is required")

// Config selects a driver and connection string.
type Config struct {
	Driver string
	DSN    string
	// MaxOpenConns is applied when positive. sqlite in-memory databases
	// default to a single connection.
	MaxOpenConns int
}

// Open connects to the configured database and wraps it with the matching
// bun dialect. The connection is verified with a ping.
func Open(cfg Config) (*bun.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)

	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch driver {
	case DriverSQLite, "sqlite3":
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		sqlDB, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		if cfg.MaxOpenConns <= 0 && strings.Contains(dsn, "mode=memory") {
			cfg.MaxOpenConns = 1
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case DriverPostgres, "pgx":
		if dsn == "" {
			return nil, ErrDSNRequired
		}
		sqlDB, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %q", ErrDriverUnsupported, cfg.Driver)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}
	return db, nil
}
