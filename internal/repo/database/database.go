package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/everyio/tasktracker/internal/infra/logging"
)

// Driver names accepted in Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// pgUniqueViolation is the SQLSTATE Postgres reports for unique constraint violations.
const pgUniqueViolation = "23505"

// ErrUnknownDriver is returned by Open for an unsupported Config.Driver.
var ErrUnknownDriver = errors.New("unknown database driver")

// Config holds the connection settings of the relational store.
type Config struct {
	// Driver selects the backend: "sqlite" or "postgres"
	Driver string `env:"DRIVER" default:"sqlite"`

	// DSN is the SQLite database file path or the Postgres connection string
	DSN string `env:"DSN" default:"var/storage/tasksvc.db"`

	// MaxOpenConns limits the connection pool; 0 means unlimited
	MaxOpenConns int `env:"MAX_OPEN_CONNS" default:"0"`

	// ConnMaxLifetime is the maximum time a pooled connection is reused
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" default:"5m"`
}

// DB is the explicitly constructed handle to the relational store shared by
// all repositories. It is opened once at process start and closed at shutdown.
type DB struct {
	*sql.DB

	driver string
	log    logging.Logger

	// writeLock serializes writes on SQLite, which does not support concurrent writers.
	// It is nil for Postgres.
	writeLock *sync.Mutex
}

// Open connects to the store described by cfg, verifies the connection
// and creates the schema if needed.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	log := logging.GetLogger("repo.database").With(
		logging.Group("db", "driver", cfg.Driver),
	)

	var (
		driverName string
		db         = &DB{driver: cfg.Driver, log: log}
	)

	dsn := cfg.DSN

	switch cfg.Driver {
	case DriverSQLite:
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}

		driverName = "sqlite"
		dsn = sqliteDSN(dsn)
		db.writeLock = new(sync.Mutex)
	case DriverPostgres:
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.DB = sqlDB

	if err := db.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	if cfg.Driver == DriverSQLite && strings.HasPrefix(cfg.DSN, ":memory:") {
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("migrate db: %w", err)
	}

	log.DebugContext(ctx, "db opened")

	return db, nil
}

// ensureSQLiteDir creates the parent directory of a file backed SQLite database.
func ensureSQLiteDir(dsn string) error {
	if strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}

	path, _, _ := strings.Cut(dsn, "?")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("create db dir: %w", err)
	}

	return nil
}

// sqliteDSN adds the per-connection pragmas every pooled SQLite connection needs.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Driver returns the backend name the handle was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Rebind rewrites the ?-placeholders of query into the placeholder syntax of
// the backend. Queries must not contain literal question marks.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)

	b.Grow(len(query) + 8)

	for _, c := range query {
		if c != '?' {
			b.WriteRune(c)

			continue
		}

		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

// LockWrites acquires the write lock when the backend needs one.
// The returned function releases it and must always be called.
func (db *DB) LockWrites() func() {
	if db.writeLock == nil {
		return func() {}
	}

	db.writeLock.Lock()

	return db.writeLock.Unlock
}

// Close releases the connection pool.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	db.log.Debug("db closed")

	return nil
}

// IsUniqueViolation reports whether err is a unique or primary key
// constraint violation reported by either backend.
func IsUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		default:
			return false
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return false
}
