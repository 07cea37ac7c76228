// Package store persists chat events and reference data in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // register postgres driver
	_ "modernc.org/sqlite" // register sqlite driver
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnsupportedDriver is returned by Open for drivers other than sqlite and postgres.
var ErrUnsupportedDriver = errors.New("unsupported store driver")

// DB is the event store and reference-data store.
type DB struct {
	db     *sql.DB
	driver string
}

// Open opens or creates the database and applies the schema.
// For sqlite, dsn is a file path; for postgres it is a connection URL.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		db, err = sql.Open("sqlite", dsn+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres driver requires a database URL")
		}
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	s := New(db, driver)
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection without touching the schema.
func New(db *sql.DB, driver string) *DB {
	return &DB{db: db, driver: driver}
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}

// Driver returns the driver name the store was opened with.
func (s *DB) Driver() string {
	return s.driver
}

// Ping checks the connection.
func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *DB) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Counts summarizes the store contents.
type Counts struct {
	Events       int `json:"events"`
	Modules      int `json:"modules"`
	Courses      int `json:"courses"`
	Models       int `json:"models"`
	TrackedFiles int `json:"trackedFiles"`
}

// Counts returns row counts for the main tables.
func (s *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"events", &c.Events},
		{"modules", &c.Modules},
		{"courses", &c.Courses},
		{"model_pricing", &c.Models},
		{"file_tracker", &c.TrackedFiles},
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return c, fmt.Errorf("counting %s: %w", t.table, err)
		}
	}
	return c, nil
}
