package cache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/openpatrol/openpatrol/pkg/engine"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite is a persistent resource cache backed by a local SQLite file.
// Resource sets are stored as JSON documents with their storage time;
// expiry is evaluated on read so stale rows cost nothing to write.
type SQLite struct {
	path   string
	period time.Duration
	db     *sql.DB
}

// NewSQLite creates a SQLite cache handle. The database is not opened
// until Load.
func NewSQLite(path string, period time.Duration) *SQLite {
	return &SQLite{path: path, period: period}
}

// Load opens the database, applies pending migrations and enables WAL
// journaling.
func (s *SQLite) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping cache database: %w", err)
	}

	if err := migrateSchema(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func migrateSchema(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate cache schema: %w", err)
	}
	return nil
}

// Get implements Cache.
func (s *SQLite) Get(ctx context.Context, key string) ([]engine.Resource, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("cache not loaded")
	}

	var payload string
	var storedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, stored_at FROM cache_entries WHERE key = ?", key,
	).Scan(&payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if time.Since(time.Unix(storedAt, 0)) > s.period {
		return nil, false, nil
	}

	var resources []engine.Resource
	if err := json.Unmarshal([]byte(payload), &resources); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return resources, true, nil
}

// Put implements Cache.
func (s *SQLite) Put(ctx context.Context, key string, resources []engine.Resource) error {
	if s.db == nil {
		return fmt.Errorf("cache not loaded")
	}

	payload, err := json.Marshal(resources)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, payload, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at`,
		key, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close implements Cache.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
