package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/wadjakorntonsri/folio/pkg/adapters/repository/keylock"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
)

const defaultMaxRetries = 8

// SQLiteRepository stores profiles. Analytics returns the aggregate store
// that shares its database.
type SQLiteRepository struct {
	db        *sql.DB
	analytics *AnalyticsStore
}

type Option func(*AnalyticsStore)

// WithMaxRetries bounds optimistic-lock retries in AnalyticsStore.Update.
func WithMaxRetries(n int) Option {
	return func(s *AnalyticsStore) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func NewSQLiteRepository(dbURL string, opts ...Option) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	// A local SQLite file has a single writer anyway; one connection avoids
	// SQLITE_BUSY between our own goroutines and keeps :memory: databases alive.
	if driverName == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	as := &AnalyticsStore{
		db:         db,
		locks:      keylock.New(keylock.DefaultStripes),
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(as)
	}
	return &SQLiteRepository{db: db, analytics: as}, nil
}

func (r *SQLiteRepository) Analytics() *AnalyticsStore {
	return r.analytics
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		owner_email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE COLLATE NOCASE,
		full_name TEXT,
		headline TEXT,
		about TEXT,
		location TEXT,
		resume JSON,
		published INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_profiles_owner ON profiles(owner_email);

	CREATE TABLE IF NOT EXISTS analytics (
		subject_id TEXT PRIMARY KEY,
		subject_key TEXT NOT NULL UNIQUE COLLATE NOCASE,
		doc JSON NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(query)
	return err
}

// storageErr marks driver failures as transient storage errors.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}
