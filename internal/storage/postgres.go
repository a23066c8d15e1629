package storage

import (
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
)

// PostgresStore keeps run history in a shared PostgreSQL database
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore creates a new PostgreSQL storage
func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.ConfigError("postgres storage requires a DSN")
	}
	if logger == nil {
		logger = logrus.New()
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, errors.StorageErrorf(err, "connect to postgres")
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{sqlStore{db: db, logger: logger}}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, errors.StorageErrorf(err, "init schema")
	}

	return store, nil
}

func (s *PostgresStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			repository TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			commits INTEGER NOT NULL DEFAULT 0,
			buckets INTEGER NOT NULL DEFAULT 0,
			query_errors INTEGER NOT NULL DEFAULT 0,
			parse_errors INTEGER NOT NULL DEFAULT 0,
			phase_errors INTEGER NOT NULL DEFAULT 0,
			enrichment_failures INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			event_date TEXT NOT NULL,
			title TEXT NOT NULL,
			icon TEXT,
			description TEXT,
			tags TEXT,
			PRIMARY KEY (run_id, kind, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_repository ON runs(repository, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
