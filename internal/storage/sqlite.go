package storage

import (
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
)

// SQLiteStore keeps run history in a local SQLite file
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore creates a new SQLite storage
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.New()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.StorageErrorf(err, "create database directory")
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, errors.StorageErrorf(err, "connect to sqlite")
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{sqlStore{db: db, logger: logger}}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, errors.StorageErrorf(err, "init schema")
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		repository TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		commits INTEGER NOT NULL DEFAULT 0,
		buckets INTEGER NOT NULL DEFAULT 0,
		query_errors INTEGER NOT NULL DEFAULT 0,
		parse_errors INTEGER NOT NULL DEFAULT 0,
		phase_errors INTEGER NOT NULL DEFAULT 0,
		enrichment_failures INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS events (
		run_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		event_date TEXT NOT NULL,
		title TEXT NOT NULL,
		icon TEXT,
		description TEXT,
		tags TEXT,
		PRIMARY KEY (run_id, kind, position),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_repository ON runs(repository, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
