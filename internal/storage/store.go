package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/timeline"
)

// Open returns the store selected by cfg.Type. "none" yields ErrDisabled.
func Open(cfg config.StorageConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		return NewSQLiteStore(cfg.LocalPath, logger)
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN, logger)
	case "none":
		return nil, ErrDisabled
	default:
		return nil, errors.ConfigErrorf("unknown storage type %q", cfg.Type)
	}
}

type runRow struct {
	ID                 string    `db:"id"`
	Repository         string    `db:"repository"`
	CreatedAt          time.Time `db:"created_at"`
	Commits            int       `db:"commits"`
	Buckets            int       `db:"buckets"`
	QueryErrors        int       `db:"query_errors"`
	ParseErrors        int       `db:"parse_errors"`
	PhaseErrors        int       `db:"phase_errors"`
	EnrichmentFailures int       `db:"enrichment_failures"`
}

type eventRow struct {
	RunID       string `db:"run_id"`
	Kind        string `db:"kind"`
	Position    int    `db:"position"`
	Date        string `db:"event_date"`
	Title       string `db:"title"`
	Icon        string `db:"icon"`
	Description string `db:"description"`
	Tags        string `db:"tags"` // JSON array
}

type summaryRow struct {
	ID           string    `db:"id"`
	Repository   string    `db:"repository"`
	CreatedAt    time.Time `db:"created_at"`
	Commits      int       `db:"commits"`
	FeatureCount int       `db:"feature_count"`
	ToolingCount int       `db:"tooling_count"`
}

// sqlStore is the dialect-neutral part shared by SQLite and PostgreSQL.
// Queries are written with ? placeholders and rebound per driver.
type sqlStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StorageErrorf(err, "begin transaction")
	}
	defer tx.Rollback()

	row := runRow{
		ID:                 run.ID,
		Repository:         run.Repository,
		CreatedAt:          run.CreatedAt,
		Commits:            run.Stats.Commits,
		Buckets:            run.Stats.Buckets,
		QueryErrors:        run.Stats.QueryErrors,
		ParseErrors:        run.Stats.ParseErrors,
		PhaseErrors:        run.Stats.PhaseErrors,
		EnrichmentFailures: run.Stats.EnrichmentFailures,
	}

	query := `
		INSERT INTO runs (id, repository, created_at, commits, buckets,
			query_errors, parse_errors, phase_errors, enrichment_failures)
		VALUES (:id, :repository, :created_at, :commits, :buckets,
			:query_errors, :parse_errors, :phase_errors, :enrichment_failures)
	`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return errors.StorageErrorf(err, "save run")
	}

	eventQuery := `
		INSERT INTO events (run_id, kind, position, event_date, title, icon, description, tags)
		VALUES (:run_id, :kind, :position, :event_date, :title, :icon, :description, :tags)
	`
	for _, stream := range [][]timeline.Event{run.Features, run.Tooling} {
		for i, ev := range stream {
			tags, err := json.Marshal(ev.Tags)
			if err != nil {
				return errors.StorageErrorf(err, "encode tags")
			}
			er := eventRow{
				RunID:       run.ID,
				Kind:        string(ev.Kind),
				Position:    i,
				Date:        ev.Date,
				Title:       ev.Title,
				Icon:        ev.Icon,
				Description: ev.Description,
				Tags:        string(tags),
			}
			if _, err := tx.NamedExecContext(ctx, eventQuery, er); err != nil {
				return errors.StorageErrorf(err, "save event")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StorageErrorf(err, "commit run")
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"features": len(run.Features),
		"tooling":  len(run.Tooling),
	}).Debug("Saved timeline run")

	return nil
}

func (s *sqlStore) ListRuns(ctx context.Context, repository string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT r.id, r.repository, r.created_at, r.commits,
			(SELECT COUNT(*) FROM events e WHERE e.run_id = r.id AND e.kind = 'feature') AS feature_count,
			(SELECT COUNT(*) FROM events e WHERE e.run_id = r.id AND e.kind = 'tooling') AS tooling_count
		FROM runs r
		WHERE (? = '' OR r.repository = ?)
		ORDER BY r.created_at DESC, r.id
		LIMIT ?
	`

	var rows []summaryRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), repository, repository, limit); err != nil {
		return nil, errors.StorageErrorf(err, "list runs")
	}

	summaries := make([]RunSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, RunSummary{
			ID:           r.ID,
			Repository:   r.Repository,
			CreatedAt:    r.CreatedAt,
			Commits:      r.Commits,
			FeatureCount: r.FeatureCount,
			ToolingCount: r.ToolingCount,
		})
	}
	return summaries, nil
}

func (s *sqlStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT * FROM runs WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, errors.StorageErrorf(err, "get run")
	}

	var events []eventRow
	err = s.db.SelectContext(ctx, &events,
		s.db.Rebind(`SELECT * FROM events WHERE run_id = ? ORDER BY kind, position`), id)
	if err != nil {
		return nil, errors.StorageErrorf(err, "get events")
	}

	run := &Run{
		ID:         row.ID,
		Repository: row.Repository,
		CreatedAt:  row.CreatedAt,
		Stats: timeline.Stats{
			Commits:            row.Commits,
			Buckets:            row.Buckets,
			QueryErrors:        row.QueryErrors,
			ParseErrors:        row.ParseErrors,
			PhaseErrors:        row.PhaseErrors,
			EnrichmentFailures: row.EnrichmentFailures,
		},
	}

	for _, er := range events {
		ev := timeline.Event{
			Date:        er.Date,
			Title:       er.Title,
			Icon:        er.Icon,
			Description: er.Description,
			Kind:        timeline.Kind(er.Kind),
		}
		if err := json.Unmarshal([]byte(er.Tags), &ev.Tags); err != nil {
			s.logger.WithError(err).WithField("run_id", id).Warn("Corrupt tags column")
		}
		if ev.Kind == timeline.KindFeature {
			run.Features = append(run.Features, ev)
		} else {
			run.Tooling = append(run.Tooling, ev)
		}
	}

	return run, nil
}
