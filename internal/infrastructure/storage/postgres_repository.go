package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// PostgresStore persists client alerts and serves the client directory.
type PostgresStore struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

var (
	_ ports.AlertStore      = (*PostgresStore)(nil)
	_ ports.ClientDirectory = (*PostgresStore)(nil)
)

// NewPostgresStore wires an sqlx.DB with dollar placeholders.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// RunMigrations creates the schema. The unique index on (client_id, url) is
// the invariant that closes the check-then-insert race between runs.
func RunMigrations(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS clients (
  id UUID PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  primary_email TEXT,
  net_worth DOUBLE PRECISION DEFAULT 0,
  age INT DEFAULT 0,
  occupation TEXT,
  profile JSONB DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS alert_configs (
  client_id UUID PRIMARY KEY REFERENCES clients(id) ON DELETE CASCADE,
  keywords TEXT[] NOT NULL DEFAULT '{}',
  excluded_keywords TEXT[] NOT NULL DEFAULT '{}',
  priority_threshold TEXT NOT NULL DEFAULT 'low',
  categories_enabled TEXT[] NOT NULL DEFAULT '{}',
  email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS news_alerts (
  id UUID PRIMARY KEY,
  client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  summary TEXT,
  url TEXT NOT NULL,
  source TEXT,
  published_at TIMESTAMPTZ,
  priority TEXT NOT NULL DEFAULT 'low',
  category TEXT,
  tags TEXT[] NOT NULL DEFAULT '{}',
  relevance_score INT NOT NULL DEFAULT 0,
  reasoning TEXT,
  is_read BOOLEAN NOT NULL DEFAULT FALSE,
  fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_news_alerts_client_url ON news_alerts(client_id, url);
CREATE INDEX IF NOT EXISTS idx_news_alerts_fetched ON news_alerts(fetched_at);
CREATE INDEX IF NOT EXISTS idx_news_alerts_client ON news_alerts(client_id);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Exists reports whether an alert row is already present for the pair.
func (s *PostgresStore) Exists(ctx context.Context, clientID, url string) (bool, error) {
	query, args, err := s.builder.
		Select("1").
		From("news_alerts").
		Where(sq.Eq{"client_id": clientID, "url": url}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// Insert writes the alert, relying on the unique index to swallow duplicate
// (client_id, url) pairs atomically. The bool result is false on conflict.
func (s *PostgresStore) Insert(ctx context.Context, alert domain.Alert) (domain.Alert, bool, error) {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.FetchedAt.IsZero() {
		alert.FetchedAt = time.Now().UTC()
	}

	query, args, err := s.builder.
		Insert("news_alerts").
		Columns("id", "client_id", "title", "summary", "url", "source", "published_at",
			"priority", "category", "tags", "relevance_score", "reasoning", "is_read", "fetched_at").
		Values(alert.ID, alert.ClientID, alert.Title, truncateSummary(alert.Summary), alert.URL,
			alert.Source, alert.PublishedAt, string(alert.Priority), alert.Category,
			pq.Array(alert.Tags), alert.Score, alert.Reasoning, alert.IsRead, alert.FetchedAt).
		Suffix("ON CONFLICT (client_id, url) DO NOTHING").
		ToSql()
	if err != nil {
		return domain.Alert{}, false, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Alert{}, false, fmt.Errorf("insert alert: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Alert{}, false, fmt.Errorf("rows affected: %w", err)
	}

	return alert, affected > 0, nil
}

// DeleteOlderThan removes alerts fetched before the cutoff. Safe to run
// repeatedly and concurrently with ingestion.
func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := s.builder.
		Delete("news_alerts").
		Where(sq.Lt{"fetched_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete old alerts: %w", err)
	}

	return res.RowsAffected()
}

// MarkRead flips the read flag on one alert.
func (s *PostgresStore) MarkRead(ctx context.Context, alertID string) error {
	query, args, err := s.builder.
		Update("news_alerts").
		Set("is_read", true).
		Where(sq.Eq{"id": alertID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark read: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// List returns alerts newest first, narrowed by the filter.
func (s *PostgresStore) List(ctx context.Context, filter ports.AlertFilter) ([]domain.Alert, error) {
	q := s.builder.
		Select("id", "client_id", "title", "summary", "url", "source", "published_at",
			"priority", "category", "tags", "relevance_score", "reasoning", "is_read", "fetched_at").
		From("news_alerts").
		OrderBy("published_at DESC")

	if filter.ClientID != "" {
		q = q.Where(sq.Eq{"client_id": filter.ClientID})
	}
	if filter.Priority != "" {
		q = q.Where(sq.Eq{"priority": string(filter.Priority)})
	}
	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}
	if filter.OnlyUnread {
		q = q.Where(sq.Eq{"is_read": false})
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q = q.Limit(uint64(limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return alerts, nil
}

func scanAlert(rows *sqlx.Rows) (domain.Alert, error) {
	var (
		alert       domain.Alert
		priority    string
		tags        pq.StringArray
		publishedAt sql.NullTime
	)

	err := rows.Scan(&alert.ID, &alert.ClientID, &alert.Title, &alert.Summary, &alert.URL,
		&alert.Source, &publishedAt, &priority, &alert.Category, &tags,
		&alert.Score, &alert.Reasoning, &alert.IsRead, &alert.FetchedAt)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("scan alert: %w", err)
	}

	alert.Priority = domain.ParsePriority(priority)
	alert.Tags = []string(tags)
	if publishedAt.Valid {
		alert.PublishedAt = publishedAt.Time
	}

	return alert, nil
}

// truncateSummary caps the stored summary at 500 bytes, backing up to a rune
// boundary so the value stays valid UTF-8 for Postgres.
func truncateSummary(s string) string {
	if len(s) <= 500 {
		return s
	}
	cut := 500
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
