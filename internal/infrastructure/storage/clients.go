package storage

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"newsdigest/internal/domain"
)

// clientsQuery selects clients joined to their alert configuration. The
// clients table is populated by the CRM, so its nullable columns are
// coalesced here rather than trusted at scan time.
func clientsQuery(builder sq.StatementBuilderType) (string, []interface{}, error) {
	return builder.
		Select("c.id", "c.first_name", "c.last_name",
			"COALESCE(c.primary_email, '')",
			"COALESCE(c.net_worth, 0)",
			"COALESCE(c.age, 0)",
			"COALESCE(c.occupation, '')",
			"COALESCE(c.profile, '{}'::jsonb)",
			"a.keywords", "a.excluded_keywords", "a.priority_threshold",
			"a.categories_enabled", "a.email_notifications").
		From("clients c").
		Join("alert_configs a ON a.client_id = c.id").
		OrderBy("c.last_name", "c.first_name").
		ToSql()
}

// ListWithActiveProfiles joins clients to their alert configuration,
// returning only clients that have one. The investor profile JSON blob is
// decoded into the typed struct here so malformed profiles surface at the
// boundary.
func (s *PostgresStore) ListWithActiveProfiles(ctx context.Context) ([]domain.ClientAlertPair, error) {
	query, args, err := clientsQuery(s.builder)
	if err != nil {
		return nil, fmt.Errorf("build clients query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var pairs []domain.ClientAlertPair
	for rows.Next() {
		var (
			pair       domain.ClientAlertPair
			profileRaw []byte
			keywords   pq.StringArray
			excluded   pq.StringArray
			threshold  string
			categories pq.StringArray
		)

		err := rows.Scan(&pair.Client.ID, &pair.Client.FirstName, &pair.Client.LastName,
			&pair.Client.Email, &pair.Client.NetWorth, &pair.Client.Age, &pair.Client.Occupation,
			&profileRaw, &keywords, &excluded, &threshold, &categories,
			&pair.Profile.EmailNotifications)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}

		if len(profileRaw) > 0 {
			if err := json.Unmarshal(profileRaw, &pair.Client.Profile); err != nil {
				return nil, fmt.Errorf("decode profile for client %s: %w", pair.Client.ID, err)
			}
		}

		pair.Profile.ClientID = pair.Client.ID
		pair.Profile.Keywords = []string(keywords)
		pair.Profile.ExcludedKeywords = []string(excluded)
		pair.Profile.PriorityThreshold = domain.ParsePriority(threshold)
		pair.Profile.CategoriesEnabled = []string(categories)

		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return pairs, nil
}
