package ports

import (
	"context"
	"time"

	"newsdigest/internal/domain"
)

// ArticleSource pulls a fresh batch of articles from configured feeds.
type ArticleSource interface {
	FetchBatch(ctx context.Context) ([]domain.Article, error)
}

// ClientSearcher finds articles for one client via a search collaborator,
// using the client's interest and holding terms.
type ClientSearcher interface {
	SearchForClient(ctx context.Context, client domain.Client) ([]domain.Article, error)
}

// ClientDirectory lists clients that have an active alert profile.
type ClientDirectory interface {
	ListWithActiveProfiles(ctx context.Context) ([]domain.ClientAlertPair, error)
}

// AlertFilter narrows alert listings for the read API.
type AlertFilter struct {
	ClientID   string
	Priority   domain.Priority
	Category   string
	OnlyUnread bool
	Limit      int
}

// AlertStore persists client alerts and enforces (clientID, url) uniqueness.
type AlertStore interface {
	// Exists reports whether an alert already exists for the pair.
	Exists(ctx context.Context, clientID, url string) (bool, error)
	// Insert writes a new alert. The returned bool is false when the row
	// was skipped because of the uniqueness constraint.
	Insert(ctx context.Context, alert domain.Alert) (domain.Alert, bool, error)
	// DeleteOlderThan removes alerts fetched before the cutoff and returns
	// the number of deleted rows.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// MarkRead flips the read flag on a single alert.
	MarkRead(ctx context.Context, alertID string) error
	// List returns persisted alerts matching the filter, newest first.
	List(ctx context.Context, filter AlertFilter) ([]domain.Alert, error)
}

// ChatCompleter is the language-model collaborator. CompleteStructured
// returns the raw JSON content of a structured completion; CompleteText
// returns free text bounded by maxTokens.
type ChatCompleter interface {
	CompleteStructured(ctx context.Context, prompt string) ([]byte, error)
	CompleteText(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Mailer hands a rendered message to the email transport.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
