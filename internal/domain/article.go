package domain

import "time"

// Priority classifies how urgent an article is for advisory attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank maps priorities onto the ordinal scale low(1) < medium(2) < high(3).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority normalizes free-form priority strings, defaulting to low.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s)
	default:
		return PriorityLow
	}
}

// Article is a normalized news item produced by a source adapter.
// Identity is the URL; Priority and Tags carry the cheap keyword-based
// classification applied before any model involvement.
type Article struct {
	Title       string
	Summary     string
	URL         string
	Source      string
	PublishedAt time.Time
	Category    string
	Priority    Priority
	Tags        []string
}

// ScoredArticle is an Article evaluated against one specific client.
// The same article yields independent ScoredArticle values per client.
type ScoredArticle struct {
	Article     Article
	Score       int
	Priority    Priority
	Category    string
	Reasoning   string
	KeyInsights string
	ActionItems string
	Tags        []string
}

// Alert is the persisted record of an article surfaced to a client.
// At most one row exists per (ClientID, URL) pair.
type Alert struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	Priority    Priority  `json:"priority"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Score       int       `json:"relevanceScore"`
	Reasoning   string    `json:"reasoning"`
	IsRead      bool      `json:"isRead"`
	FetchedAt   time.Time `json:"fetchedAt"`
}
