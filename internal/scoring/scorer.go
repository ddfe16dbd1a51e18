// Package scoring wraps the language-model collaborator into a per-client
// relevance scorer with rate limiting and a safe fallback.
package scoring

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const (
	// DefaultMinScore is the relevance cutoff on the canonical 0-100 scale.
	DefaultMinScore = 60

	fallbackScore     = 50
	fallbackCategory  = "Market News"
	fallbackReasoning = "Automatic analysis was unavailable; kept for manual review."
)

// Scorer evaluates (article, client) pairs through a ChatCompleter.
type Scorer struct {
	chat     ports.ChatCompleter
	limiter  *rate.Limiter
	minScore int
	logger   *slog.Logger
}

// Option adjusts scorer construction.
type Option func(*Scorer)

// WithMinScore overrides the relevance cutoff.
func WithMinScore(min int) Option {
	return func(s *Scorer) {
		if min > 0 {
			s.minScore = min
		}
	}
}

// WithRateLimit paces model calls; rps of zero or less disables pacing.
func WithRateLimit(rps float64) Option {
	return func(s *Scorer) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
}

// New builds a scorer with a default 2 req/s pace.
func New(chat ports.ChatCompleter, logger *slog.Logger, opts ...Option) *Scorer {
	s := &Scorer{
		chat:     chat,
		limiter:  rate.NewLimiter(rate.Limit(2), 1),
		minScore: DefaultMinScore,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MinScore exposes the configured relevance cutoff.
func (s *Scorer) MinScore() int {
	return s.minScore
}

// modelAnalysis mirrors the JSON shape the prompt asks for.
type modelAnalysis struct {
	RelevanceScore int      `json:"relevance_score"`
	Priority       string   `json:"priority"`
	Category       string   `json:"category"`
	Reasoning      string   `json:"reasoning"`
	KeyInsights    string   `json:"key_insights"`
	ActionItems    string   `json:"action_items"`
	Tags           []string `json:"tags"`
}

// ScoreBatch evaluates the articles for one client sequentially, respecting
// the rate limiter, and returns the scored set sorted by score descending.
// Individual failures degrade to the fallback value and never abort the batch.
func (s *Scorer) ScoreBatch(ctx context.Context, articles []domain.Article, client domain.Client, profile domain.AlertProfile) []domain.ScoredArticle {
	scored := make([]domain.ScoredArticle, 0, len(articles))

	for _, article := range articles {
		if err := s.limiter.Wait(ctx); err != nil {
			scored = append(scored, fallback(article))
			continue
		}
		scored = append(scored, s.scoreOne(ctx, article, client, profile))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Relevant keeps only scored articles at or above the cutoff.
func (s *Scorer) Relevant(scored []domain.ScoredArticle) []domain.ScoredArticle {
	relevant := make([]domain.ScoredArticle, 0, len(scored))
	for _, a := range scored {
		if a.Score >= s.minScore {
			relevant = append(relevant, a)
		}
	}
	return relevant
}

func (s *Scorer) scoreOne(ctx context.Context, article domain.Article, client domain.Client, profile domain.AlertProfile) domain.ScoredArticle {
	raw, err := s.chat.CompleteStructured(ctx, relevancePrompt(article, client, profile))
	if err != nil {
		s.warn("relevance call failed", "url", article.URL, "client", client.ID, "error", err)
		return fallback(article)
	}

	var analysis modelAnalysis
	if err := json.Unmarshal(extractJSON(raw), &analysis); err != nil {
		s.warn("unparsable relevance response", "url", article.URL, "client", client.ID, "error", err)
		return fallback(article)
	}

	result := domain.ScoredArticle{
		Article:     article,
		Score:       clampScore(analysis.RelevanceScore),
		Priority:    domain.ParsePriority(analysis.Priority),
		Category:    analysis.Category,
		Reasoning:   analysis.Reasoning,
		KeyInsights: analysis.KeyInsights,
		ActionItems: analysis.ActionItems,
		Tags:        analysis.Tags,
	}

	if result.Category == "" {
		result.Category = article.Category
	}
	if len(result.Tags) == 0 {
		result.Tags = article.Tags
	}

	return result
}

// fallback is the safe default used when the model call fails or returns
// garbage: mid-range score, medium priority, generic category.
func fallback(article domain.Article) domain.ScoredArticle {
	return domain.ScoredArticle{
		Article:     article,
		Score:       fallbackScore,
		Priority:    domain.PriorityMedium,
		Category:    fallbackCategory,
		Reasoning:   fallbackReasoning,
		KeyInsights: truncate(article.Summary, 150),
		Tags:        []string{"financial", "market"},
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// truncate caps s at max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// extractJSON tolerates models that wrap the object in markdown fences.
func extractJSON(raw []byte) []byte {
	text := strings.TrimSpace(string(raw))

	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+3:]
	}

	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}

	return []byte(strings.TrimSpace(text))
}

func (s *Scorer) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
