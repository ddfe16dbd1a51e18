// Package digest aggregates per-client alerts from one pipeline run into a
// single advisor-facing digest with generated summaries.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const (
	clientSummaryMaxTokens    = 200
	executiveSummaryMaxTokens = 250
	executiveTopArticles      = 10
)

// Assembler builds the combined digest, delegating prose to the language
// model and falling back to templated text when generation fails.
type Assembler struct {
	chat   ports.ChatCompleter
	logger *slog.Logger
}

// NewAssembler wires the chat collaborator.
func NewAssembler(chat ports.ChatCompleter, logger *slog.Logger) *Assembler {
	return &Assembler{chat: chat, logger: logger}
}

// Build fills per-client summaries and the executive summary for the given
// entries. Entries are expected to each hold at least one article; clients
// without relevant articles never reach the assembler.
func (a *Assembler) Build(ctx context.Context, entries []domain.ClientDigestEntry) domain.Digest {
	for i := range entries {
		entries[i].Summary = a.clientSummary(ctx, entries[i])
	}

	return domain.Digest{
		Entries:          entries,
		ExecutiveSummary: a.executiveSummary(ctx, entries),
		GeneratedAt:      time.Now(),
	}
}

func (a *Assembler) clientSummary(ctx context.Context, entry domain.ClientDigestEntry) string {
	summary, err := a.chat.CompleteText(ctx, clientSummaryPrompt(entry), clientSummaryMaxTokens)
	if err != nil || strings.TrimSpace(summary) == "" {
		a.warn("client summary generation failed", "client", entry.Client.ID, "error", err)
		return fallbackClientSummary(entry)
	}
	return summary
}

func (a *Assembler) executiveSummary(ctx context.Context, entries []domain.ClientDigestEntry) string {
	if len(entries) == 0 {
		return ""
	}

	summary, err := a.chat.CompleteText(ctx, executiveSummaryPrompt(entries), executiveSummaryMaxTokens)
	if err != nil || strings.TrimSpace(summary) == "" {
		a.warn("executive summary generation failed", "clients", len(entries), "error", err)
		return fallbackExecutiveSummary(entries)
	}
	return summary
}

func fallbackClientSummary(entry domain.ClientDigestEntry) string {
	interests := strings.Join(entry.Profile.Keywords, ", ")
	if interests == "" {
		interests = "market news"
	}
	return fmt.Sprintf("We found %d news article(s) matching your interests in %s. Please review the details below.",
		len(entry.Articles), interests)
}

func fallbackExecutiveSummary(entries []domain.ClientDigestEntry) string {
	total := 0
	for _, e := range entries {
		total += len(e.Articles)
	}
	return fmt.Sprintf("Found %d client(s) with matching alerts. Total %d articles matched across all clients.",
		len(entries), total)
}

// topArticles deduplicates across clients by URL, preserving accumulation
// order, and returns at most executiveTopArticles entries. An article
// surfaced for several clients is represented once.
func topArticles(entries []domain.ClientDigestEntry) []domain.ScoredArticle {
	seen := map[string]struct{}{}
	var top []domain.ScoredArticle

	for _, entry := range entries {
		for _, article := range entry.Articles {
			if _, ok := seen[article.Article.URL]; ok {
				continue
			}
			seen[article.Article.URL] = struct{}{}
			top = append(top, article)
			if len(top) == executiveTopArticles {
				return top
			}
		}
	}

	return top
}

func (a *Assembler) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
