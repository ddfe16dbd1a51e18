// Package feeds normalizes configured RSS feeds into the common article
// shape, applying heuristic classification on the way in.
package feeds

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"newsdigest/internal/config"
	"newsdigest/internal/domain"
	"newsdigest/internal/heuristics"
	"newsdigest/internal/ports"
)

// DefaultPerFeedCap bounds how many of the newest items each feed contributes.
const DefaultPerFeedCap = 10

// Source fetches configured RSS feeds through gofeed.
type Source struct {
	parser     *gofeed.Parser
	feeds      []config.FeedConfig
	perFeedCap int
	logger     *slog.Logger
}

var _ ports.ArticleSource = (*Source)(nil)

// NewSource wires a parser against the configured feed list.
func NewSource(feeds []config.FeedConfig, logger *slog.Logger) *Source {
	return &Source{
		parser:     gofeed.NewParser(),
		feeds:      feeds,
		perFeedCap: DefaultPerFeedCap,
		logger:     logger,
	}
}

// FetchBatch walks every configured feed and aggregates articles. A single
// feed failing is logged and skipped; the batch carries whatever succeeded.
func (s *Source) FetchBatch(ctx context.Context) ([]domain.Article, error) {
	var aggregated []domain.Article

	for _, feed := range s.feeds {
		articles, err := s.fetchFeed(ctx, feed)
		if err != nil {
			s.warn("feed fetch failed", "feed", feed.Name, "url", feed.URL, "error", err)
			continue
		}
		s.debug("feed produced articles", "feed", feed.Name, "count", len(articles))
		aggregated = append(aggregated, articles...)
	}

	s.debug("fetch batch done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *Source) fetchFeed(ctx context.Context, feedCfg config.FeedConfig) ([]domain.Article, error) {
	feed, err := s.parser.ParseURLWithContext(feedCfg.URL, ctx)
	if err != nil {
		return nil, err
	}

	items := feed.Items
	if len(items) > s.perFeedCap {
		items = items[:s.perFeedCap]
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		article := itemToArticle(item, feedCfg)
		heuristics.Classify(&article)
		articles = append(articles, article)
	}

	return articles, nil
}

func itemToArticle(item *gofeed.Item, feedCfg config.FeedConfig) domain.Article {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}

	summary := stripHTML(item.Description)
	if summary == "" {
		summary = stripHTML(item.Content)
	}
	if summary == "" {
		summary = "No summary available"
	}

	publishedAt := time.Now().UTC()
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	}

	return domain.Article{
		Title:       title,
		Summary:     summary,
		URL:         item.Link,
		Source:      feedCfg.Name,
		PublishedAt: publishedAt,
		Category:    feedCfg.Category,
	}
}

// stripHTML reduces feed descriptions that arrive as HTML to plain text.
func stripHTML(s string) string {
	if s == "" || !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	return strings.TrimSpace(doc.Text())
}

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Source) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
