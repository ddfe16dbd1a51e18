package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsdigest/internal/digest"
	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
	"newsdigest/internal/prefilter"
	"newsdigest/internal/scoring"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source       ports.ArticleSource
	Searcher     ports.ClientSearcher
	Directory    ports.ClientDirectory
	Store        ports.AlertStore
	Scorer       *scoring.Scorer
	Assembler    *digest.Assembler
	Mailer       ports.Mailer
	AdvisorEmail string
	MaxPerClient int
	RetentionAge time.Duration
	Logger       *slog.Logger
}

// Pipeline implements the news relevance workflow: fetch, pre-filter per
// client, score, dedupe-and-persist, digest, deliver.
type Pipeline struct {
	source       ports.ArticleSource
	searcher     ports.ClientSearcher
	directory    ports.ClientDirectory
	store        ports.AlertStore
	scorer       *scoring.Scorer
	assembler    *digest.Assembler
	mailer       ports.Mailer
	advisorEmail string
	maxPerClient int
	retentionAge time.Duration
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	maxPerClient := deps.MaxPerClient
	if maxPerClient <= 0 {
		maxPerClient = prefilter.DefaultMaxArticles
	}

	retention := deps.RetentionAge
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	return &Pipeline{
		source:       deps.Source,
		searcher:     deps.Searcher,
		directory:    deps.Directory,
		store:        deps.Store,
		scorer:       deps.Scorer,
		assembler:    deps.Assembler,
		mailer:       deps.Mailer,
		advisorEmail: deps.AdvisorEmail,
		maxPerClient: maxPerClient,
		retentionAge: retention,
		logger:       deps.Logger,
	}
}

// Run executes one full pipeline pass. Everything persisted stays persisted
// regardless of downstream failures; only a client-directory failure aborts
// the run. Concurrent runs are tolerated through the store's uniqueness
// constraint rather than a lock.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	var summary domain.RunSummary

	batch, err := p.source.FetchBatch(ctx)
	if err != nil {
		// Source failures are already isolated per feed; an error here
		// means nothing succeeded. Continue with search-only coverage.
		p.warn("feed batch failed", "error", err)
	}
	summary.ArticlesFetched = len(batch)

	pairs, err := p.directory.ListWithActiveProfiles(ctx)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("list clients: %w", err)
	}

	p.info("run started", "articles", len(batch), "clients", len(pairs))

	var entries []domain.ClientDigestEntry
	for _, pair := range pairs {
		entry, saved := p.processClient(ctx, batch, pair)
		summary.ArticlesSaved += saved
		if len(entry.Articles) > 0 {
			entries = append(entries, entry)
		}
	}

	summary.ClientsWithAlerts = len(entries)
	for _, e := range entries {
		summary.TotalAlerts += len(e.Articles)
	}

	if len(entries) == 0 {
		p.info("run finished, no relevant alerts")
		return summary, nil
	}

	built := p.assembler.Build(ctx, entries)
	summary.DigestGenerated = true

	p.deliver(ctx, built, &summary)

	p.info("run finished",
		"saved", summary.ArticlesSaved,
		"clients_with_alerts", summary.ClientsWithAlerts,
		"total_alerts", summary.TotalAlerts,
		"email_sent", summary.EmailSent)

	return summary, nil
}

// processClient narrows, scores, and persists articles for one client.
// Failures here never abort the run; the client simply contributes nothing.
func (p *Pipeline) processClient(ctx context.Context, batch []domain.Article, pair domain.ClientAlertPair) (domain.ClientDigestEntry, int) {
	entry := domain.ClientDigestEntry{Client: pair.Client, Profile: pair.Profile}

	articles := batch
	if p.searcher != nil {
		found, err := p.searcher.SearchForClient(ctx, pair.Client)
		if err != nil {
			p.warn("client search failed", "client", pair.Client.ID, "error", err)
		} else {
			articles = mergeByURL(batch, found)
		}
	}

	candidates := prefilter.Select(articles, pair.Profile, p.maxPerClient)
	if len(candidates) == 0 {
		p.debug("no articles passed pre-filter", "client", pair.Client.ID)
		return entry, 0
	}

	scored := p.scorer.ScoreBatch(ctx, candidates, pair.Client, pair.Profile)
	relevant := p.scorer.Relevant(scored)
	if len(relevant) == 0 {
		p.debug("no articles passed relevance threshold", "client", pair.Client.ID)
		return entry, 0
	}

	saved := 0
	for _, article := range relevant {
		inserted, err := p.persist(ctx, pair.Client.ID, article)
		if err != nil {
			p.warn("persist alert failed", "client", pair.Client.ID, "url", article.Article.URL, "error", err)
			continue
		}
		if inserted {
			saved++
			entry.Articles = append(entry.Articles, article)
		}
	}

	return entry, saved
}

// persist runs the deduplication gate for one (client, url) pair. The
// pre-check only serves logging; the insert's conflict clause is what makes
// the gate atomic.
func (p *Pipeline) persist(ctx context.Context, clientID string, scored domain.ScoredArticle) (bool, error) {
	exists, err := p.store.Exists(ctx, clientID, scored.Article.URL)
	if err != nil {
		return false, err
	}
	if exists {
		p.debug("alert already exists", "client", clientID, "url", scored.Article.URL)
		return false, nil
	}

	alert := domain.Alert{
		ClientID:    clientID,
		Title:       scored.Article.Title,
		Summary:     scored.Article.Summary,
		URL:         scored.Article.URL,
		Source:      scored.Article.Source,
		PublishedAt: scored.Article.PublishedAt,
		Priority:    scored.Priority,
		Category:    scored.Category,
		Tags:        scored.Tags,
		Score:       scored.Score,
		Reasoning:   scored.Reasoning,
	}

	_, inserted, err := p.store.Insert(ctx, alert)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// deliver renders and sends the digest. Delivery failure is recorded in the
// summary; persisted alerts are never rolled back or retried.
func (p *Pipeline) deliver(ctx context.Context, d domain.Digest, summary *domain.RunSummary) {
	if p.mailer == nil || p.advisorEmail == "" {
		p.debug("delivery skipped, no mailer configured")
		return
	}

	html, err := digest.Render(d)
	if err != nil {
		summary.EmailError = err.Error()
		p.warn("digest render failed", "error", err)
		return
	}

	if err := p.mailer.Send(ctx, p.advisorEmail, digest.Subject(d), html); err != nil {
		summary.EmailError = err.Error()
		p.warn("digest delivery failed", "error", err)
		return
	}

	summary.EmailSent = true
}

// mergeByURL appends extras that are not already in the batch by URL.
func mergeByURL(batch, extras []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(batch))
	for _, a := range batch {
		seen[a.URL] = struct{}{}
	}

	merged := append([]domain.Article(nil), batch...)
	for _, a := range extras {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		merged = append(merged, a)
	}

	return merged
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
