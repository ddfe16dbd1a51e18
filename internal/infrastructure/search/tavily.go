// Package search adapts a Tavily-style news search API into a per-client
// article source.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsdigest/internal/config"
	"newsdigest/internal/domain"
	"newsdigest/internal/heuristics"
	"newsdigest/internal/ports"
)

// Search-sourced articles carry no feed category; they are treated as
// market news for pre-filtering.
const searchCategory = "market"

const querySuffix = "(investment OR market OR financial OR wealth management)"

// TavilyClient talks to the search collaborator over JSON HTTP.
type TavilyClient struct {
	baseURL        string
	apiKey         string
	recencyDays    int
	maxResults     int
	includeDomains []string
	httpClient     *http.Client
	logger         *slog.Logger
}

var _ ports.ClientSearcher = (*TavilyClient)(nil)

// NewTavilyClient creates a reusable client from configuration.
func NewTavilyClient(cfg config.TavilyConfig, logger *slog.Logger) *TavilyClient {
	return &TavilyClient{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		recencyDays:    cfg.RecencyDays,
		maxResults:     cfg.MaxResults,
		includeDomains: cfg.IncludeDomains,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		logger:         logger,
	}
}

type searchRequest struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	Topic             string   `json:"topic"`
	Days              int      `json:"days"`
	MaxResults        int      `json:"max_results"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
}

type searchResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	PublishedDate string `json:"published_date"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// SearchForClient builds a query from the client's profile terms and returns
// normalized articles restricted to the reputable-domain allow-list.
func (c *TavilyClient) SearchForClient(ctx context.Context, client domain.Client) ([]domain.Article, error) {
	query := BuildQuery(client.Profile)
	if query == "" {
		return nil, nil
	}

	c.debug("searching news for client", "client", client.ID, "query", query)

	results, err := c.search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search for client %s: %w", client.ID, err)
	}

	articles := make([]domain.Article, 0, len(results))
	for _, r := range results {
		article := resultToArticle(r)
		heuristics.Classify(&article)
		articles = append(articles, article)
	}

	return articles, nil
}

// BuildQuery combines up to three interests, two holdings, and two profile
// tags with a fixed financial-context suffix.
func BuildQuery(profile domain.InvestorProfile) string {
	terms := make([]string, 0, 7)
	terms = append(terms, firstN(profile.Interests, 3)...)
	terms = append(terms, firstN(profile.Holdings, 2)...)
	terms = append(terms, firstN(profile.Tags, 2)...)

	if len(terms) == 0 {
		return ""
	}

	return strings.Join(terms, " OR ") + " " + querySuffix
}

func (c *TavilyClient) search(ctx context.Context, query string) ([]searchResult, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:         c.apiKey,
		Query:          query,
		SearchDepth:    "advanced",
		Topic:          "news",
		Days:           c.recencyDays,
		MaxResults:     c.maxResults,
		IncludeDomains: c.includeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return parsed.Results, nil
}

func resultToArticle(r searchResult) domain.Article {
	publishedAt := time.Now().UTC()
	if r.PublishedDate != "" {
		if parsed, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
			publishedAt = parsed
		}
	}

	return domain.Article{
		Title:       r.Title,
		Summary:     r.Content,
		URL:         r.URL,
		Source:      hostOf(r.URL),
		PublishedAt: publishedAt,
		Category:    searchCategory,
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (c *TavilyClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
