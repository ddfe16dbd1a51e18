// Package prefilter narrows the article set per client before the expensive
// scoring step. It is deliberately conservative: the scorer is the authority
// on true relevance, so the filter only drops what the profile plainly
// excludes.
package prefilter

import (
	"strings"

	"newsdigest/internal/domain"
)

// DefaultMaxArticles caps how many articles survive into scoring.
const DefaultMaxArticles = 15

// Select returns the articles passing the profile's exclusion list, priority
// floor, and category set, capped to max in source order. A max of zero or
// less applies DefaultMaxArticles.
func Select(articles []domain.Article, profile domain.AlertProfile, max int) []domain.Article {
	if max <= 0 {
		max = DefaultMaxArticles
	}

	passed := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if !Passes(article, profile) {
			continue
		}
		passed = append(passed, article)
		if len(passed) == max {
			break
		}
	}

	return passed
}

// Passes reports whether a single article survives the profile's
// deterministic filters.
func Passes(article domain.Article, profile domain.AlertProfile) bool {
	if ContainsExcluded(article, profile.ExcludedKeywords) {
		return false
	}

	if article.Priority.Rank() < profile.PriorityThreshold.Rank() {
		return false
	}

	return categoryEnabled(article.Category, profile.CategoriesEnabled)
}

// ContainsExcluded reports whether the article's title or summary contains
// any of the excluded keywords, case-insensitively. Exclusion is absolute:
// no downstream score can resurrect an excluded article.
func ContainsExcluded(article domain.Article, excluded []string) bool {
	if len(excluded) == 0 {
		return false
	}

	title := strings.ToLower(article.Title)
	summary := strings.ToLower(article.Summary)

	for _, kw := range excluded {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) || strings.Contains(summary, kw) {
			return true
		}
	}

	return false
}

// An empty enabled set means every category passes.
func categoryEnabled(category string, enabled []string) bool {
	if len(enabled) == 0 {
		return true
	}

	for _, c := range enabled {
		if strings.EqualFold(c, category) {
			return true
		}
	}

	return false
}
