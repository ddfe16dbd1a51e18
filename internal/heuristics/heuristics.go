// Package heuristics applies cheap keyword-based classification to articles
// before any model involvement.
package heuristics

import (
	"strings"

	"newsdigest/internal/domain"
)

// Market-moving language checked first; routine-update language second.
var (
	highPriorityKeywords = []string{
		"breaking", "alert", "urgent", "major", "crisis",
		"crash", "surge", "plunge", "record", "historic",
		"fed", "rate cut", "rate hike", "emergency", "collapse",
	}

	mediumPriorityKeywords = []string{
		"report", "announce", "release", "update", "change",
		"new", "increase", "decrease", "growth", "decline",
		"sec", "regulation", "policy", "trillion", "billion",
	}
)

// Topic table kept deliberately broad so downstream matching errs toward
// inclusion; the model is the authority on true relevance.
var topicKeywords = map[string][]string{
	"stock":          {"stock", "equity", "equities", "shares", "market", "trading", "investor"},
	"bond":           {"bond", "treasury", "yield", "debt", "fixed income"},
	"real estate":    {"real estate", "property", "housing", "reit", "commercial", "residential"},
	"tech":           {"tech", "technology", "software", "ai", "artificial intelligence", "startup", "innovation", "digital"},
	"energy":         {"energy", "oil", "gas", "solar", "renewable", "power", "utilities"},
	"finance":        {"bank", "banking", "financial", "credit", "lending", "jpmorgan", "goldman", "wells fargo", "citibank", "fintech"},
	"crypto":         {"crypto", "cryptocurrency", "bitcoin", "blockchain", "ethereum", "binance", "digital asset"},
	"esg":            {"esg", "sustainable", "sustainability", "green", "climate", "environmental", "social", "governance"},
	"regulation":     {"sec", "regulatory", "regulation", "compliance", "policy", "law", "rule"},
	"economic":       {"fed", "federal reserve", "interest rate", "inflation", "gdp", "economy", "economic"},
	"private equity": {"private equity", "pe", "venture capital", "vc", "buyout", "acquisition"},
	"healthcare":     {"healthcare", "pharma", "biotech", "medical", "drug"},
	"consumer":       {"retail", "consumer", "e-commerce", "amazon", "walmart"},
	"global":         {"china", "europe", "asia", "global", "international", "trade"},
}

// topicOrder keeps tag output deterministic.
var topicOrder = []string{
	"stock", "bond", "real estate", "tech", "energy", "finance", "crypto",
	"esg", "regulation", "economic", "private equity", "healthcare",
	"consumer", "global",
}

// Priority classifies title+summary against the ordered keyword sets.
func Priority(title, summary string) domain.Priority {
	text := strings.ToLower(title + " " + summary)

	for _, kw := range highPriorityKeywords {
		if strings.Contains(text, kw) {
			return domain.PriorityHigh
		}
	}

	for _, kw := range mediumPriorityKeywords {
		if strings.Contains(text, kw) {
			return domain.PriorityMedium
		}
	}

	return domain.PriorityLow
}

// Tags returns every topic with at least one keyword match. An article may
// carry multiple tags.
func Tags(title, summary string) []string {
	text := strings.ToLower(title + " " + summary)

	var tags []string
	for _, topic := range topicOrder {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(text, kw) {
				tags = append(tags, topic)
				break
			}
		}
	}

	return tags
}

// Classify fills the heuristic priority and tags on an article in place.
func Classify(article *domain.Article) {
	article.Priority = Priority(article.Title, article.Summary)
	article.Tags = Tags(article.Title, article.Summary)
}
