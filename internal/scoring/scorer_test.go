package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain"
)

type fakeChat struct {
	structured func(prompt string) ([]byte, error)
}

func (f *fakeChat) CompleteStructured(_ context.Context, prompt string) ([]byte, error) {
	return f.structured(prompt)
}

func (f *fakeChat) CompleteText(context.Context, string, int) (string, error) {
	return "", fmt.Errorf("not used")
}

func testClient() domain.Client {
	return domain.Client{ID: "c1", FirstName: "Ada", LastName: "Lovelace"}
}

func testArticle(url string) domain.Article {
	return domain.Article{
		Title:    "Fed signals emergency rate cut",
		Summary:  "Markets react to the surprise announcement.",
		URL:      url,
		Category: "market",
		Priority: domain.PriorityHigh,
		Tags:     []string{"economic"},
	}
}

func TestScoreBatchParsesResponse(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{structured: func(string) ([]byte, error) {
		return []byte(`{"relevance_score": 85, "priority": "high", "category": "Economic Policy",
			"reasoning": "Rate moves affect the portfolio.", "key_insights": "Expect volatility.",
			"tags": ["rates", "fed"]}`), nil
	}}

	s := New(chat, nil, WithRateLimit(0))
	scored := s.ScoreBatch(context.Background(), []domain.Article{testArticle("https://x.com/a1")}, testClient(), domain.AlertProfile{})

	require.Len(t, scored, 1)
	assert.Equal(t, 85, scored[0].Score)
	assert.Equal(t, domain.PriorityHigh, scored[0].Priority)
	assert.Equal(t, "Economic Policy", scored[0].Category)
	assert.Equal(t, []string{"rates", "fed"}, scored[0].Tags)
}

func TestScoreBatchToleratesMarkdownFences(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{structured: func(string) ([]byte, error) {
		return []byte("```json\n{\"relevance_score\": 70, \"priority\": \"medium\"}\n```"), nil
	}}

	s := New(chat, nil, WithRateLimit(0))
	scored := s.ScoreBatch(context.Background(), []domain.Article{testArticle("https://x.com/a1")}, testClient(), domain.AlertProfile{})

	require.Len(t, scored, 1)
	assert.Equal(t, 70, scored[0].Score)
	assert.Equal(t, domain.PriorityMedium, scored[0].Priority)
}

func TestScoreBatchFallbackOnError(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{structured: func(string) ([]byte, error) {
		return nil, fmt.Errorf("model unavailable")
	}}

	s := New(chat, nil, WithRateLimit(0))
	articles := []domain.Article{testArticle("https://x.com/a1"), testArticle("https://x.com/a2"), testArticle("https://x.com/a3")}
	scored := s.ScoreBatch(context.Background(), articles, testClient(), domain.AlertProfile{})

	require.Len(t, scored, 3)
	for _, sa := range scored {
		assert.Equal(t, fallbackScore, sa.Score)
		assert.Equal(t, domain.PriorityMedium, sa.Priority)
		assert.Equal(t, fallbackCategory, sa.Category)
		assert.NotEmpty(t, sa.Reasoning)
	}
}

func TestScoreBatchFallbackOnGarbage(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{structured: func(string) ([]byte, error) {
		return []byte("I could not analyze this article."), nil
	}}

	s := New(chat, nil, WithRateLimit(0))
	scored := s.ScoreBatch(context.Background(), []domain.Article{testArticle("https://x.com/a1")}, testClient(), domain.AlertProfile{})

	require.Len(t, scored, 1)
	assert.Equal(t, fallbackScore, scored[0].Score)
}

func TestScoreBatchSortsDescending(t *testing.T) {
	t.Parallel()

	scores := map[string]int{
		"https://x.com/a1": 40,
		"https://x.com/a2": 90,
		"https://x.com/a3": 65,
	}

	i := 0
	order := []string{"https://x.com/a1", "https://x.com/a2", "https://x.com/a3"}
	chat := &fakeChat{structured: func(string) ([]byte, error) {
		raw, _ := json.Marshal(map[string]any{"relevance_score": scores[order[i]], "priority": "low"})
		i++
		return raw, nil
	}}

	var articles []domain.Article
	for _, u := range order {
		articles = append(articles, testArticle(u))
	}

	s := New(chat, nil, WithRateLimit(0))
	scored := s.ScoreBatch(context.Background(), articles, testClient(), domain.AlertProfile{})

	require.Len(t, scored, 3)
	assert.Equal(t, 90, scored[0].Score)
	assert.Equal(t, 65, scored[1].Score)
	assert.Equal(t, 40, scored[2].Score)
}

func TestRelevantAppliesCutoff(t *testing.T) {
	t.Parallel()

	s := New(&fakeChat{}, nil, WithMinScore(60))

	scored := []domain.ScoredArticle{
		{Score: 59},
		{Score: 60},
		{Score: 80},
	}

	relevant := s.Relevant(scored)
	require.Len(t, relevant, 2)
	assert.Equal(t, 60, relevant[0].Score)
	assert.Equal(t, 80, relevant[1].Score)
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("a", 149) + "€"
	got := truncate(s, 150)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 149), got)
	assert.Equal(t, "short", truncate("short", 150))
}

func TestFallbackInsightsValidUTF8(t *testing.T) {
	t.Parallel()

	article := testArticle("https://x.com/a1")
	article.Summary = strings.Repeat("é", 120)

	fb := fallback(article)
	assert.True(t, utf8.ValidString(fb.KeyInsights))
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, clampScore(-5))
	assert.Equal(t, 100, clampScore(250))
	assert.Equal(t, 42, clampScore(42))
}

func TestRelevancePromptMentionsIndirectRelevance(t *testing.T) {
	t.Parallel()

	prompt := relevancePrompt(testArticle("https://x.com/a1"), testClient(), domain.AlertProfile{
		Keywords: []string{"real estate", "bonds"},
	})

	assert.Contains(t, prompt, "indirect")
	assert.Contains(t, prompt, "real estate, bonds")
	assert.Contains(t, prompt, "Fed signals emergency rate cut")
}
