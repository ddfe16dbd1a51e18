package digest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain"
)

type fakeChat struct {
	text func(prompt string, maxTokens int) (string, error)
}

func (f *fakeChat) CompleteStructured(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeChat) CompleteText(_ context.Context, prompt string, maxTokens int) (string, error) {
	return f.text(prompt, maxTokens)
}

func scoredArticle(url string, score int, priority domain.Priority) domain.ScoredArticle {
	return domain.ScoredArticle{
		Article: domain.Article{
			Title:   "Headline for " + url,
			Summary: "Summary text",
			URL:     url,
			Source:  "example.com",
		},
		Score:    score,
		Priority: priority,
	}
}

func entry(clientID string, articles ...domain.ScoredArticle) domain.ClientDigestEntry {
	return domain.ClientDigestEntry{
		Client: domain.Client{ID: clientID, FirstName: "Test", LastName: clientID},
		Profile: domain.AlertProfile{
			ClientID: clientID,
			Keywords: []string{"tech stocks", "bonds"},
		},
		Articles: articles,
	}
}

func TestBuildFillsSummaries(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{text: func(prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "executive summary") {
			return "Two clients have actionable news today.", nil
		}
		return "Your portfolio interests saw notable movement.", nil
	}}

	a := NewAssembler(chat, nil)
	d := a.Build(context.Background(), []domain.ClientDigestEntry{
		entry("c1", scoredArticle("https://x.com/a1", 80, domain.PriorityHigh)),
		entry("c2", scoredArticle("https://x.com/a2", 65, domain.PriorityMedium)),
	})

	require.Len(t, d.Entries, 2)
	assert.Equal(t, "Your portfolio interests saw notable movement.", d.Entries[0].Summary)
	assert.Equal(t, "Two clients have actionable news today.", d.ExecutiveSummary)
	assert.False(t, d.GeneratedAt.IsZero())
}

func TestBuildFallbackSummariesOnError(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{text: func(string, int) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}}

	a := NewAssembler(chat, nil)
	d := a.Build(context.Background(), []domain.ClientDigestEntry{
		entry("c1",
			scoredArticle("https://x.com/a1", 80, domain.PriorityHigh),
			scoredArticle("https://x.com/a2", 70, domain.PriorityLow)),
	})

	require.Len(t, d.Entries, 1)
	assert.Equal(t, "We found 2 news article(s) matching your interests in tech stocks, bonds. Please review the details below.", d.Entries[0].Summary)
	assert.Equal(t, "Found 1 client(s) with matching alerts. Total 2 articles matched across all clients.", d.ExecutiveSummary)
}

func TestBuildFallbackOnBlankResponse(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{text: func(string, int) (string, error) {
		return "   ", nil
	}}

	a := NewAssembler(chat, nil)
	d := a.Build(context.Background(), []domain.ClientDigestEntry{
		entry("c1", scoredArticle("https://x.com/a1", 80, domain.PriorityHigh)),
	})

	assert.Contains(t, d.Entries[0].Summary, "We found 1 news article(s)")
}

func TestBuildEmptyEntries(t *testing.T) {
	t.Parallel()

	a := NewAssembler(&fakeChat{}, nil)
	d := a.Build(context.Background(), nil)

	assert.Empty(t, d.Entries)
	assert.Empty(t, d.ExecutiveSummary)
}

func TestTopArticlesDeduplicatesAcrossClients(t *testing.T) {
	t.Parallel()

	shared := scoredArticle("https://x.com/shared", 90, domain.PriorityHigh)
	entries := []domain.ClientDigestEntry{
		entry("c1", shared, scoredArticle("https://x.com/a1", 70, domain.PriorityMedium)),
		entry("c2", shared, scoredArticle("https://x.com/a2", 65, domain.PriorityLow)),
	}

	top := topArticles(entries)

	require.Len(t, top, 3)
	assert.Equal(t, "https://x.com/shared", top[0].Article.URL)
	assert.Equal(t, "https://x.com/a1", top[1].Article.URL)
	assert.Equal(t, "https://x.com/a2", top[2].Article.URL)
}

func TestTopArticlesCapped(t *testing.T) {
	t.Parallel()

	var articles []domain.ScoredArticle
	for i := 0; i < 2*executiveTopArticles; i++ {
		articles = append(articles, scoredArticle(fmt.Sprintf("https://x.com/a%d", i), 60, domain.PriorityLow))
	}

	top := topArticles([]domain.ClientDigestEntry{entry("c1", articles...)})
	assert.Len(t, top, executiveTopArticles)
}

func TestRenderContainsClientAndArticleDetails(t *testing.T) {
	t.Parallel()

	d := domain.Digest{
		Entries: []domain.ClientDigestEntry{
			entry("c1", scoredArticle("https://x.com/a1", 85, domain.PriorityHigh)),
		},
		ExecutiveSummary: "Markets moved today.",
	}
	d.Entries[0].Summary = "Personalized note."

	html, err := Render(d)
	require.NoError(t, err)

	assert.Contains(t, html, "Test c1")
	assert.Contains(t, html, "Headline for https://x.com/a1")
	assert.Contains(t, html, `href="https://x.com/a1"`)
	assert.Contains(t, html, "Relevance: 85/100")
	assert.Contains(t, html, "HIGH")
	assert.Contains(t, html, "#dc2626")
	assert.Contains(t, html, "Markets moved today.")
	assert.Contains(t, html, "Personalized note.")
}

func TestExcerptKeepsRuneBoundary(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("a", 199) + "€€"
	got := excerpt(s)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 199)+"...", got)
	assert.Equal(t, "short", excerpt("short"))
}

func TestSubject(t *testing.T) {
	t.Parallel()

	d := domain.Digest{
		Entries: []domain.ClientDigestEntry{
			entry("c1", scoredArticle("https://x.com/a1", 85, domain.PriorityHigh)),
			entry("c2",
				scoredArticle("https://x.com/a2", 70, domain.PriorityMedium),
				scoredArticle("https://x.com/a3", 65, domain.PriorityLow)),
		},
	}

	assert.Equal(t, "Client News Digest: 2 client(s), 3 alerts", Subject(d))
}
