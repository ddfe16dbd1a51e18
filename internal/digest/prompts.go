package digest

import (
	"fmt"
	"strings"

	"newsdigest/internal/domain"
)

func clientSummaryPrompt(entry domain.ClientDigestEntry) string {
	var b strings.Builder

	b.WriteString("You are a wealth management advisor preparing a personalized news digest for your client.\n\n")
	fmt.Fprintf(&b, "CLIENT: %s\n", entry.Client.FullName())
	if entry.Client.NetWorth > 0 {
		fmt.Fprintf(&b, "Net Worth: $%.0f\n", entry.Client.NetWorth)
	}
	interests := strings.Join(entry.Profile.Keywords, ", ")
	if interests == "" {
		interests = "General market news"
	}
	fmt.Fprintf(&b, "Interests: %s\n\n", interests)

	fmt.Fprintf(&b, "ARTICLES (%d total):\n", len(entry.Articles))
	for i, a := range entry.Articles {
		fmt.Fprintf(&b, "%d. [%s] %s\n   %s\n   Source: %s\n\n",
			i+1, strings.ToUpper(string(a.Priority)), a.Article.Title, a.Article.Summary, a.Article.Source)
	}

	b.WriteString(`TASK:
Write a concise, personalized summary (3-4 sentences) that:
1. Highlights the most important developments for THIS specific client
2. Explains why these articles matter to their portfolio/interests
3. Suggests any high-level considerations or opportunities

Write in a professional but conversational tone, as if speaking directly to the client.`)

	return b.String()
}

func executiveSummaryPrompt(entries []domain.ClientDigestEntry) string {
	var b strings.Builder

	b.WriteString("You are a wealth management advisor reviewing today's news alerts for your clients.\n\n")

	b.WriteString("CLIENT ALERT SUMMARY:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %d alerts (%d high priority)\n",
			e.Client.FullName(), len(e.Articles), e.HighPriorityCount())
	}

	b.WriteString("\nTOP ARTICLES TODAY:\n")
	for i, a := range topArticles(entries) {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, strings.ToUpper(string(a.Priority)), a.Article.Title)
	}

	b.WriteString(`
TASK:
Write a brief executive summary (4-5 sentences) that:
1. Highlights the key market themes/events from today's news
2. Notes which clients are most affected and why
3. Suggests any immediate actions or discussions needed
4. Maintains a professional advisory tone

This is for your own review to prepare for client conversations.`)

	return b.String()
}
