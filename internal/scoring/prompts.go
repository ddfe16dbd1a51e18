package scoring

import (
	"fmt"
	"strings"

	"newsdigest/internal/domain"
)

func relevancePrompt(article domain.Article, client domain.Client, profile domain.AlertProfile) string {
	var b strings.Builder

	b.WriteString("You are a wealth management advisor analyzing news relevance for a high-net-worth client.\n\n")

	b.WriteString("CLIENT PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", client.FullName())
	fmt.Fprintf(&b, "- Net Worth: %s\n", orNA(formatNetWorth(client.NetWorth)))
	fmt.Fprintf(&b, "- Investment Interests: %s\n", orDefault(strings.Join(profile.Keywords, ", "), "General market news"))
	fmt.Fprintf(&b, "- Risk Tolerance: %s\n", orDefault(client.Profile.RiskTolerance, "Moderate"))
	fmt.Fprintf(&b, "- Portfolio Focus: %s\n", orDefault(strings.Join(profile.CategoriesEnabled, ", "), "Diversified"))
	fmt.Fprintf(&b, "- Holdings: %s\n", orNA(strings.Join(client.Profile.Holdings, ", ")))
	fmt.Fprintf(&b, "- Age: %s\n", orNA(formatAge(client.Age)))
	fmt.Fprintf(&b, "- Occupation: %s\n\n", orNA(client.Occupation))

	b.WriteString("ARTICLE:\n")
	fmt.Fprintf(&b, "Title: %s\n", article.Title)
	fmt.Fprintf(&b, "Summary: %s\n", article.Summary)
	fmt.Fprintf(&b, "Source: %s\n", article.Source)
	fmt.Fprintf(&b, "Category: %s\n\n", article.Category)

	b.WriteString(`TASK:
Analyze how relevant this article is to this client's financial interests and portfolio.

IMPORTANT: Consider BOTH direct and indirect relevance:
- Direct: Article explicitly mentions client's interests (e.g., "tech stocks" for tech investor)
- Indirect: Article affects client's interests indirectly (e.g., "federal agriculture policy changes" affects agritech investor, "banking regulations" affect fintech investor, "interest rate changes" affect real estate investor)

Think broadly about:
1. How this news could impact their portfolio or investments
2. Regulatory/policy changes that affect their industry
3. Market trends that influence their holdings
4. Economic conditions affecting their wealth strategy

Be generous with relevance scores for indirect but meaningful connections.

Respond in JSON format:
{
  "relevance_score": <number 0-100>,
  "priority": "high|medium|low",
  "category": "<category name>",
  "reasoning": "<brief explanation of direct OR indirect relevance>",
  "key_insights": "<1-2 sentence summary of what the client should know>",
  "action_items": "<optional: any recommended actions>",
  "tags": ["tag1", "tag2", "tag3"]
}`)

	return b.String()
}

func orNA(s string) string {
	return orDefault(s, "N/A")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func formatNetWorth(v float64) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("$%.0f", v)
}

func formatAge(age int) string {
	if age <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", age)
}
