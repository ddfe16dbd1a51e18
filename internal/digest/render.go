package digest

import (
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"newsdigest/internal/domain"
)

// Subject produces the advisor email subject line for a digest.
func Subject(d domain.Digest) string {
	return fmt.Sprintf("Client News Digest: %d client(s), %d alerts", len(d.Entries), d.TotalAlerts())
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"upper":         strings.ToUpper,
	"priorityColor": priorityColor,
	"priorityBg":    priorityBackground,
	"excerpt":       excerpt,
}).Parse(`<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Arial, sans-serif; margin: 0; padding: 20px; background: #f3f4f6;">
<div style="max-width: 800px; margin: 0 auto;">
  <div style="background: #0A1929; padding: 30px; border-radius: 12px 12px 0 0; text-align: center;">
    <h1 style="color: white; margin: 0 0 10px; font-size: 28px; font-weight: 600;">Client News Alerts Digest</h1>
    <p style="color: rgba(255,255,255,0.8); margin: 0; font-size: 14px;">{{.GeneratedAt.Format "Monday, January 2, 2006"}}</p>
  </div>

  <div style="background: white; padding: 20px; border-bottom: 1px solid #e5e7eb; text-align: center;">
    <span style="margin: 0 20px;"><strong style="font-size: 24px; color: #0A1929;">{{len .Entries}}</strong> <span style="font-size: 12px; color: #666;">Clients</span></span>
    <span style="margin: 0 20px;"><strong style="font-size: 24px; color: #0A1929;">{{.TotalAlerts}}</strong> <span style="font-size: 12px; color: #666;">Total Alerts</span></span>
    <span style="margin: 0 20px;"><strong style="font-size: 24px; color: #dc2626;">{{.HighPriorityAlerts}}</strong> <span style="font-size: 12px; color: #666;">High Priority</span></span>
  </div>

  {{if .ExecutiveSummary}}
  <div style="background: white; padding: 25px; border-bottom: 3px solid #667eea;">
    <h3 style="color: #0A1929; margin: 0 0 15px; font-size: 16px;">Executive Summary</h3>
    <div style="font-size: 14px; color: #374151; line-height: 1.8;">{{.ExecutiveSummary}}</div>
  </div>
  {{end}}

  <div style="background: #fafafa; padding: 25px;">
  {{range .Entries}}
    <div style="margin-bottom: 35px; padding: 20px; background: white; border-radius: 8px; border: 1px solid #e5e7eb;">
      <h2 style="color: #0A1929; margin: 0 0 10px; font-size: 18px;">
        {{.Client.FullName}}
        <span style="font-size: 14px; color: #666; font-weight: normal;">({{len .Articles}} alert{{if ne (len .Articles) 1}}s{{end}})</span>
      </h2>
      {{if .Summary}}
      <div style="margin-bottom: 20px; padding: 15px; background: #667eea; border-radius: 6px; color: white;">
        <div style="font-size: 12px; font-weight: bold; margin-bottom: 8px; opacity: 0.9;">PERSONALIZED SUMMARY</div>
        <div style="font-size: 13px; line-height: 1.6;">{{.Summary}}</div>
      </div>
      {{end}}
      {{range .Articles}}
      <div style="margin-bottom: 15px; padding: 12px; background: #f9f9f9; border-radius: 6px; border-left: 3px solid {{priorityColor .Priority}};">
        <div style="margin-bottom: 6px;">
          <h4 style="margin: 0; color: #0A1929; font-size: 14px; display: inline;">{{.Article.Title}}</h4>
          <span style="font-size: 11px; font-weight: bold; padding: 2px 8px; border-radius: 12px; background: {{priorityBg .Priority}}; color: {{priorityColor .Priority}}; white-space: nowrap; margin-left: 8px;">{{upper (printf "%s" .Priority)}}</span>
        </div>
        <div style="margin-bottom: 8px; padding: 6px 8px; background: #e0f2fe; border-radius: 4px;">
          <div style="font-size: 11px; color: #0369a1; font-weight: bold; margin-bottom: 3px;">Relevance: {{.Score}}/100</div>
          <div style="font-size: 11px; color: #075985;">{{if .KeyInsights}}{{.KeyInsights}}{{else}}{{.Reasoning}}{{end}}</div>
        </div>
        <p style="margin: 0 0 8px; color: #666; font-size: 12px; line-height: 1.5;">{{excerpt .Article.Summary}}</p>
        <div style="font-size: 11px; color: #999;">
          <strong>Source:</strong> {{.Article.Source}} |
          <a href="{{.Article.URL}}" target="_blank" style="color: #0369a1; text-decoration: none;">Read Full Article</a>
        </div>
      </div>
      {{end}}
    </div>
  {{end}}
  </div>

  <div style="background: #0A1929; padding: 20px; border-radius: 0 0 12px 12px; text-align: center;">
    <p style="color: rgba(255,255,255,0.6); margin: 0; font-size: 12px;">Sentio Wealth Management | News Alerts</p>
  </div>
</div>
</body>
</html>`))

// Render produces the transport-ready HTML body for a digest.
func Render(d domain.Digest) (string, error) {
	var b strings.Builder
	if err := digestTemplate.Execute(&b, d); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}

func priorityColor(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "#dc2626"
	case domain.PriorityMedium:
		return "#f59e0b"
	default:
		return "#10b981"
	}
}

func priorityBackground(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "#fee2e2"
	case domain.PriorityMedium:
		return "#fef3c7"
	default:
		return "#d1fae5"
	}
}

// excerpt caps article summaries at 200 bytes, backing up to a rune boundary
// so multibyte text is never split mid-character.
func excerpt(s string) string {
	if len(s) <= 200 {
		return s
	}
	cut := 200
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
