package domain

import "time"

// ClientDigestEntry collects one client's relevant articles for a single
// pipeline run, together with the generated personalized summary. It lives
// only for the duration of the run.
type ClientDigestEntry struct {
	Client   Client
	Profile  AlertProfile
	Articles []ScoredArticle
	Summary  string
}

// HighPriorityCount returns how many of the entry's articles are high priority.
func (e ClientDigestEntry) HighPriorityCount() int {
	n := 0
	for _, a := range e.Articles {
		if a.Priority == PriorityHigh {
			n++
		}
	}
	return n
}

// Digest is the advisor-facing aggregation of all clients' new alerts
// produced by one run.
type Digest struct {
	Entries          []ClientDigestEntry
	ExecutiveSummary string
	GeneratedAt      time.Time
}

// TotalAlerts sums article counts across all client entries.
func (d Digest) TotalAlerts() int {
	n := 0
	for _, e := range d.Entries {
		n += len(e.Articles)
	}
	return n
}

// HighPriorityAlerts sums high-priority article counts across all entries.
func (d Digest) HighPriorityAlerts() int {
	n := 0
	for _, e := range d.Entries {
		n += e.HighPriorityCount()
	}
	return n
}

// RunSummary is the externally observable result of a pipeline run.
type RunSummary struct {
	ArticlesFetched   int    `json:"articlesFetched"`
	ArticlesSaved     int    `json:"articlesSaved"`
	ClientsWithAlerts int    `json:"clientsWithAlerts"`
	TotalAlerts       int    `json:"totalAlerts"`
	EmailSent         bool   `json:"emailSent"`
	EmailError        string `json:"emailError,omitempty"`
	DigestGenerated   bool   `json:"digestGenerated"`
}
