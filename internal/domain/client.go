package domain

// Client is a wealth-management client record as supplied by the directory.
type Client struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	NetWorth   float64
	Age        int
	Occupation string
	Profile    InvestorProfile
}

// FullName joins the client's first and last names for display.
func (c Client) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// InvestorProfile is the typed investment profile attached to a client.
// SchemaVersion lets malformed or stale profile blobs be rejected at the
// boundary instead of deep inside the scorer.
type InvestorProfile struct {
	SchemaVersion   int      `json:"schemaVersion"`
	Holdings        []string `json:"holdings,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	RiskTolerance   string   `json:"riskTolerance,omitempty"`
	InvestmentStyle string   `json:"investmentStyle,omitempty"`
}

// AlertProfile is the per-client configuration controlling which news
// reaches them. Read-only input to the pipeline.
type AlertProfile struct {
	ClientID           string
	Keywords           []string
	ExcludedKeywords   []string
	PriorityThreshold  Priority
	CategoriesEnabled  []string
	EmailNotifications bool
}

// ClientAlertPair bundles a client with their active alert profile.
type ClientAlertPair struct {
	Client  Client
	Profile AlertProfile
}
