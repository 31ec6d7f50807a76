package tenants

import "time"

// Source records which trigger produced an installation record
type Source string

const (
	SourceOAuth   Source = "oauth"
	SourceWebhook Source = "webhook"
	SourceRefresh Source = "refresh"
)

// Installation is the durable credential of one tenant (a platform location).
//
// A record with a non-empty AccessToken means the tenant is installed. Whether the
// token is still accepted is only discovered when the platform rejects a call; the
// record deliberately carries no expiry. Proactive expiry tracking is a known gap.
type Installation struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token,omitempty"`
	ObtainedAt      time.Time `json:"obtained_at"`
	Scope           string    `json:"scope,omitempty"`
	ParentAccountID string    `json:"parent_account_id,omitempty"`
	UserType        string    `json:"user_type,omitempty"`
	Source          Source    `json:"source,omitempty"`
}

// IsInstalled reports whether the record carries an access token
func (i *Installation) IsInstalled() bool {
	return i != nil && i.AccessToken != ""
}

// HasRefreshToken reports whether the record can be refreshed
func (i *Installation) HasRefreshToken() bool {
	return i != nil && i.RefreshToken != ""
}
