package oauth2

// TokenResponse is the platform's token endpoint response. Beyond the RFC 6749
// fields the platform discloses which account the token belongs to.
type TokenResponse struct {
	// AccessToken is the bearer token for platform API calls.
	// Usage: "Authorization: Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the access token lifetime in seconds. It is a hint only and is not persisted.
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken rotates on every refresh. Absent for agency-minted location tokens.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope is the space separated list of granted scopes.
	Scope string `json:"scope,omitempty"`

	// UserType is "Location" for location-scoped tokens or "Company" for agency tokens.
	UserType string `json:"userType,omitempty"`

	// LocationID is the tenant the token is scoped to. Authoritative over any hint.
	LocationID string `json:"locationId,omitempty"`

	// CompanyID is the parent (agency) account.
	CompanyID string `json:"companyId,omitempty"`

	// UserID is the platform user who approved the install.
	UserID string `json:"userId,omitempty"`
}

// ErrorResponse is the body the platform returns on a rejected token request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Message          string `json:"message,omitempty"`
}
