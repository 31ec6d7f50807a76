package oauth2

// Names of the extra fields in a token response, as read through x/oauth2's Token.Extra.
const (
	ExtraLocationID = "locationId"
	ExtraCompanyID  = "companyId"
	ExtraUserID     = "userId"
	ExtraUserType   = "userType"
	ExtraScope      = "scope"
)

// Form fields of the agency location token exchange.
const (
	FormCompanyID  = "companyId"
	FormLocationID = "locationId"
)

// VersionHeader carries the platform API version on every server-to-server call.
const VersionHeader = "Version"

// ErrorCodeInvalidGrant is returned when a code or refresh token was already used or revoked.
const ErrorCodeInvalidGrant = "invalid_grant"
