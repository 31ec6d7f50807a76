package config

import (
	"strings"
	"time"
)

const (
	clientIDEnvVar         = "CRM_CLIENT_ID"
	clientSecretEnvVar     = "CRM_CLIENT_SECRET"
	redirectURIEnvVar      = "CRM_REDIRECT_URI"
	authorizeURLEnvVar     = "CRM_AUTHORIZE_URL"
	tokenURLEnvVar         = "CRM_TOKEN_URL"
	locationTokenURLEnvVar = "CRM_LOCATION_TOKEN_URL"
	scopesEnvVar           = "CRM_SCOPES"
	agencyTokenEnvVar      = "CRM_AGENCY_TOKEN"
	apiBaseURLEnvVar       = "CRM_API_BASE_URL"
	apiVersionEnvVar       = "CRM_API_VERSION"
	providerTimeoutEnvVar  = "PROVIDER_TIMEOUT"
)

const defaultScopes = "locations.readonly contacts.readonly contacts.write opportunities.readonly opportunities.write"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetLocationTokenURL() string
	GetScopes() []string
	GetAgencyToken() string
	GetAPIBaseURL() string
	GetAPIVersion() string
	GetProviderTimeout() time.Duration
	GetAuthStateTTL() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetClientID() string {
	return GetEnv(clientIDEnvVar, "")
}

func (OAuth) GetClientSecret() string {
	return GetEnv(clientSecretEnvVar, "")
}

func (OAuth) GetRedirectURI() string {
	return GetEnv(redirectURIEnvVar, "")
}

func (OAuth) GetAuthorizeURL() string {
	return GetEnv(authorizeURLEnvVar, "https://marketplace.leadconnectorhq.com/oauth/chooselocation")
}

func (OAuth) GetTokenURL() string {
	return GetEnv(tokenURLEnvVar, "https://services.leadconnectorhq.com/oauth/token")
}

// GetLocationTokenURL is the server-to-server endpoint that mints a location token from the agency token
func (OAuth) GetLocationTokenURL() string {
	return GetEnv(locationTokenURLEnvVar, "https://services.leadconnectorhq.com/oauth/locationToken")
}

func (OAuth) GetScopes() []string {
	return splitList(GetEnv(scopesEnvVar, defaultScopes), " ")
}

// GetAgencyToken is the long-lived parent account token, provisioned out of band
func (OAuth) GetAgencyToken() string {
	return GetEnv(agencyTokenEnvVar, "")
}

func (OAuth) GetAPIBaseURL() string {
	return strings.TrimSuffix(GetEnv(apiBaseURLEnvVar, "https://services.leadconnectorhq.com"), "/")
}

func (OAuth) GetAPIVersion() string {
	return GetEnv(apiVersionEnvVar, "2021-07-28")
}

func (OAuth) GetProviderTimeout() time.Duration {
	return GetDuration(providerTimeoutEnvVar, 10*time.Second)
}

func (OAuth) GetAuthStateTTL() time.Duration {
	return 10 * time.Minute
}
