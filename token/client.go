// Package token talks to the platform's OAuth endpoints: the consent URL, the
// authorization code exchange, refresh token rotation and the agency location token
// exchange. Every call is bounded by the configured timeout.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/internal/metrics"
	crmoauth "github.com/jrsteele09/go-crm-connector/oauth2"
	"github.com/jrsteele09/go-crm-connector/tenants"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every outbound call to the provider
const DefaultTimeout = 10 * time.Second

var (
	// ErrRejected marks a 4xx answer from the provider for a grant it will not honour
	ErrRejected = errors.New("rejected by provider")
	// ErrInvalidGrant marks a code or refresh token that was already used or revoked
	ErrInvalidGrant = errors.New("invalid grant")
)

// Grant is the outcome of any successful token exchange.
type Grant struct {
	AccessToken     string
	RefreshToken    string
	Scope           string
	TenantID        string // location id disclosed by the provider, may be empty
	ParentAccountID string
	UserID          string
	UserType        string
	ObtainedAt      time.Time
}

// Installation converts the grant into the record persisted for its tenant.
func (g *Grant) Installation(source tenants.Source) *tenants.Installation {
	return &tenants.Installation{
		AccessToken:     g.AccessToken,
		RefreshToken:    g.RefreshToken,
		ObtainedAt:      g.ObtainedAt,
		Scope:           g.Scope,
		ParentAccountID: g.ParentAccountID,
		UserType:        g.UserType,
		Source:          source,
	}
}

// ClientConfig holds the provider registration of the app.
type ClientConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURI      string
	AuthorizeURL     string
	TokenURL         string
	LocationTokenURL string
	Scopes           []string
	AgencyToken      string
	APIVersion       string
	Timeout          time.Duration
}

// Client performs the provider's OAuth exchanges.
type Client struct {
	oauth            *oauth2.Config
	httpClient       *http.Client
	timeout          time.Duration
	locationTokenURL string
	agencyToken      string
	apiVersion       string
	nowFunc          func() time.Time
	metrics          *metrics.Metrics
}

type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for provider calls
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithNowFunc overrides the clock (primarily for testing)
func WithNowFunc(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowFunc = now
	}
}

// WithMetrics records provider call durations
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient fails with ErrConfiguration when the registration is incomplete.
func NewClient(cfg ClientConfig, opts ...ClientOption) (*Client, error) {
	var missing []string
	if cfg.ClientID == "" {
		missing = append(missing, "client id")
	}
	if cfg.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if cfg.RedirectURI == "" {
		missing = append(missing, "redirect uri")
	}
	if cfg.AuthorizeURL == "" {
		missing = append(missing, "authorize url")
	}
	if cfg.TokenURL == "" {
		missing = append(missing, "token url")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("[token NewClient] missing %s: %w", strings.Join(missing, ", "), apperrors.ErrConfiguration)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient:       &http.Client{Timeout: timeout},
		timeout:          timeout,
		locationTokenURL: cfg.LocationTokenURL,
		agencyToken:      cfg.AgencyToken,
		apiVersion:       cfg.APIVersion,
		nowFunc:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AuthCodeURL builds the consent URL: response_type=code, client_id, redirect_uri,
// space-joined scope and state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a grant.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Grant, error) {
	if code == "" {
		return nil, fmt.Errorf("[token ExchangeCode] code is required: %w", apperrors.ErrInvalidInput)
	}
	ctx, cancel := c.bounded(ctx)
	defer cancel()
	defer c.metrics.ObserveProviderCall("exchange_code", time.Now())

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("[token ExchangeCode] %w", classify(err))
	}
	return c.grantFromToken(tok), nil
}

// Refresh rotates a refresh token. When the provider does not return a new refresh
// token the old one is carried over.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("[token Refresh] refresh token is required: %w", apperrors.ErrInvalidInput)
	}
	ctx, cancel := c.bounded(ctx)
	defer cancel()
	defer c.metrics.ObserveProviderCall("refresh", time.Now())

	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("[token Refresh] %w", classify(err))
	}
	return c.grantFromToken(tok), nil
}

// HasAgencyToken reports whether the agency exchange is configured
func (c *Client) HasAgencyToken() bool {
	return c.agencyToken != "" && c.locationTokenURL != ""
}

// ExchangeAgencyToken mints a location-scoped token from the standing agency token,
// without any user interaction.
func (c *Client) ExchangeAgencyToken(ctx context.Context, parentAccountID, tenantID string) (*Grant, error) {
	if !c.HasAgencyToken() {
		return nil, fmt.Errorf("[token ExchangeAgencyToken] agency token or location token url not set: %w", apperrors.ErrConfiguration)
	}
	if parentAccountID == "" || tenantID == "" {
		return nil, fmt.Errorf("[token ExchangeAgencyToken] company and location are required: %w", apperrors.ErrInvalidInput)
	}
	ctx, cancel := c.bounded(ctx)
	defer cancel()
	defer c.metrics.ObserveProviderCall("agency_exchange", time.Now())

	form := url.Values{}
	form.Set(crmoauth.FormCompanyID, parentAccountID)
	form.Set(crmoauth.FormLocationID, tenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.locationTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("[token ExchangeAgencyToken] build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.agencyToken)
	if c.apiVersion != "" {
		req.Header.Set(crmoauth.VersionHeader, c.apiVersion)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[token ExchangeAgencyToken] %v: %w", err, apperrors.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("[token ExchangeAgencyToken] read body: %v: %w", err, apperrors.ErrProviderUnavailable)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("[token ExchangeAgencyToken] status %d: %w", resp.StatusCode, apperrors.ErrProviderUnavailable)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var perr crmoauth.ErrorResponse
		_ = json.Unmarshal(body, &perr)
		if perr.Error == crmoauth.ErrorCodeInvalidGrant {
			return nil, fmt.Errorf("[token ExchangeAgencyToken] status %d: %w: %w", resp.StatusCode, ErrRejected, ErrInvalidGrant)
		}
		return nil, fmt.Errorf("[token ExchangeAgencyToken] status %d %s: %w", resp.StatusCode, perr.Error, ErrRejected)
	}

	var tr crmoauth.TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("[token ExchangeAgencyToken] decode response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("[token ExchangeAgencyToken] response without access token: %w", ErrRejected)
	}

	g := &Grant{
		AccessToken:     tr.AccessToken,
		RefreshToken:    tr.RefreshToken,
		Scope:           tr.Scope,
		TenantID:        tr.LocationID,
		ParentAccountID: tr.CompanyID,
		UserID:          tr.UserID,
		UserType:        tr.UserType,
		ObtainedAt:      c.nowFunc(),
	}
	if g.TenantID == "" {
		g.TenantID = tenantID
	}
	if g.ParentAccountID == "" {
		g.ParentAccountID = parentAccountID
	}
	return g, nil
}

// bounded applies the provider timeout and hands x/oauth2 our HTTP client.
func (c *Client) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) grantFromToken(tok *oauth2.Token) *Grant {
	return &Grant{
		AccessToken:     tok.AccessToken,
		RefreshToken:    tok.RefreshToken,
		Scope:           extraString(tok, crmoauth.ExtraScope),
		TenantID:        extraString(tok, crmoauth.ExtraLocationID),
		ParentAccountID: extraString(tok, crmoauth.ExtraCompanyID),
		UserID:          extraString(tok, crmoauth.ExtraUserID),
		UserType:        extraString(tok, crmoauth.ExtraUserType),
		ObtainedAt:      c.nowFunc(),
	}
}

func extraString(tok *oauth2.Token, key string) string {
	v, _ := tok.Extra(key).(string)
	return v
}

// classify maps x/oauth2 failures onto rejection vs. unavailability.
func classify(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil && re.Response.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("status %d: %w", re.Response.StatusCode, apperrors.ErrProviderUnavailable)
		}
		if re.ErrorCode == crmoauth.ErrorCodeInvalidGrant {
			return fmt.Errorf("%s: %w: %w", re.ErrorCode, ErrRejected, ErrInvalidGrant)
		}
		return fmt.Errorf("%s: %w", re.ErrorCode, ErrRejected)
	}
	return fmt.Errorf("%v: %w", err, apperrors.ErrProviderUnavailable)
}
