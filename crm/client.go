// Package crm is a minimal client for the platform's REST API, used to exercise a
// resolved tenant credential.
package crm

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
	crmoauth "github.com/jrsteele09/go-crm-connector/oauth2"
)

const DefaultTimeout = 10 * time.Second

// ErrUnauthorized is returned when the platform rejects the access token
var ErrUnauthorized = errors.New("unauthorized by platform")

// Location is the subset of the platform's location resource the app reads.
type Location struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CompanyID string `json:"companyId,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

type locationResponse struct {
	Location Location `json:"location"`
}

// Client calls the platform API with a caller-supplied access token.
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates an API client. timeout <= 0 uses DefaultTimeout.
func NewClient(baseURL, apiVersion string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("[crm NewClient] base url is required: %w", apperrors.ErrConfiguration)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetLocation fetches a location. A 401 yields ErrUnauthorized; network failures and
// 5xx answers yield ErrProviderUnavailable.
func (c *Client) GetLocation(ctx context.Context, accessToken, locationID string) (*Location, error) {
	if locationID == "" {
		return nil, fmt.Errorf("[crm GetLocation] location id is required: %w", apperrors.ErrInvalidInput)
	}

	var resp locationResponse
	if err := c.get(ctx, accessToken, "/locations/"+url.PathEscape(locationID), &resp); err != nil {
		return nil, fmt.Errorf("[crm GetLocation] %w", err)
	}
	return &resp.Location, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if c.apiVersion != "" {
		req.Header.Set(crmoauth.VersionHeader, c.apiVersion)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, apperrors.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("status %d: %w", resp.StatusCode, apperrors.ErrProviderUnavailable)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
