package token_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/token"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "client-1"
	testClientSecret = "secret-1"
	testRedirectURI  = "https://quotes.example.com/oauth/callback"
	testAgencyToken  = "agency-token"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate ...func(*token.ClientConfig)) *token.Client {
	t.Helper()
	cfg := token.ClientConfig{
		ClientID:         testClientID,
		ClientSecret:     testClientSecret,
		RedirectURI:      testRedirectURI,
		AuthorizeURL:     "https://provider.example.com/oauth/chooselocation",
		TokenURL:         srv.URL + "/oauth/token",
		LocationTokenURL: srv.URL + "/oauth/locationToken",
		Scopes:           []string{"contacts.readonly", "locations.readonly"},
		AgencyToken:      testAgencyToken,
		APIVersion:       "2021-07-28",
		Timeout:          2 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := token.NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresRegistration(t *testing.T) {
	_, err := token.NewClient(token.ClientConfig{TokenURL: "https://x", AuthorizeURL: "https://y"})
	require.ErrorIs(t, err, apperrors.ErrConfiguration)
	require.Contains(t, err.Error(), "client id")
	require.Contains(t, err.Error(), "redirect uri")
}

func TestClient_AuthCodeURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c := newTestClient(t, srv)

	raw := c.AuthCodeURL("state-abc")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "provider.example.com", u.Host)

	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, "contacts.readonly locations.readonly", q.Get("scope"))
	require.Equal(t, "state-abc", q.Get("state"))
}

func TestClient_ExchangeCode(t *testing.T) {
	t.Run("success discloses tenant", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			require.Equal(t, "code-1", r.PostForm.Get("code"))
			require.Equal(t, testClientID, r.PostForm.Get("client_id"))
			require.Equal(t, testClientSecret, r.PostForm.Get("client_secret"))
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token":  "tok1",
				"refresh_token": "ref1",
				"token_type":    "Bearer",
				"expires_in":    86399,
				"scope":         "contacts.readonly",
				"userType":      "Location",
				"locationId":    "loc_123",
				"companyId":     "comp_1",
				"userId":        "user_1",
			})
		}))
		defer srv.Close()

		g, err := newTestClient(t, srv).ExchangeCode(context.Background(), "code-1")
		require.NoError(t, err)
		require.Equal(t, "tok1", g.AccessToken)
		require.Equal(t, "ref1", g.RefreshToken)
		require.Equal(t, "loc_123", g.TenantID)
		require.Equal(t, "comp_1", g.ParentAccountID)
		require.Equal(t, "user_1", g.UserID)
		require.Equal(t, "Location", g.UserType)
		require.Equal(t, "contacts.readonly", g.Scope)
		require.False(t, g.ObtainedAt.IsZero())
	})

	t.Run("replayed code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "code already used"})
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).ExchangeCode(context.Background(), "code-1")
		require.ErrorIs(t, err, token.ErrRejected)
		require.ErrorIs(t, err, token.ErrInvalidGrant)
	})

	t.Run("other rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_client"})
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).ExchangeCode(context.Background(), "code-1")
		require.ErrorIs(t, err, token.ErrRejected)
		require.NotErrorIs(t, err, token.ErrInvalidGrant)
	})

	t.Run("provider down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).ExchangeCode(context.Background(), "code-1")
		require.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
	})

	t.Run("timeout is bounded", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c := newTestClient(t, srv, func(cfg *token.ClientConfig) { cfg.Timeout = 50 * time.Millisecond })
		start := time.Now()
		_, err := c.ExchangeCode(context.Background(), "code-1")
		require.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("empty code", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		_, err := newTestClient(t, srv).ExchangeCode(context.Background(), "")
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestClient_Refresh(t *testing.T) {
	t.Run("rotates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			require.Equal(t, "ref1", r.PostForm.Get("refresh_token"))
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token":  "tok2",
				"refresh_token": "ref2",
				"locationId":    "loc_123",
			})
		}))
		defer srv.Close()

		g, err := newTestClient(t, srv).Refresh(context.Background(), "ref1")
		require.NoError(t, err)
		require.Equal(t, "tok2", g.AccessToken)
		require.Equal(t, "ref2", g.RefreshToken)
	})

	t.Run("keeps refresh token when not rotated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "tok2"})
		}))
		defer srv.Close()

		g, err := newTestClient(t, srv).Refresh(context.Background(), "ref1")
		require.NoError(t, err)
		require.Equal(t, "ref1", g.RefreshToken)
	})

	t.Run("rotated elsewhere", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).Refresh(context.Background(), "ref1")
		require.ErrorIs(t, err, token.ErrInvalidGrant)
	})
}

func TestClient_ExchangeAgencyToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/oauth/locationToken", r.URL.Path)
			require.Equal(t, "Bearer "+testAgencyToken, r.Header.Get("Authorization"))
			require.Equal(t, "2021-07-28", r.Header.Get("Version"))
			require.NoError(t, r.ParseForm())
			require.Equal(t, "comp_1", r.PostForm.Get("companyId"))
			require.Equal(t, "loc_9", r.PostForm.Get("locationId"))
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "loc-tok",
				"scope":        "contacts.readonly",
				"userType":     "Location",
				"locationId":   "loc_9",
			})
		}))
		defer srv.Close()

		g, err := newTestClient(t, srv).ExchangeAgencyToken(context.Background(), "comp_1", "loc_9")
		require.NoError(t, err)
		require.Equal(t, "loc-tok", g.AccessToken)
		require.Equal(t, "loc_9", g.TenantID)
		require.Equal(t, "comp_1", g.ParentAccountID)
		require.Empty(t, g.RefreshToken)
	})

	t.Run("agency token rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized", "message": "Invalid JWT"})
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).ExchangeAgencyToken(context.Background(), "comp_1", "loc_9")
		require.ErrorIs(t, err, token.ErrRejected)
	})

	t.Run("provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).ExchangeAgencyToken(context.Background(), "comp_1", "loc_9")
		require.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
	})

	t.Run("not configured", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		c := newTestClient(t, srv, func(cfg *token.ClientConfig) { cfg.AgencyToken = "" })
		require.False(t, c.HasAgencyToken())
		_, err := c.ExchangeAgencyToken(context.Background(), "comp_1", "loc_9")
		require.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}
