package sessions_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/sessions"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("k", 32))

func TestNewCodec(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := sessions.NewCodec(nil)
		require.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("short secret", func(t *testing.T) {
		_, err := sessions.NewCodec([]byte("short"))
		require.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("valid secret", func(t *testing.T) {
		c, err := sessions.NewCodec(testSecret)
		require.NoError(t, err)
		require.Equal(t, 7*24*time.Hour, c.Lifetime())
	})
}

func TestCodec_IssueVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c, err := sessions.NewCodec(testSecret, sessions.WithNowFunc(clock))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		token, err := c.Issue("loc_123", "comp_9", "user_7")
		require.NoError(t, err)

		s, err := c.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "loc_123", s.TenantID)
		require.Equal(t, "comp_9", s.ParentAccountID)
		require.Equal(t, "user_7", s.UserID)
		require.True(t, s.IssuedAt.Equal(now))
		require.True(t, s.ExpiresAt.Equal(now.Add(sessions.DefaultLifetime)))
	})

	t.Run("tenant id required", func(t *testing.T) {
		_, err := c.Issue("", "comp_9", "user_7")
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := c.Issue("loc_123", "", "")
		require.NoError(t, err)

		later, err := sessions.NewCodec(testSecret, sessions.WithNowFunc(func() time.Time {
			return now.Add(sessions.DefaultLifetime + time.Minute)
		}))
		require.NoError(t, err)

		_, err = later.Verify(token)
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := c.Issue("loc_123", "", "")
		require.NoError(t, err)

		other, err := sessions.NewCodec([]byte(strings.Repeat("x", 32)), sessions.WithNowFunc(clock))
		require.NoError(t, err)

		_, err = other.Verify(token)
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := c.Issue("loc_123", "", "")
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		forged, err := c.Issue("loc_999", "", "")
		require.NoError(t, err)
		parts[1] = strings.Split(forged, ".")[1]

		_, err = c.Verify(strings.Join(parts, "."))
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	})

	t.Run("malformed input does not panic", func(t *testing.T) {
		for _, input := range []string{"", "garbage", "a.b.c", "...."} {
			_, err := c.Verify(input)
			require.ErrorIs(t, err, apperrors.ErrInvalidSession, input)
		}
	})

	t.Run("unsigned token rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"tid": "loc_123",
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = c.Verify(signed)
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	})

	t.Run("token without tenant rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString(testSecret)
		require.NoError(t, err)

		_, err = c.Verify(signed)
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	})
}
