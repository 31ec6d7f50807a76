// Package sessions issues and verifies the signed session credential carried in the
// browser cookie. The credential identifies which tenant installation a browser is
// bound to. It carries no platform privileges and is never stored server-side, so
// logging out is cookie deletion only.
package sessions

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

// DefaultLifetime is how long an issued session stays valid
const DefaultLifetime = 7 * 24 * time.Hour

// MinSecretLength is the shortest HMAC secret NewCodec accepts
const MinSecretLength = 32

// Session is the verified view of a session credential
type Session struct {
	TenantID        string
	ParentAccountID string
	UserID          string
	IssuedAt        time.Time
	ExpiresAt       time.Time
}

type claims struct {
	TenantID        string `json:"tid"`
	ParentAccountID string `json:"pid,omitempty"`
	UserID          string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session credentials with a server-held HMAC secret.
type Codec struct {
	secret   []byte
	lifetime time.Duration
	nowFunc  func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc overrides the clock (primarily for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// WithLifetime overrides DefaultLifetime
func WithLifetime(lifetime time.Duration) CodecOption {
	return func(c *Codec) {
		c.lifetime = lifetime
	}
}

// NewCodec requires a dedicated secret of at least MinSecretLength bytes.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("[sessions NewCodec] session secret is not set: %w", apperrors.ErrConfiguration)
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("[sessions NewCodec] session secret must be at least %d bytes: %w", MinSecretLength, apperrors.ErrConfiguration)
	}

	c := &Codec{
		secret:   append([]byte(nil), secret...),
		lifetime: DefaultLifetime,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lifetime returns how long issued credentials remain valid
func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue creates a signed credential for the tenant.
func (c *Codec) Issue(tenantID, parentAccountID, userID string) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("[sessions Issue] tenant id is required: %w", apperrors.ErrInvalidInput)
	}

	now := c.nowFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		TenantID:        tenantID,
		ParentAccountID: parentAccountID,
		UserID:          userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("[sessions Issue] failed to sign session: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure wraps ErrInvalidSession.
func (c *Codec) Verify(token string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("[sessions Verify] empty token: %w", apperrors.ErrInvalidSession)
	}

	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.nowFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("[sessions Verify] %v: %w", err, apperrors.ErrInvalidSession)
	}
	if !parsed.Valid || cl.TenantID == "" {
		return nil, fmt.Errorf("[sessions Verify] missing tenant: %w", apperrors.ErrInvalidSession)
	}

	s := &Session{
		TenantID:        cl.TenantID,
		ParentAccountID: cl.ParentAccountID,
		UserID:          cl.UserID,
	}
	if cl.IssuedAt != nil {
		s.IssuedAt = cl.IssuedAt.Time
	}
	if cl.ExpiresAt != nil {
		s.ExpiresAt = cl.ExpiresAt.Time
	}
	return s, nil
}
