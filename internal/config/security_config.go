package config

import "time"

const (
	sessionSecretEnvVar      = "SESSION_SECRET"
	tokenEncryptionKeyEnvVar = "TOKEN_ENCRYPTION_KEY"
	frameAncestorsEnvVar     = "FRAME_ANCESTORS"
)

const (
	// MinSessionSecretLength is the shortest HMAC secret accepted for session signing
	MinSessionSecretLength = 32
	// TokenEncryptionKeyLength is the decoded length of TOKEN_ENCRYPTION_KEY
	TokenEncryptionKeyLength = 32
)

type SecurityConfig interface {
	GetSessionSecret() string
	GetMaxSessionAge() time.Duration
	GetTokenEncryptionKey() string
	GetFrameAncestors() string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionSecret has no default. A missing secret is a deployment error.
func (Security) GetSessionSecret() string {
	return GetEnv(sessionSecretEnvVar, "")
}

func (Security) GetMaxSessionAge() time.Duration {
	return 7 * 24 * time.Hour
}

// GetTokenEncryptionKey returns the base64 key used to seal stored tokens, empty disables sealing
func (Security) GetTokenEncryptionKey() string {
	return GetEnv(tokenEncryptionKeyEnvVar, "")
}

// GetFrameAncestors lists the origins allowed to embed the app in an iframe
func (Security) GetFrameAncestors() string {
	return GetEnv(frameAncestorsEnvVar, "'self' https://*.leadconnectorhq.com https://*.gohighlevel.com")
}
