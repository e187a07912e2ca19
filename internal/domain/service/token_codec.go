// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import (
	"time"

	"github.com/google/uuid"
)

// AccessTokenPayload is the typed content of a signed access token. It is a
// concrete struct rather than an open claim map so a missing field is a
// compile error, not a runtime surprise.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec creates and verifies signed, self-contained access tokens and
// produces opaque refresh-token values plus their storage hash. All methods
// are pure functions of payload, secret and the supplied clock reading.
type TokenCodec interface {
	// Create signs a new access token for userID, embedding issued-at and
	// an expiry of now plus the configured access TTL.
	Create(userID uuid.UUID, now time.Time) (string, error)

	// Verify checks signature and expiry. It reports failure through the
	// boolean, never through an error: absence of a positive result means
	// "unauthenticated", not "crashed".
	Verify(tokenString string, now time.Time) (*AccessTokenPayload, bool)

	// DecodeStrict is the throwing variant of Verify, for callers that have
	// already branched on "this token must be valid". Fails with
	// domainerrors.ErrTokenInvalid on any signature or expiry problem.
	DecodeStrict(tokenString string, now time.Time) (*AccessTokenPayload, error)

	// ShouldRefresh reports whether a valid token is close enough to expiry
	// to be silently re-issued. Policy: renew once less than half of the
	// token's lifetime remains.
	ShouldRefresh(payload *AccessTokenPayload, now time.Time) bool

	// Refresh re-issues a token for the same identity with a fresh expiry.
	// Stateless; the refresh-token store is never consulted.
	Refresh(payload *AccessTokenPayload, now time.Time) (string, error)

	// NewRefreshToken returns a fresh opaque refresh-token value: 32 bytes
	// (256 bits) of randomness, URL-safe base64.
	NewRefreshToken() (string, error)

	// HashRefreshToken returns the deterministic one-way hash under which a
	// refresh token is stored. Deterministic because the hash doubles as
	// the lookup key; this is not a password-style salted hash.
	HashRefreshToken(token string) string

	// AccessTokenTTL returns the embedded validity window of access tokens.
	// Cookie expiries derive from this single source of truth.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh-token lifetime.
	RefreshTokenTTL() time.Duration
}
