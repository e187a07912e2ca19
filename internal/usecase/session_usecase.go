// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"taskboard/internal/domain/entity"
	"taskboard/internal/domain/service"

	"github.com/google/uuid"
)

// SessionInfo describes one active session (one refresh token row) for the
// sessions listing. The token value itself is never exposed.
type SessionInfo struct {
	ID        uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	Current   bool
}

// SessionUsecase owns the full request-authentication lifecycle: issuing the
// cookie pair, silently renewing access tokens, rotating refresh tokens and
// revoking sessions. Every operation that touches cookies takes the
// request-scoped CookieTransport explicitly; nothing here reads ambient
// request state.
type SessionUsecase interface {
	// Issue starts a new session for an already-authenticated user: mints
	// an access token, mints and persists a refresh token, and sets both
	// cookies. Called after signup and signin.
	Issue(ctx context.Context, userID uuid.UUID, cookies service.CookieTransport) error

	// SilentRefresh implements the per-request token upkeep. A valid access
	// token yields an identity immediately (re-issued in place when close
	// to expiry); a missing or invalid one falls back to the refresh token
	// to mint a fresh access token without rotation. Failure to
	// authenticate is not an error: (nil, nil) means the request proceeds
	// unauthenticated.
	SilentRefresh(ctx context.Context, cookies service.CookieTransport) (*entity.Identity, error)

	// ExplicitRefresh is the client-initiated refresh endpoint. The refresh
	// token is verified against the store and rotated: the presented token
	// is consumed and a new one is issued alongside a fresh access token.
	// Expired sessions for the same user are swept in the same transaction.
	ExplicitRefresh(ctx context.Context, cookies service.CookieTransport) (*entity.Identity, error)

	// Revoke ends the session carried by the refresh cookie and clears both
	// cookies. Idempotent: revoking an absent or unknown token succeeds.
	Revoke(ctx context.Context, cookies service.CookieTransport) error

	// RevokeAllForUser deletes every refresh token the user has, signing
	// them out of all devices. The caller clears its own cookies.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error

	// ActiveSessions lists the user's unexpired sessions, newest first,
	// marking the one matching the inbound refresh cookie as current.
	ActiveSessions(ctx context.Context, userID uuid.UUID, cookies service.CookieTransport) ([]*SessionInfo, error)
}
