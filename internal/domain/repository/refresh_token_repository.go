package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when a refresh token is not found.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository defines the interface for refresh token and session
// management operations. Multiple records may exist per user (one per
// device); no interpretation of expiry happens here, the session lifecycle
// decides what an expired record means.
type RefreshTokenRepository interface {
	// Create persists a new refresh token, representing a user session.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash retrieves a refresh token record by its stored hash. The
	// record is returned even when expired; callers check ExpiresAt.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// FindByUserID retrieves all active refresh tokens for a specific user,
	// newest first. This backs the active-sessions view.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)

	// DeleteByHash deletes a refresh token by its hash. Deleting an absent
	// hash is not an error; the affected row count lets rotation detect
	// that a concurrent request already consumed the token.
	DeleteByHash(ctx context.Context, tokenHash string) (int64, error)

	// DeleteByUserID removes all refresh tokens for a specific user.
	// Used for account deletion and "sign out everywhere".
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteByIDs removes refresh tokens by primary key. A no-op on an
	// empty list.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error

	// DeleteExpired removes this user's refresh tokens whose expiry is
	// before now.
	DeleteExpired(ctx context.Context, userID uuid.UUID, now time.Time) error
}
