package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a long-lived, authorized user session (one per
// device). Only the SHA-256 hash of the opaque token value is persisted, so
// a leaked database does not yield usable tokens.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity is the request-scoped user reference attached after a successful
// access-token verification. Handlers use it to scope all data access.
type Identity struct {
	UserID uuid.UUID
}
