// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Credentials live on the user row
// itself; there is exactly one sign-in method (email + password).
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, never the plaintext password.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
