package usecase

import (
	"context"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new user.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// SigninInput defines the data required for a user to sign in.
type SigninInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// SignupOutput returns the newly created user's basic information.
type SignupOutput struct {
	User *entity.User
}

// SigninOutput returns the authenticated user after a credential check.
// Session issuance (tokens, cookies) is the session usecase's job.
type SigninOutput struct {
	User *entity.User
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Signup(ctx context.Context, input SignupInput) (*SignupOutput, error)
	Signin(ctx context.Context, input SigninInput) (*SigninOutput, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// DeleteAccount removes the user row and every refresh token in one
	// transaction, so all devices lose access at once.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}
