package impl

import (
	"context"
	"log/slog"

	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	fx.In

	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	logger    *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	logger *slog.Logger,
) usecase.UserUsecase {
	return &userService{
		txManager: txManager,
		hasher:    hasher,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup orchestrates the complete user registration process.
func (srv *userService) Signup(ctx context.Context, input usecase.SignupInput) (*usecase.SignupOutput, error) {
	srv.log(ctx).Info("Starting user signup", slog.String("email", input.Email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during signup")
	}

	var registeredUser *entity.User

	// Execute the whole creation within a single database transaction so the
	// existence check and the insert cannot interleave with another signup.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		// 1. Check if a user with this email already exists.
		_, err := userRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("user signup failed")
		}
		// We expect a 'not found' error. If it's a different error, something went wrong.
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check for existing user")
		}

		// 2. Create the user with the hashed credential on the row itself.
		newUser := &entity.User{
			Username:     input.Username,
			Email:        input.Email,
			PasswordHash: hashedPassword,
		}
		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.WithStack(err)
		}
		registeredUser = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute signup transaction", slog.Any("error", err), slog.String("email", input.Email))

		return nil, err
	}
	srv.log(ctx).Debug("User signed up successfully", slog.Any("user_id", registeredUser.ID))

	return &usecase.SignupOutput{User: registeredUser}, nil
}

// Signin verifies the user's credentials. Token and cookie issuance lives in
// the session usecase.
func (srv *userService) Signin(ctx context.Context, input usecase.SigninInput) (*usecase.SigninOutput, error) {
	srv.log(ctx).Debug("Starting user signin", slog.String("email", input.Email))

	var signedInUser *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByEmail(ctx, input.Email)
		if err != nil {
			// Unknown email and bad password collapse into the same error so
			// the endpoint cannot be used to probe which emails exist.
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCredentials.WrapMessage("signin failed")
			}

			return errors.Wrap(err, "failed to find user by email")
		}

		if !srv.hasher.Check(input.Password, user.PasswordHash) {
			return domainerrors.ErrInvalidCredentials.WrapMessage("signin failed")
		}

		signedInUser = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Info("Signin rejected", slog.Any("error", err), slog.String("email", input.Email))

		return nil, err
	}

	srv.log(ctx).Debug("User signed in successfully", slog.Any("user_id", signedInUser.ID))

	return &usecase.SigninOutput{User: signedInUser}, nil
}

// GetProfile returns the authenticated user's account record.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound.WrapMessage("profile lookup failed")
			}

			return errors.Wrap(err, "failed to find user by id")
		}
		user = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteAccount removes the user and every session they hold in one
// transaction, so a second device cannot keep using a refresh token that
// outlives the account.
func (srv *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Starting account deletion", slog.Any("user_id", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.RefreshTokenRepo().DeleteByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to revoke sessions during account deletion")
		}

		if err := repoFactory.UserRepo().Delete(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound.WrapMessage("account deletion failed")
			}

			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute account deletion transaction", slog.Any("error", err), slog.Any("user_id", userID))

		return err
	}

	srv.log(ctx).Info("Account deleted", slog.Any("user_id", userID))

	return nil
}
