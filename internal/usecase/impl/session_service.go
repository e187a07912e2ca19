// Package impl contains the application-specific business rules implementations.
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

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	fx.In

	txManager repository.TransactionManager
	codec     service.TokenCodec
	clock     service.Clock
	logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	txManager repository.TransactionManager,
	codec service.TokenCodec,
	clock service.Clock,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		txManager: txManager,
		codec:     codec,
		clock:     clock,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Issue starts a new session: a signed access token plus a stored refresh
// token, both delivered as cookies whose expiries mirror the tokens' own.
func (srv *sessionService) Issue(ctx context.Context, userID uuid.UUID, cookies service.CookieTransport) error {
	now := srv.clock.Now()

	accessToken, err := srv.codec.Create(userID, now)
	if err != nil {
		return errors.Wrap(err, "failed to create access token")
	}

	refreshValue, err := srv.codec.NewRefreshToken()
	if err != nil {
		return errors.Wrap(err, "failed to generate refresh token")
	}

	refreshExpiry := now.Add(srv.codec.RefreshTokenTTL())

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		// Opportunistic sweep: a new session is a fine moment to drop this
		// user's dead sessions.
		if err := refreshRepo.DeleteExpired(ctx, userID, now); err != nil {
			return errors.Wrap(err, "failed to sweep expired refresh tokens")
		}

		return refreshRepo.Create(ctx, &entity.RefreshToken{
			UserID:    userID,
			TokenHash: srv.codec.HashRefreshToken(refreshValue),
			ExpiresAt: refreshExpiry,
		})
	})
	if err != nil {
		srv.log(ctx).Error("Failed to persist new session", slog.Any("error", err), slog.Any("user_id", userID))

		return errors.Wrap(err, "failed to persist new session")
	}

	cookies.SetAccessToken(accessToken, now.Add(srv.codec.AccessTokenTTL()))
	cookies.SetRefreshToken(refreshValue, refreshExpiry)

	srv.log(ctx).Debug("Session issued", slog.Any("user_id", userID))

	return nil
}

// SilentRefresh keeps a browser session alive without client cooperation.
// It never fails a request: any unusable token simply yields no identity.
func (srv *sessionService) SilentRefresh(ctx context.Context, cookies service.CookieTransport) (*entity.Identity, error) {
	now := srv.clock.Now()

	// Fast path: a valid access token authenticates on its own. When it is
	// past half of its lifetime, re-issue it in place to keep the session
	// sliding.
	if raw, ok := cookies.AccessToken(); ok {
		if payload, valid := srv.codec.Verify(raw, now); valid {
			if srv.codec.ShouldRefresh(payload, now) {
				renewed, err := srv.codec.Refresh(payload, now)
				if err != nil {
					// The old token is still valid; log and carry on with it.
					srv.log(ctx).Warn("Failed to re-issue access token", slog.Any("error", err))
				} else {
					cookies.SetAccessToken(renewed, now.Add(srv.codec.AccessTokenTTL()))
				}
			}

			return &entity.Identity{UserID: payload.UserID}, nil
		}
	}

	// Slow path: fall back to the refresh token. No rotation here; silent
	// refresh happens on every request and rotating each time would race
	// parallel requests from the same browser.
	raw, ok := cookies.RefreshToken()
	if !ok {
		return nil, nil
	}

	tokenHash := srv.codec.HashRefreshToken(raw)

	var identity *entity.Identity

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		record, err := refreshRepo.FindByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		// An expired record is swept on presentation so the table does not
		// accumulate sessions nobody can use again.
		if !record.ExpiresAt.After(now) {
			return refreshRepo.DeleteByIDs(ctx, []uuid.UUID{record.ID})
		}

		identity = &entity.Identity{UserID: record.UserID}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to silently refresh session")
	}

	if identity == nil {
		// The refresh token bought nothing; drop the dead cookies so the
		// client stops presenting them.
		cookies.ClearAccessToken()
		cookies.ClearRefreshToken()

		return nil, nil
	}

	accessToken, err := srv.codec.Create(identity.UserID, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create access token")
	}
	cookies.SetAccessToken(accessToken, now.Add(srv.codec.AccessTokenTTL()))

	srv.log(ctx).Debug("Access token renewed from refresh token", slog.Any("user_id", identity.UserID))

	return identity, nil
}

// ExplicitRefresh verifies and rotates the presented refresh token. The
// presented token is consumed inside the transaction; of two concurrent
// refreshes with the same token, exactly one wins and the other gets an
// invalid-token error.
func (srv *sessionService) ExplicitRefresh(ctx context.Context, cookies service.CookieTransport) (*entity.Identity, error) {
	now := srv.clock.Now()

	raw, ok := cookies.RefreshToken()
	if !ok {
		return nil, domainerrors.ErrMissingRefreshToken
	}

	tokenHash := srv.codec.HashRefreshToken(raw)

	newRefreshValue, err := srv.codec.NewRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}
	refreshExpiry := now.Add(srv.codec.RefreshTokenTTL())

	var identity *entity.Identity
	var expired bool

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		record, err := refreshRepo.FindByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return domainerrors.ErrInvalidRefreshToken.WrapMessage("refresh token not recognized")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		// An expired record is swept on presentation. The tx must commit so
		// the sweep sticks, so the rejection itself is reported after it.
		if !record.ExpiresAt.After(now) {
			expired = true

			return refreshRepo.DeleteByIDs(ctx, []uuid.UUID{record.ID})
		}

		// Consume the presented token. Zero rows means a concurrent refresh
		// already rotated it; that request won, this one is rejected.
		rows, err := refreshRepo.DeleteByHash(ctx, tokenHash)
		if err != nil {
			return errors.Wrap(err, "failed to consume refresh token")
		}
		if rows == 0 {
			return domainerrors.ErrInvalidRefreshToken.WrapMessage("refresh token already rotated")
		}

		if err := refreshRepo.DeleteExpired(ctx, record.UserID, now); err != nil {
			return errors.Wrap(err, "failed to sweep expired refresh tokens")
		}

		if err := refreshRepo.Create(ctx, &entity.RefreshToken{
			UserID:    record.UserID,
			TokenHash: srv.codec.HashRefreshToken(newRefreshValue),
			ExpiresAt: refreshExpiry,
		}); err != nil {
			return errors.Wrap(err, "failed to store rotated refresh token")
		}

		identity = &entity.Identity{UserID: record.UserID}

		return nil
	})
	if err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			// The session is gone for good; make the client forget it too.
			cookies.ClearAccessToken()
			cookies.ClearRefreshToken()
		}
		srv.log(ctx).Info("Refresh token rejected", slog.Any("error", err))

		return nil, err
	}

	if expired {
		cookies.ClearAccessToken()
		cookies.ClearRefreshToken()
		srv.log(ctx).Info("Refresh token rejected", slog.String("reason", "expired"))

		return nil, domainerrors.ErrRefreshTokenExpired.WrapMessage("refresh token expired")
	}

	accessToken, err := srv.codec.Create(identity.UserID, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create access token")
	}

	cookies.SetAccessToken(accessToken, now.Add(srv.codec.AccessTokenTTL()))
	cookies.SetRefreshToken(newRefreshValue, refreshExpiry)

	srv.log(ctx).Debug("Refresh token rotated", slog.Any("user_id", identity.UserID))

	return identity, nil
}

// Revoke ends the current session. Unknown or absent tokens are not errors;
// signing out twice must succeed.
func (srv *sessionService) Revoke(ctx context.Context, cookies service.CookieTransport) error {
	// Clear the cookies regardless of what the store says; the client's
	// copy of the session dies either way.
	defer func() {
		cookies.ClearAccessToken()
		cookies.ClearRefreshToken()
	}()

	raw, ok := cookies.RefreshToken()
	if !ok {
		return nil
	}

	tokenHash := srv.codec.HashRefreshToken(raw)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		_, err := repoFactory.RefreshTokenRepo().DeleteByHash(ctx, tokenHash)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke session", slog.Any("error", err))

		return errors.Wrap(err, "failed to revoke session")
	}

	srv.log(ctx).Debug("Session revoked")

	return nil
}

// RevokeAllForUser signs the user out everywhere by removing all their
// refresh tokens. Outstanding access tokens still run out on their own
// short expiry.
func (srv *sessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.RefreshTokenRepo().DeleteByUserID(ctx, userID)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke all sessions", slog.Any("error", err), slog.Any("user_id", userID))

		return errors.Wrap(err, "failed to revoke all sessions")
	}

	srv.log(ctx).Info("All sessions revoked", slog.Any("user_id", userID))

	return nil
}

// ActiveSessions lists the user's live sessions for the devices view.
func (srv *sessionService) ActiveSessions(ctx context.Context, userID uuid.UUID, cookies service.CookieTransport) ([]*usecase.SessionInfo, error) {
	currentHash := ""
	if raw, ok := cookies.RefreshToken(); ok {
		currentHash = srv.codec.HashRefreshToken(raw)
	}

	var sessions []*usecase.SessionInfo

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokens, err := repoFactory.RefreshTokenRepo().FindByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find refresh tokens")
		}

		sessions = make([]*usecase.SessionInfo, 0, len(tokens))
		for _, token := range tokens {
			sessions = append(sessions, &usecase.SessionInfo{
				ID:        token.ID,
				CreatedAt: token.CreatedAt,
				ExpiresAt: token.ExpiresAt,
				Current:   currentHash != "" && token.TokenHash == currentHash,
			})
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list sessions", slog.Any("error", err), slog.Any("user_id", userID))

		return nil, errors.Wrap(err, "failed to list sessions")
	}

	return sessions, nil
}
