// Package middleware contains the echo middleware for the HTTP delivery.
package middleware

import (
	"log/slog"

	"taskboard/internal/delivery/http/cookie"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"

	"github.com/labstack/echo/v4"
)

// identityKey is the echo.Context key under which RefreshJWT stores the
// authenticated identity.
const identityKey = "identity"

// AuthMiddleware authenticates requests from the session cookies and keeps
// access tokens fresh as a side effect.
type AuthMiddleware struct {
	sessions usecase.SessionUsecase
	cookies  *cookie.Factory
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(sessions usecase.SessionUsecase, cookies *cookie.Factory, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookies: cookies, logger: logger}
}

// RefreshJWT runs on every route. It resolves the request's identity from
// the cookie pair, silently renewing the access token when needed, and never
// rejects the request: routes that demand a user stack RequireAuth on top.
func (m *AuthMiddleware) RefreshJWT(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		jar := m.cookies.FromEchoContext(c)

		identity, err := m.sessions.SilentRefresh(c.Request().Context(), jar)
		if err != nil {
			// Storage trouble must not take every route down; the request
			// just proceeds unauthenticated.
			m.logger.Warn("Silent refresh failed", slog.Any("error", err))
		}
		if identity != nil {
			c.Set(identityKey, identity)
		}

		return next(c)
	}
}

// RequireAuth rejects requests that RefreshJWT left unauthenticated.
// It must be used AFTER RefreshJWT.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := IdentityFrom(c); !ok {
			return domainerrors.ErrUnauthorized
		}

		return next(c)
	}
}

// IdentityFrom extracts the authenticated identity set by RefreshJWT.
func IdentityFrom(c echo.Context) (*entity.Identity, bool) {
	identity, ok := c.Get(identityKey).(*entity.Identity)
	if !ok || identity == nil {
		return nil, false
	}

	return identity, true
}
