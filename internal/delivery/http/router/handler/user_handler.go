// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"taskboard/internal/delivery/http/cookie"
	"taskboard/internal/delivery/http/middleware"
	"taskboard/internal/delivery/http/response"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for user- and session-related handlers.
type UserHandler struct {
	users    usecase.UserUsecase
	sessions usecase.SessionUsecase
	cookies  *cookie.Factory
	logger   *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(users usecase.UserUsecase, sessions usecase.SessionUsecase, cookies *cookie.Factory, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		sessions: sessions,
		cookies:  cookies,
		logger:   logger,
	}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userView is the outward shape of an account. The password hash never
// leaves the server.
type userView struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(user *entity.User) userView {
	return userView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

type sessionView struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Current   bool      `json:"current"`
}

// Signup registers a new account and signs it in immediately: the response
// carries the session cookie pair.
func (h *UserHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.users.Signup(c.Request().Context(), usecase.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	jar := h.cookies.FromEchoContext(c)
	if err := h.sessions.Issue(c.Request().Context(), output.User.ID, jar); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserView(output.User), "User registered successfully")
}

// Signin checks the credentials and issues a fresh session cookie pair.
func (h *UserHandler) Signin(c echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signin input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.users.Signin(c.Request().Context(), usecase.SigninInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	jar := h.cookies.FromEchoContext(c)
	if err := h.sessions.Issue(c.Request().Context(), output.User.ID, jar); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserView(output.User), "Signin successful")
}

// Refresh rotates the refresh token presented in the cookie and re-issues
// the access token.
func (h *UserHandler) Refresh(c echo.Context) error {
	jar := h.cookies.FromEchoContext(c)

	if _, err := h.sessions.ExplicitRefresh(c.Request().Context(), jar); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Token refreshed successfully")
}

// Signout revokes the current session. Always succeeds, signed in or not.
func (h *UserHandler) Signout(c echo.Context) error {
	jar := h.cookies.FromEchoContext(c)

	if err := h.sessions.Revoke(c.Request().Context(), jar); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Signout successful")
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	user, err := h.users.GetProfile(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserView(user), "")
}

// Sessions lists the authenticated user's active sessions.
func (h *UserHandler) Sessions(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	jar := h.cookies.FromEchoContext(c)
	sessions, err := h.sessions.ActiveSessions(c.Request().Context(), identity.UserID, jar)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, sessionView{
			ID:        session.ID,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
			Current:   session.Current,
		})
	}

	return response.Success(c, http.StatusOK, views, "")
}

// Delete removes the authenticated user's account with every session and
// task, and clears the cookies so the browser forgets the dead session.
func (h *UserHandler) Delete(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	if err := h.users.DeleteAccount(c.Request().Context(), identity.UserID); err != nil {
		return errors.WithStack(err)
	}

	jar := h.cookies.FromEchoContext(c)
	jar.ClearAccessToken()
	jar.ClearRefreshToken()

	return response.Success(c, http.StatusOK, nil, "Account deleted")
}
