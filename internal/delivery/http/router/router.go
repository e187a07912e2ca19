// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"taskboard/internal/delivery/http/middleware"
	"taskboard/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler         *handler.UserHandler
	TaskHandler         *handler.TaskHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler *handler.UserHandler
	taskHandler *handler.TaskHandler
	auth        *middleware.AuthMiddleware
	requestID   *middleware.RequestIDMiddleware
	rateLimit   *middleware.RateLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler: params.UserHandler,
		taskHandler: params.TaskHandler,
		auth:        params.AuthMiddleware,
		requestID:   params.RequestIDMiddleware,
		rateLimit:   params.RateLimitMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestID.Process)
	// Silent refresh runs on every route; it resolves identity and keeps
	// the access cookie fresh, but never rejects a request by itself.
	e.Use(r.auth.RefreshJWT)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	v1 := e.Group("/v1")

	// Credential-bearing endpoints are rate limited per client IP.
	users := v1.Group("/users")
	{
		users.POST("/signup", r.userHandler.Signup, r.rateLimit.Limit)
		users.POST("/signin", r.userHandler.Signin, r.rateLimit.Limit)
		users.POST("/refresh", r.userHandler.Refresh, r.rateLimit.Limit)
		users.POST("/signout", r.userHandler.Signout)
		users.GET("/me", r.userHandler.Me, r.auth.RequireAuth)
		users.GET("/sessions", r.userHandler.Sessions, r.auth.RequireAuth)
		users.DELETE("/delete", r.userHandler.Delete, r.auth.RequireAuth)
	}

	// Task routes all require an authenticated user.
	tasks := v1.Group("/tasks", r.auth.RequireAuth)
	{
		tasks.POST("", r.taskHandler.Create)
		tasks.GET("", r.taskHandler.List)
		tasks.GET("/:id", r.taskHandler.Get)
		tasks.PATCH("/:id", r.taskHandler.Update)
		tasks.DELETE("/:id", r.taskHandler.Delete)
		tasks.POST("/bulk/delete", r.taskHandler.BulkDelete)
		tasks.POST("/bulk/status", r.taskHandler.BulkStatus)
	}
}
