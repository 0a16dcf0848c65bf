// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/marketcore/auth-service/internal/config"
	"github.com/marketcore/auth-service/internal/handler"
	"github.com/marketcore/auth-service/internal/middleware"
	"github.com/marketcore/auth-service/internal/model"
)

// Register wires every route of the service.
//
// Unauthenticated credential endpoints live under /v1/auth and sit
// behind the Redis token bucket: they are the abuse surface (password
// guessing, OTP spray) and run before any identity exists.  Endpoints
// that operate on an established identity live under /v1 behind the
// JWT middleware; the role gate only checks that the token carries one
// of the seeded roles, it is not an authorization policy.
func Register(e *echo.Echo, a *handler.AuthHandler, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limited := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/v1/auth", limited)
	g.POST("/register", a.Register)
	g.POST("/otp", a.SendOTP)
	g.POST("/login", a.Login)
	g.POST("/refresh-token", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.AccessTokenSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleSeller, model.RoleClient))
	auth.GET("/me", a.Me)
	auth.POST("/2fa/setup", a.TwoFactorSetup)
	auth.POST("/2fa/disable", a.TwoFactorDisable)
}
