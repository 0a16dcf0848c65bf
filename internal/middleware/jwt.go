package middleware // contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/marketcore/auth-service/internal/utils"
)

// claimsKey is the context key the JWT middleware stores the parsed
// access claims under.
const claimsKey = "auth_claims"

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects its typed claims into the request context.  The
// provided secret must match the one used when issuing tokens.
// Verification is purely cryptographic: access tokens are stateless
// and no store is consulted per request.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// CurrentClaims returns the access claims stored by JWTAuth, or nil
// when the request was not authenticated.
func CurrentClaims(c echo.Context) *utils.AccessClaims {
	claims, _ := c.Get(claimsKey).(*utils.AccessClaims)
	return claims
}
