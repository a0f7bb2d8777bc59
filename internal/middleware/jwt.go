package middleware // reusable HTTP middleware for the API

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucascassio/trocalivros/internal/repository"
	"github.com/lucascassio/trocalivros/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and rejects tokens whose jti is on the revocation denylist.
// On success it stores the authenticated user id (uint64) under
// "user_id" and the token id under "jti" so handlers can read them via
// c.Get().
func JWTAuth(secret string, tokens *repository.TokenRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token", "kind": "unauthorized"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token", "kind": "unauthorized"})
			}

			// Logout works by denylisting the jti, so the check has to
			// run on every authenticated request.
			ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
			defer cancel()
			revoked, err := tokens.IsRevoked(ctx, claims.JTI)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token check failed", "kind": "internal"})
			}
			if revoked {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked", "kind": "unauthorized"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("jti", claims.JTI)
			return next(c)
		}
	}
}
