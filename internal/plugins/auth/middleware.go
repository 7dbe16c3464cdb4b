package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
)

// contextKeyClaims stores validated token claims in the Echo context.
const contextKeyClaims = "auth_claims"

// RequireAdmin returns middleware that validates the bearer token and
// stores its claims in the request context.
func RequireAdmin(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return apperror.NewUnauthorized("authentication required")
			}
			claims, err := service.ValidateToken(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(contextKeyClaims, claims)
			return next(c)
		}
	}
}

// GetClaims returns the admin claims set by RequireAdmin, or nil.
func GetClaims(c echo.Context) *Claims {
	claims, _ := c.Get(contextKeyClaims).(*Claims)
	return claims
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
