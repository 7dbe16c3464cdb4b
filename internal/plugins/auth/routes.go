package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/middleware"
)

// RegisterRoutes sets up the auth routes. Login is public and rate limited
// to 10 attempts per IP per 15 minutes; the rest sit on the admin group.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.POST("/auth/login", h.Login, middleware.RateLimit(10, 15*time.Minute))

	admin.GET("/session", h.Session)
	admin.PUT("/password", h.ChangePassword)
}
