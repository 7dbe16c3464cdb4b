package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
)

// BlockIPs rejects clients for which isBanned reports true with 403.
func BlockIPs(isBanned func(ip string) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if isBanned(ip) {
				slog.Warn("request from banned ip", slog.String("ip", ip), slog.String("path", c.Request().URL.Path))
				return apperror.NewForbidden("access denied")
			}
			return next(c)
		}
	}
}
