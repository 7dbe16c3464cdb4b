// Package middleware provides the HTTP middleware for the portfolio's Echo
// server. Global middleware is registered in internal/app; per-route
// middleware (rate limits, banned IP checks) is attached by each plugin.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs every request once it completes. Static upload hits
// below 400 are logged at debug to keep the log readable.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			case isStaticPath(req.URL.Path):
				level = slog.LevelDebug
			}
			slog.LogAttrs(req.Context(), level, "request", attrs...)
			return nil
		}
	}
}

func isStaticPath(path string) bool {
	return len(path) >= 9 && path[:9] == "/uploads/"
}
