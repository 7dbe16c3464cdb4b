package admin

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the dashboard route on the admin group.
func RegisterRoutes(admin *echo.Group, h *Handler) {
	admin.GET("/stats", h.Stats)
}
