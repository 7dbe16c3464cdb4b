package categories

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up category routes.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.GET("/categories", h.List)

	admin.POST("/categories", h.Create)
	admin.PUT("/categories/:id", h.Rename)
	admin.DELETE("/categories/:id", h.Delete)
}
