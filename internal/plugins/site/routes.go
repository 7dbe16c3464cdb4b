package site

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the about and contact routes.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.GET("/about", h.GetAbout)
	api.GET("/contact", h.GetContact)

	admin.PUT("/about", h.UpdateAbout)
	admin.PUT("/contact", h.UpdateContact)
}
