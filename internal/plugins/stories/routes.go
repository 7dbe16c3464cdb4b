package stories

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/middleware"
)

// RegisterRoutes sets up story routes.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.GET("/stories", h.List)
	api.GET("/stories/:id", h.Get)
	api.POST("/stories/:id/view", h.View, middleware.RateLimit(30, time.Minute))

	admin.GET("/stories", h.AdminList)
	admin.GET("/stories/:id", h.AdminGet)
	admin.POST("/stories", h.Create)
	admin.PUT("/stories/:id", h.Update)
	admin.DELETE("/stories/:id", h.Delete)
}
