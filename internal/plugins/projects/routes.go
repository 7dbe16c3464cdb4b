package projects

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/middleware"
)

// RegisterRoutes sets up project routes. View counting is rate limited per
// IP so a reload loop cannot inflate counts or churn the data file.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.GET("/projects", h.List)
	api.GET("/projects/:id", h.Get)
	api.POST("/projects/:id/view", h.View, middleware.RateLimit(30, time.Minute))

	admin.GET("/projects", h.AdminList)
	admin.GET("/projects/:id", h.AdminGet)
	admin.POST("/projects", h.Create)
	admin.PUT("/projects/:id", h.Update)
	admin.PUT("/projects/:id/featured", h.Feature)
	admin.DELETE("/projects/:id", h.Delete)
}
