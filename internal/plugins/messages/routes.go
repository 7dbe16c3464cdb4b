package messages

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/middleware"
)

// RegisterRoutes sets up message and ban routes. Submissions are refused
// for banned IPs and limited to 5 per IP per 10 minutes.
func RegisterRoutes(api, admin *echo.Group, h *Handler) {
	api.POST("/messages", h.Submit,
		middleware.BlockIPs(h.service.IsBanned),
		middleware.RateLimit(5, 10*time.Minute),
	)

	admin.GET("/messages", h.List)
	admin.PUT("/messages/:id/read", h.MarkRead)
	admin.DELETE("/messages/:id", h.Delete)

	admin.GET("/banned-ips", h.ListBanned)
	admin.POST("/banned-ips", h.Ban)
	admin.DELETE("/banned-ips/:ip", h.Unban)
}
