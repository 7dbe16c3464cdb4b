package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler handles admin dashboard requests.
type Handler struct {
	service StatsService
}

// NewHandler creates a new admin handler.
func NewHandler(service StatsService) *Handler {
	return &Handler{service: service}
}

// Stats returns the dashboard summary (GET /api/admin/stats).
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
