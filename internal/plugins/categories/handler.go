package categories

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
)

// CategoryRequest is the body of category create and rename.
type CategoryRequest struct {
	Label string `json:"label"`
}

// Handler handles HTTP requests for categories.
type Handler struct {
	service CategoryService
}

// NewHandler creates a new category handler.
func NewHandler(service CategoryService) *Handler {
	return &Handler{service: service}
}

// List returns all categories (GET /api/categories).
func (h *Handler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.List(c.Request().Context()))
}

// Create adds a category (POST /api/admin/categories).
func (h *Handler) Create(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	cat, err := h.service.Create(c.Request().Context(), req.Label)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

// Rename relabels a category (PUT /api/admin/categories/:id).
func (h *Handler) Rename(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	cat, err := h.service.Rename(c.Request().Context(), c.Param("id"), req.Label)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

// Delete removes a category (DELETE /api/admin/categories/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
