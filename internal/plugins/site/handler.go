package site

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
)

// Handler handles HTTP requests for the about and contact pages.
type Handler struct {
	service SiteService
}

// NewHandler creates a new site handler.
func NewHandler(service SiteService) *Handler {
	return &Handler{service: service}
}

// GetAbout returns the about page (GET /api/about).
func (h *Handler) GetAbout(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.About(c.Request().Context()))
}

// UpdateAbout replaces the about page (PUT /api/admin/about).
func (h *Handler) UpdateAbout(c echo.Context) error {
	var input content.About
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	about, err := h.service.UpdateAbout(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, about)
}

// GetContact returns the contact page (GET /api/contact).
func (h *Handler) GetContact(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Contact(c.Request().Context()))
}

// UpdateContact replaces the contact page (PUT /api/admin/contact).
func (h *Handler) UpdateContact(c echo.Context) error {
	var input content.Contact
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	contact, err := h.service.UpdateContact(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}
