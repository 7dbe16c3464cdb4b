package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
)

// Handler handles HTTP requests for admin authentication. Handlers are thin:
// they bind the request, call the service, and write JSON.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// Login exchanges the admin password for a token (POST /api/auth/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	resp, err := h.service.Login(c.Request().Context(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Session reports the current token's expiry (GET /api/admin/session).
func (h *Handler) Session(c echo.Context) error {
	claims := GetClaims(c)
	if claims == nil || claims.ExpiresAt == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"valid":     true,
		"expiresAt": claims.ExpiresAt.Time,
	})
}

// ChangePassword replaces the admin password (PUT /api/admin/password).
func (h *Handler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if err := h.service.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}
