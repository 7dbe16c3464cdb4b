package messages

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
)

// ReadRequest is the body of PUT /api/admin/messages/:id/read. A missing
// body marks the message read.
type ReadRequest struct {
	Read *bool `json:"read"`
}

// Handler handles HTTP requests for messages and banned IPs.
type Handler struct {
	service MessageService
}

// NewHandler creates a new message handler.
func NewHandler(service MessageService) *Handler {
	return &Handler{service: service}
}

// Submit stores a contact form message (POST /api/messages).
func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	msg, err := h.service.Submit(c.Request().Context(), req, c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": msg.ID, "status": "received"})
}

// List returns all messages (GET /api/admin/messages).
func (h *Handler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.List(c.Request().Context()))
}

// MarkRead flags a message read or unread (PUT /api/admin/messages/:id/read).
func (h *Handler) MarkRead(c echo.Context) error {
	var req ReadRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	read := true
	if req.Read != nil {
		read = *req.Read
	}
	msg, err := h.service.MarkRead(c.Request().Context(), c.Param("id"), read)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msg)
}

// Delete removes a message (DELETE /api/admin/messages/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBanned returns the ban list (GET /api/admin/banned-ips).
func (h *Handler) ListBanned(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.ListBanned(c.Request().Context()))
}

// Ban adds an IP to the ban list (POST /api/admin/banned-ips).
func (h *Handler) Ban(c echo.Context) error {
	var req BanRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	ban, err := h.service.Ban(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ban)
}

// Unban removes an IP from the ban list (DELETE /api/admin/banned-ips/:ip).
func (h *Handler) Unban(c echo.Context) error {
	if err := h.service.Unban(c.Request().Context(), c.Param("ip")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
