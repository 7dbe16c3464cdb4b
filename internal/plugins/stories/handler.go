package stories

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/sanitize"
)

// Handler handles HTTP requests for stories.
type Handler struct {
	service StoryService
}

// NewHandler creates a new story handler.
func NewHandler(service StoryService) *Handler {
	return &Handler{service: service}
}

// List returns stories without view history (GET /api/stories).
func (h *Handler) List(c echo.Context) error {
	list := h.service.List(c.Request().Context())
	out := make([]*content.Story, len(list))
	for i, s := range list {
		out[i] = s.Public()
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one story (GET /api/stories/:id).
func (h *Handler) Get(c echo.Context) error {
	s, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Public())
}

// View counts a view (POST /api/stories/:id/view).
func (h *Handler) View(c echo.Context) error {
	views, err := h.service.RecordView(c.Request().Context(), c.Param("id"), content.ViewRecord{
		IP:        c.RealIP(),
		UserAgent: sanitize.Line(c.Request().UserAgent(), 300),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"views": views})
}

// AdminList returns stories with view history (GET /api/admin/stories).
func (h *Handler) AdminList(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.List(c.Request().Context()))
}

// AdminGet returns one story with view history (GET /api/admin/stories/:id).
func (h *Handler) AdminGet(c echo.Context) error {
	s, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// Create adds a story (POST /api/admin/stories).
func (h *Handler) Create(c echo.Context) error {
	var input content.Story
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	s, err := h.service.Create(c.Request().Context(), &input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

// Update edits a story (PUT /api/admin/stories/:id).
func (h *Handler) Update(c echo.Context) error {
	var input content.Story
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	s, err := h.service.Update(c.Request().Context(), c.Param("id"), &input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// Delete removes a story (DELETE /api/admin/stories/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
