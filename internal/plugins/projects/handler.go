package projects

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/sanitize"
)

// Handler handles HTTP requests for projects.
type Handler struct {
	service ProjectService
}

// NewHandler creates a new project handler.
func NewHandler(service ProjectService) *Handler {
	return &Handler{service: service}
}

// FeatureRequest is the body of PUT /api/admin/projects/:id/featured.
type FeatureRequest struct {
	Featured bool `json:"featured"`
}

// List returns projects without view history (GET /api/projects).
// Query: category, featured=true.
func (h *Handler) List(c echo.Context) error {
	featured, _ := strconv.ParseBool(c.QueryParam("featured"))
	list := h.service.List(c.Request().Context(), ListFilter{
		Category: c.QueryParam("category"),
		Featured: featured,
	})
	out := make([]*content.Project, len(list))
	for i, p := range list {
		out[i] = p.Public()
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one project (GET /api/projects/:id).
func (h *Handler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Public())
}

// View counts a view (POST /api/projects/:id/view).
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

// AdminList returns projects with view history (GET /api/admin/projects).
func (h *Handler) AdminList(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.List(c.Request().Context(), ListFilter{
		Category: c.QueryParam("category"),
	}))
}

// AdminGet returns one project with view history (GET /api/admin/projects/:id).
func (h *Handler) AdminGet(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a project (POST /api/admin/projects).
func (h *Handler) Create(c echo.Context) error {
	var input content.Project
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	p, err := h.service.Create(c.Request().Context(), &input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update edits a project (PUT /api/admin/projects/:id).
func (h *Handler) Update(c echo.Context) error {
	var input content.Project
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	p, err := h.service.Update(c.Request().Context(), c.Param("id"), &input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Feature sets the featured flag (PUT /api/admin/projects/:id/featured).
func (h *Handler) Feature(c echo.Context) error {
	var req FeatureRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	p, err := h.service.SetFeatured(c.Request().Context(), c.Param("id"), req.Featured)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a project (DELETE /api/admin/projects/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
