package media

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

// Handler handles HTTP requests for uploads, the workshop gallery and
// unused media cleanup.
type Handler struct {
	service MediaService
	scanner *Scanner
}

// NewHandler creates a new media handler.
func NewHandler(service MediaService, scanner *Scanner) *Handler {
	return &Handler{service: service, scanner: scanner}
}

// Upload stores a multipart file for an entity (POST /api/admin/uploads).
// Form fields: file, kind (projects, stories, site), entityId.
func (h *Handler) Upload(c echo.Context) error {
	input, err := readUpload(c)
	if err != nil {
		return err
	}
	input.Kind = c.FormValue("kind")
	if input.Kind == "" {
		input.Kind = uploads.KindProjects
	}
	input.EntityID = c.FormValue("entityId")
	if input.EntityID == "" && input.Kind == uploads.KindSite {
		input.EntityID = "about"
	}

	file, err := h.service.Upload(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, file)
}

// UploadWorkshop adds an image to the workshop gallery (POST /api/admin/workshop).
func (h *Handler) UploadWorkshop(c echo.Context) error {
	input, err := readUpload(c)
	if err != nil {
		return err
	}
	file, err := h.service.UploadWorkshop(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, file)
}

// ListWorkshop lists the workshop gallery (GET /api/workshop).
func (h *Handler) ListWorkshop(c echo.Context) error {
	files, err := h.service.ListWorkshop(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// DeleteWorkshop removes a workshop image (DELETE /api/admin/workshop/:filename).
func (h *Handler) DeleteWorkshop(c echo.Context) error {
	if err := h.service.DeleteWorkshop(c.Request().Context(), c.Param("filename")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// Unused reports files nothing references (GET /api/admin/media/unused).
func (h *Handler) Unused(c echo.Context) error {
	files, err := h.scanner.FindUnused(c.Request().Context())
	if err != nil {
		return apperror.NewInternal(err)
	}
	return c.JSON(http.StatusOK, NewUnusedReport(files))
}

// DeleteUnused removes selected unused files
// (POST /api/admin/media/unused/delete). Per-file failures are reported in
// the body; the request itself succeeds.
func (h *Handler) DeleteUnused(c echo.Context) error {
	var req DeleteRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if len(req.Paths) == 0 {
		return apperror.NewBadRequest("no paths provided")
	}
	return c.JSON(http.StatusOK, h.scanner.DeleteUnused(c.Request().Context(), req.Paths))
}

// readUpload reads the "file" form field into memory. The route's body
// limit bounds how much can be read.
func readUpload(c echo.Context) (UploadInput, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return UploadInput{}, apperror.NewBadRequest("no file provided")
	}
	src, err := fh.Open()
	if err != nil {
		return UploadInput{}, apperror.NewInternal(err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return UploadInput{}, apperror.NewBadRequest("could not read upload")
	}
	return UploadInput{
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get(echo.HeaderContentType),
		Data:         data,
	}, nil
}
