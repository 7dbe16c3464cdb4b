package media

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/middleware"
)

// RegisterRoutes sets up media routes. Uploads carry a body limit of
// maxUploadSize plus 10% for multipart overhead, checked before anything
// is read into memory.
func RegisterRoutes(api, admin *echo.Group, h *Handler, maxUploadSize int64) {
	api.GET("/workshop", h.ListWorkshop)

	uploadRateLimit := middleware.RateLimit(60, time.Minute)
	bodyLimit := bodyLimitMiddleware(maxUploadSize + maxUploadSize/10)

	admin.POST("/uploads", h.Upload, uploadRateLimit, bodyLimit)
	admin.POST("/workshop", h.UploadWorkshop, uploadRateLimit, bodyLimit)
	admin.DELETE("/workshop/:filename", h.DeleteWorkshop)

	admin.GET("/media/unused", h.Unused)
	admin.POST("/media/unused/delete", h.DeleteUnused)
}

// bodyLimitMiddleware rejects request bodies larger than maxBytes.
func bodyLimitMiddleware(maxBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().ContentLength > maxBytes {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body too large; maximum is %d MB", maxBytes/(1024*1024)))
			}
			c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBytes)
			return next(c)
		}
	}
}
