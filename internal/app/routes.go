package app

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/keyxmakerx/portfolio/internal/plugins/admin"
	"github.com/keyxmakerx/portfolio/internal/plugins/auth"
	"github.com/keyxmakerx/portfolio/internal/plugins/categories"
	"github.com/keyxmakerx/portfolio/internal/plugins/media"
	"github.com/keyxmakerx/portfolio/internal/plugins/messages"
	"github.com/keyxmakerx/portfolio/internal/plugins/projects"
	"github.com/keyxmakerx/portfolio/internal/plugins/site"
	"github.com/keyxmakerx/portfolio/internal/plugins/stories"
)

// RegisterRoutes wires every plugin and registers its routes. This is the
// single place where plugins are constructed; they only see each other
// through the interfaces passed in here.
func (a *App) RegisterRoutes() {
	e := a.Echo
	cfg := a.Config
	st := a.Store

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Media files are served straight from the uploads root.
	e.Static("/uploads", st.Uploads().Root())

	// --- Plugins ---

	authService := auth.NewAuthService(auth.NewCredentialRepository(st), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	mediaService := media.NewMediaService(st.Uploads(), cfg.Upload.MaxSize)
	messageService := messages.NewMessageService(st)

	api := e.Group("/api")
	adminAPI := api.Group("/admin", auth.RequireAdmin(authService))

	auth.RegisterRoutes(api, adminAPI, auth.NewHandler(authService))
	media.RegisterRoutes(api, adminAPI, media.NewHandler(mediaService, media.NewScanner(st)), cfg.Upload.MaxSize)
	projects.RegisterRoutes(api, adminAPI, projects.NewHandler(projects.NewProjectService(st, mediaService)))
	stories.RegisterRoutes(api, adminAPI, stories.NewHandler(stories.NewStoryService(st, mediaService)))
	categories.RegisterRoutes(api, adminAPI, categories.NewHandler(categories.NewCategoryService(st)))
	messages.RegisterRoutes(api, adminAPI, messages.NewHandler(messageService))
	site.RegisterRoutes(api, adminAPI, site.NewHandler(site.NewSiteService(st, mediaService)))
	admin.RegisterRoutes(adminAPI, admin.NewHandler(admin.NewStatsService(st)))

	// Unknown /api paths must 404 as JSON rather than fall through to the
	// single page app below.
	api.RouteNotFound("/*", func(c echo.Context) error {
		return echo.ErrNotFound
	})

	a.registerStatic()
}

// registerStatic serves the built front end from StaticDir, falling back to
// index.html so client-side routes resolve. Disabled when StaticDir is
// empty or has no index.html.
func (a *App) registerStatic() {
	dir := a.Config.StaticDir
	if dir == "" {
		return
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		return
	}
	a.Echo.Use(echomw.StaticWithConfig(echomw.StaticConfig{
		Root:  dir,
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return hasPathPrefix(p, "/api") || hasPathPrefix(p, "/uploads") || p == "/healthz"
		},
	}))
}

// hasPathPrefix reports whether p is prefix or lies below it.
func hasPathPrefix(p, prefix string) bool {
	return p == prefix || len(p) > len(prefix) && p[:len(prefix)] == prefix && p[len(prefix)] == '/'
}
