package categories

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

func newTestService(t *testing.T) (*categoryService, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "db.json")
	st := store.New(store.Options{
		ProjectsFile:         filepath.Join(dir, "projects.json"),
		StoriesFile:          filepath.Join(dir, "stories.json"),
		DBFile:               dbFile,
		Uploads:              uploads.NewResolver(filepath.Join(dir, "uploads")),
		DefaultAdminPassword: "admin",
		HashPassword:         func(string) (string, error) { return "hash", nil },
	})
	if err := st.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	return NewCategoryService(st).(*categoryService), st, dbFile
}

func assertAppError(t *testing.T, err error, wantCode int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *apperror.AppError", err)
	}
	if appErr.Code != wantCode {
		t.Errorf("error code = %d, want %d", appErr.Code, wantCode)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.Create(ctx, "  Game   Design ")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if cat.ID != "game-design" || cat.Label != "Game Design" {
		t.Errorf("Create() = %+v", cat)
	}

	_, err = svc.Create(ctx, "game design")
	assertAppError(t, err, http.StatusConflict)

	_, err = svc.Create(ctx, "<b></b>")
	assertAppError(t, err, http.StatusUnprocessableEntity)

	if n := len(svc.List(ctx)); n != 4 {
		t.Errorf("List() has %d categories, want 4", n)
	}
}

func TestRename_KeepsID(t *testing.T) {
	svc, _, _ := newTestService(t)
	cat, err := svc.Rename(context.Background(), "web", "Websites")
	if err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if cat.ID != "web" || cat.Label != "Websites" {
		t.Errorf("Rename() = %+v", cat)
	}
	_, err = svc.Rename(context.Background(), "nope", "X")
	assertAppError(t, err, http.StatusNotFound)
}

func TestDelete_RefusesReferencedCategory(t *testing.T) {
	svc, st, dbFile := newTestService(t)
	ctx := context.Background()
	if err := st.Update(ctx, func(d *store.Data) error {
		d.Projects = []*content.Project{{ID: "site", Title: "Site", Category: "design"}}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	before := readFile(t, dbFile)

	assertAppError(t, svc.Delete(ctx, "design"), http.StatusConflict)

	if !bytes.Equal(before, readFile(t, dbFile)) {
		t.Error("db.json changed after a refused delete")
	}
	if n := len(svc.List(ctx)); n != 3 {
		t.Errorf("List() has %d categories, want 3", n)
	}

	if err := svc.Delete(ctx, "web"); err != nil {
		t.Fatalf("Delete(web) error: %v", err)
	}
	assertAppError(t, svc.Delete(ctx, "web"), http.StatusNotFound)
}

func TestDelete_RefusesLastCategory(t *testing.T) {
	svc, _, dbFile := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"web", "design"} {
		if err := svc.Delete(ctx, id); err != nil {
			t.Fatalf("Delete(%s) error: %v", id, err)
		}
	}
	before := readFile(t, dbFile)

	assertAppError(t, svc.Delete(ctx, "3d-printing"), http.StatusConflict)

	got := svc.List(ctx)
	if len(got) != 1 || got[0].ID != "3d-printing" {
		t.Errorf("List() = %v, want only 3d-printing", got)
	}
	if !bytes.Equal(before, readFile(t, dbFile)) {
		t.Error("db.json changed after a refused delete")
	}
}

func TestHandler_CreateAndList(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(`{"label":"Photo"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"id":"photo"`) {
		t.Errorf("Create() = %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec = httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.Body.String(), `"label":"Photo"`) {
		t.Errorf("List() body = %s", rec.Body.String())
	}
}
