package stories

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/plugins/media"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

func newTestService(t *testing.T) (*storyService, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "uploads")
	resolver := uploads.NewResolver(root)
	st := store.New(store.Options{
		ProjectsFile:         filepath.Join(dir, "projects.json"),
		StoriesFile:          filepath.Join(dir, "stories.json"),
		DBFile:               filepath.Join(dir, "db.json"),
		Uploads:              resolver,
		DefaultAdminPassword: "admin",
		HashPassword:         func(string) (string, error) { return "hash", nil },
	})
	if err := st.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	svc := NewStoryService(st, media.NewMediaService(resolver, 1<<20)).(*storyService)
	return svc, st, root
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func assertCode(t *testing.T, err error, want int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *apperror.AppError", err)
	}
	if appErr.Code != want {
		t.Errorf("error code = %d, want %d", appErr.Code, want)
	}
}

func TestCreate_WritesDataURIIntoStoryDir(t *testing.T) {
	svc, _, root := newTestService(t)

	s, err := svc.Create(context.Background(), &content.Story{
		Title:      "Lake Trip",
		Content:    "We went to the lake.",
		CoverImage: pngDataURI(t),
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if s.ID != "lake-trip" {
		t.Errorf("ID = %q", s.ID)
	}
	if !strings.HasPrefix(s.CoverImage, "/uploads/stories/lake-trip/") {
		t.Fatalf("CoverImage = %q", s.CoverImage)
	}
	rel := strings.TrimPrefix(s.CoverImage, "/uploads/")
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
		t.Errorf("cover file missing: %v", err)
	}
}

func TestCreate_NormalizesLegacyReferences(t *testing.T) {
	svc, _, root := newTestService(t)
	path := filepath.Join(root, "stories", "trip", "a.jpg")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := svc.Create(context.Background(), &content.Story{
		ID:     "trip",
		Title:  "Trip",
		Images: []string{"uploads/stories/trip/a.jpg"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Images[0] != "/uploads/stories/trip/a.jpg" {
		t.Errorf("Images[0] = %q, want canonical path", s.Images[0])
	}
}

func TestCreate_RequiresTitle(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), &content.Story{Content: "text"})
	assertCode(t, err, http.StatusUnprocessableEntity)
}

func TestListAndUpdate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		base = base.Add(time.Hour)
		return base
	}

	first, err := svc.Create(ctx, &content.Story{Title: "First"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, &content.Story{Title: "Second"}); err != nil {
		t.Fatal(err)
	}

	list := svc.List(ctx)
	if len(list) != 2 || list[0].ID != "second" || list[1].ID != "first" {
		t.Fatalf("List() = %v, want newest first", list)
	}

	if _, err := svc.RecordView(ctx, first.ID, content.ViewRecord{IP: "10.0.0.1"}); err != nil {
		t.Fatal(err)
	}
	up, err := svc.Update(ctx, first.ID, &content.Story{Title: "First, again", Location: "Oslo"})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if up.ID != "first" || up.Location != "Oslo" || up.Views != 1 {
		t.Errorf("Update() = %+v", up)
	}
	if pub := up.Public(); len(pub.ViewHistory) != 0 {
		t.Error("Public() kept view history")
	}
}

func TestDelete_RemovesEntityDir(t *testing.T) {
	svc, _, root := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, &content.Story{Title: "Gone", CoverImage: pngDataURI(t)})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "stories", "gone")); !os.IsNotExist(err) {
		t.Errorf("story upload dir still present: %v", err)
	}
	assertCode(t, svc.Delete(ctx, s.ID), http.StatusNotFound)
}
