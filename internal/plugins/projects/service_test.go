package projects

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

// --- Mock Media ---

type mockMedia struct {
	removed   []string
	discarded []string
	err       error
	failOn    string // when set, only data URIs containing it fail with err
	n         int
}

func (m *mockMedia) MaterializeDataURI(ctx context.Context, kind, entityID, value string) (string, error) {
	if !strings.HasPrefix(value, "data:") {
		return value, nil
	}
	if m.err != nil && (m.failOn == "" || strings.Contains(value, m.failOn)) {
		return "", m.err
	}
	m.n++
	return fmt.Sprintf("/uploads/%s/%s/materialized-%d.png", kind, entityID, m.n), nil
}

func (m *mockMedia) RemoveUploads(urls []string) {
	m.discarded = append(m.discarded, urls...)
}

func (m *mockMedia) RemoveEntityDir(kind, entityID string) {
	m.removed = append(m.removed, kind+"/"+entityID)
}

// --- Helpers ---

func newTestService(t *testing.T) (*projectService, *store.Store, *mockMedia) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(store.Options{
		ProjectsFile:         filepath.Join(dir, "projects.json"),
		StoriesFile:          filepath.Join(dir, "stories.json"),
		DBFile:               filepath.Join(dir, "db.json"),
		Uploads:              uploads.NewResolver(filepath.Join(dir, "uploads")),
		DefaultAdminPassword: "admin",
		HashPassword:         func(string) (string, error) { return "hash", nil },
	})
	if err := st.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	m := &mockMedia{}
	svc := NewProjectService(st, m).(*projectService)
	return svc, st, m
}

func assertCode(t *testing.T, err error, want int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *apperror.AppError", err)
	}
	if appErr.Code != want {
		t.Errorf("error code = %d, want %d (%s)", appErr.Code, want, appErr.Message)
	}
}

func stepClock(svc *projectService) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		base = base.Add(time.Minute)
		return base
	}
}

// --- Create ---

func TestCreate_AssignsSlugAndDefaults(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, &content.Project{
		Title:    "  My <b>Shelf</b> Build ",
		Category: "web",
		Tags:     []string{"wood", " wood ", ""},
		ContentBlocks: []content.ContentBlock{
			{Type: content.BlockText, Title: "Intro"},
		},
		Views: 99,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.ID != "my-shelf-build" {
		t.Errorf("ID = %q, want my-shelf-build", p.ID)
	}
	if p.Title != "My Shelf Build" {
		t.Errorf("Title = %q", p.Title)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "wood" {
		t.Errorf("Tags = %v, want [wood]", p.Tags)
	}
	if p.Views != 0 || p.CreatedAt.IsZero() {
		t.Errorf("server fields not reset: views=%d createdAt=%v", p.Views, p.CreatedAt)
	}
	if p.ContentBlocks[0].ID == "" {
		t.Error("block id not assigned")
	}

	again, err := svc.Create(ctx, &content.Project{Title: "My Shelf Build", Category: "web"})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != "my-shelf-build-2" {
		t.Errorf("second ID = %q, want my-shelf-build-2", again.ID)
	}

	var stored int
	st.Read(func(d *store.Data) { stored = len(d.Projects) })
	if stored != 2 {
		t.Errorf("stored %d projects, want 2", stored)
	}
}

func TestCreate_MaterializesDataURIs(t *testing.T) {
	svc, _, _ := newTestService(t)
	p, err := svc.Create(context.Background(), &content.Project{
		ID:         "demo",
		Title:      "Demo",
		Category:   "design",
		CoverImage: "data:image/png;base64,AAAA",
		ContentBlocks: []content.ContentBlock{
			{Type: content.BlockImage, Image: "data:image/png;base64,AAAA"},
		},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.CoverImage != "/uploads/projects/demo/materialized-1.png" || p.ContentBlocks[0].Image != "/uploads/projects/demo/materialized-2.png" {
		t.Errorf("media = %q, %q", p.CoverImage, p.ContentBlocks[0].Image)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input *content.Project
	}{
		{"missing title", &content.Project{Category: "web"}},
		{"missing category", &content.Project{Title: "A"}},
		{"unknown category", &content.Project{Title: "A", Category: "cooking"}},
		{"bad link", &content.Project{Title: "A", Category: "web", Link: "javascript:alert(1)"}},
		{"bad block", &content.Project{Title: "A", Category: "web", ContentBlocks: []content.ContentBlock{{Type: content.BlockImage}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			assertCode(t, err, http.StatusUnprocessableEntity)
		})
	}

	var n int
	st.Read(func(d *store.Data) { n = len(d.Projects) })
	if n != 0 {
		t.Errorf("rejected input stored %d projects", n)
	}
}

func TestCreate_MediaFailureLeavesStoreUnchanged(t *testing.T) {
	svc, st, m := newTestService(t)
	m.err = apperror.NewBadRequest("bad image")

	_, err := svc.Create(context.Background(), &content.Project{
		Title: "A", Category: "web", CoverImage: "data:image/png;base64,AAAA",
	})
	assertCode(t, err, http.StatusBadRequest)

	var n int
	st.Read(func(d *store.Data) { n = len(d.Projects) })
	if n != 0 {
		t.Errorf("stored %d projects after failed create", n)
	}
}

func TestCreate_MediaFailureRemovesWrittenFiles(t *testing.T) {
	svc, _, m := newTestService(t)
	m.err = apperror.NewBadRequest("bad image")
	m.failOn = "BROKEN"

	_, err := svc.Create(context.Background(), &content.Project{
		ID:         "demo",
		Title:      "Demo",
		Category:   "web",
		CoverImage: "data:image/png;base64,AAAA",
		Images:     []string{"data:image/png;base64,BROKEN"},
	})
	assertCode(t, err, http.StatusBadRequest)

	want := []string{"/uploads/projects/demo/materialized-1.png"}
	if !slices.Equal(m.discarded, want) {
		t.Errorf("discarded = %v, want %v", m.discarded, want)
	}
}

// --- Update / Feature / Delete ---

func TestUpdate_KeepsServerFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	stepClock(svc)
	ctx := context.Background()

	p, err := svc.Create(ctx, &content.Project{Title: "Old", Category: "web"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordView(ctx, p.ID, content.ViewRecord{IP: "1.2.3.4"}); err != nil {
		t.Fatal(err)
	}

	up, err := svc.Update(ctx, p.ID, &content.Project{ID: "renamed", Title: "New", Category: "design", Featured: true})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if up.ID != p.ID || up.Title != "New" || up.Category != "design" {
		t.Errorf("Update() = %+v", up)
	}
	if up.Views != 1 || len(up.ViewHistory) != 1 {
		t.Errorf("views lost: %d, %v", up.Views, up.ViewHistory)
	}
	if !up.CreatedAt.Equal(p.CreatedAt) || !up.UpdatedAt.After(p.CreatedAt) {
		t.Errorf("timestamps: created %v updated %v", up.CreatedAt, up.UpdatedAt)
	}
	if up.FeaturedAt == nil {
		t.Error("featuredAt not set when featuring via update")
	}

	up, err = svc.Update(ctx, p.ID, &content.Project{Title: "New", Category: "design"})
	if err != nil {
		t.Fatal(err)
	}
	if up.FeaturedAt != nil {
		t.Error("featuredAt not cleared when unfeaturing")
	}

	_, err = svc.Update(ctx, "nope", &content.Project{Title: "X", Category: "web"})
	assertCode(t, err, http.StatusNotFound)
}

func TestList_FeaturedFirstThenNewest(t *testing.T) {
	svc, _, _ := newTestService(t)
	stepClock(svc)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c", "d"} {
		if _, err := svc.Create(ctx, &content.Project{Title: title, Category: "web"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Create(ctx, &content.Project{Title: "e", Category: "design"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetFeatured(ctx, "b", true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetFeatured(ctx, "a", true); err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, p := range svc.List(ctx, ListFilter{}) {
		got = append(got, p.ID)
	}
	if strings.Join(got, ",") != "a,b,e,d,c" {
		t.Errorf("List() order = %v, want a,b,e,d,c", got)
	}

	if n := len(svc.List(ctx, ListFilter{Category: "design"})); n != 1 {
		t.Errorf("category filter returned %d, want 1", n)
	}
	if n := len(svc.List(ctx, ListFilter{Featured: true})); n != 2 {
		t.Errorf("featured filter returned %d, want 2", n)
	}
}

func TestList_ReturnsCopies(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, &content.Project{Title: "a", Category: "web", Tags: []string{"x"}}); err != nil {
		t.Fatal(err)
	}

	list := svc.List(ctx, ListFilter{})
	list[0].Title = "mutated"
	list[0].Tags[0] = "mutated"

	st.Read(func(d *store.Data) {
		if d.Projects[0].Title != "a" || d.Projects[0].Tags[0] != "x" {
			t.Error("List() result aliases stored project")
		}
	})
}

func TestDelete_RemovesUploads(t *testing.T) {
	svc, _, m := newTestService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, &content.Project{Title: "Gone", Category: "web"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if len(m.removed) != 1 || m.removed[0] != "projects/gone" {
		t.Errorf("removed = %v, want [projects/gone]", m.removed)
	}
	_, err = svc.Get(ctx, p.ID)
	assertCode(t, err, http.StatusNotFound)
	assertCode(t, svc.Delete(ctx, p.ID), http.StatusNotFound)
	if len(m.removed) != 1 {
		t.Error("uploads removed for a missing project")
	}
}

func TestRecordView_BoundedHistory(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, &content.Project{Title: "Busy", Category: "web"})
	if err != nil {
		t.Fatal(err)
	}
	st.Update(ctx, func(d *store.Data) error {
		d.Projects[0].ViewHistory = make([]content.ViewRecord, content.MaxViewHistory)
		d.Projects[0].Views = content.MaxViewHistory
		return nil
	})

	views, err := svc.RecordView(ctx, p.ID, content.ViewRecord{IP: "9.9.9.9"})
	if err != nil {
		t.Fatalf("RecordView() error: %v", err)
	}
	if views != content.MaxViewHistory+1 {
		t.Errorf("views = %d", views)
	}
	got, _ := svc.Get(ctx, p.ID)
	if len(got.ViewHistory) != content.MaxViewHistory {
		t.Errorf("history length = %d, want %d", len(got.ViewHistory), content.MaxViewHistory)
	}
	last := got.ViewHistory[len(got.ViewHistory)-1]
	if last.IP != "9.9.9.9" || last.Timestamp == 0 {
		t.Errorf("last view = %+v", last)
	}

	_, err = svc.RecordView(ctx, "nope", content.ViewRecord{})
	assertCode(t, err, http.StatusNotFound)
}
