package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

func newTestService(t *testing.T) (*mediaService, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "uploads")
	r := uploads.NewResolver(root)
	if err := r.EnsureLayout(); err != nil {
		t.Fatal(err)
	}
	return NewMediaService(r, 1024*1024).(*mediaService), root
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	if got := apperror.SafeCode(err); err == nil || got != want {
		t.Errorf("error = %v (status %d), want status %d", err, got, want)
	}
}

var uploadURL = regexp.MustCompile(`^/uploads/projects/demo/upload-\d+-[0-9a-z]{6}-cover\.png$`)

func TestUpload_Image(t *testing.T) {
	svc, root := newTestService(t)

	file, err := svc.Upload(context.Background(), UploadInput{
		Kind:         uploads.KindProjects,
		EntityID:     "demo",
		OriginalName: "Cover.PNG",
		MimeType:     "image/png",
		Data:         pngBytes(t, 4, 3),
	})
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if !uploadURL.MatchString(file.URL) {
		t.Errorf("URL = %q, unexpected shape", file.URL)
	}
	if file.Width != 4 || file.Height != 3 {
		t.Errorf("dimensions = %dx%d, want 4x3", file.Width, file.Height)
	}
	if !exists(filepath.Join(root, filepath.FromSlash(file.Path))) {
		t.Errorf("file not written at %s", file.Path)
	}
}

func TestUpload_DetectsMissingContentType(t *testing.T) {
	svc, _ := newTestService(t)
	file, err := svc.Upload(context.Background(), UploadInput{
		Kind:     uploads.KindStories,
		EntityID: "trip",
		Data:     pngBytes(t, 1, 1),
	})
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if file.MimeType != "image/png" || !strings.HasSuffix(file.Filename, ".png") {
		t.Errorf("got %s %s, want sniffed png", file.MimeType, file.Filename)
	}
}

func TestUpload_Rejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	good := pngBytes(t, 1, 1)

	tests := []struct {
		name  string
		input UploadInput
	}{
		{"unsupported type", UploadInput{Kind: "projects", EntityID: "a", MimeType: "application/pdf", Data: []byte("%PDF-1.4")}},
		{"svg not allowed", UploadInput{Kind: "projects", EntityID: "a", MimeType: "image/svg+xml", Data: []byte("<svg/>")}},
		{"spoofed type", UploadInput{Kind: "projects", EntityID: "a", MimeType: "image/jpeg", Data: good}},
		{"undecodable", UploadInput{Kind: "projects", EntityID: "a", MimeType: "image/png", Data: append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "junk"...)}},
		{"too large", UploadInput{Kind: "projects", EntityID: "a", MimeType: "video/webm", Data: append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 2*1024*1024)...)}},
		{"bad kind", UploadInput{Kind: "secrets", EntityID: "a", MimeType: "image/png", Data: good}},
		{"traversal entity", UploadInput{Kind: "projects", EntityID: "..", MimeType: "image/png", Data: good}},
		{"nested entity", UploadInput{Kind: "projects", EntityID: "a/b", MimeType: "image/png", Data: good}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.input)
			assertStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestMaterializeDataURI(t *testing.T) {
	svc, root := newTestService(t)
	ctx := context.Background()

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 2, 2))
	got, err := svc.MaterializeDataURI(ctx, uploads.KindProjects, "demo", uri)
	if err != nil {
		t.Fatalf("MaterializeDataURI() error: %v", err)
	}
	if !strings.HasPrefix(got, "/uploads/projects/demo/upload-") || !strings.HasSuffix(got, ".png") {
		t.Errorf("MaterializeDataURI() = %q", got)
	}
	if !exists(filepath.Join(root, "projects", "demo", filepath.Base(got))) {
		t.Error("materialized file missing")
	}

	for _, passthrough := range []string{"", "/uploads/projects/demo/x.png", "https://example.com/a.png"} {
		if got, err := svc.MaterializeDataURI(ctx, uploads.KindProjects, "demo", passthrough); err != nil || got != passthrough {
			t.Errorf("MaterializeDataURI(%q) = %q, %v; want passthrough", passthrough, got, err)
		}
	}

	_, err = svc.MaterializeDataURI(ctx, uploads.KindProjects, "demo", "data:image/png,notbase64")
	assertStatus(t, err, http.StatusBadRequest)
	_, err = svc.MaterializeDataURI(ctx, uploads.KindProjects, "demo", "data:image/png;base64,@@@")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestWorkshop(t *testing.T) {
	svc, root := newTestService(t)
	ctx := context.Background()

	file, err := svc.UploadWorkshop(ctx, UploadInput{OriginalName: "bench.png", MimeType: "image/png", Data: pngBytes(t, 1, 1)})
	if err != nil {
		t.Fatalf("UploadWorkshop() error: %v", err)
	}
	if !strings.HasPrefix(file.URL, "/uploads/workshop/") {
		t.Errorf("URL = %q", file.URL)
	}

	list, err := svc.ListWorkshop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Filename != file.Filename || list[0].URL != file.URL {
		t.Fatalf("ListWorkshop() = %+v", list)
	}

	assertStatus(t, svc.DeleteWorkshop(ctx, "../projects"), http.StatusBadRequest)
	assertStatus(t, svc.DeleteWorkshop(ctx, "nope.png"), http.StatusNotFound)

	if err := svc.DeleteWorkshop(ctx, file.Filename); err != nil {
		t.Fatalf("DeleteWorkshop() error: %v", err)
	}
	if exists(filepath.Join(root, "workshop", file.Filename)) {
		t.Error("workshop file still on disk")
	}
}

func TestRemoveEntityDir(t *testing.T) {
	svc, root := newTestService(t)
	putFile(t, root, "stories/trip/a.jpg", 1)
	putFile(t, root, "stories/other/b.jpg", 1)

	svc.RemoveEntityDir(uploads.KindStories, "trip")
	svc.RemoveEntityDir(uploads.KindStories, "..")

	if exists(filepath.Join(root, "stories", "trip")) {
		t.Error("entity directory not removed")
	}
	if !exists(filepath.Join(root, "stories", "other", "b.jpg")) {
		t.Error("sibling entity removed")
	}
	if _, err := os.Stat(filepath.Join(root, "stories")); err != nil {
		t.Error("kind directory removed")
	}
}

func TestDiscardUnsaved(t *testing.T) {
	svc, root := newTestService(t)
	putFile(t, root, "projects/demo/kept.png", 1)
	putFile(t, root, "projects/demo/gone.png", 1)

	// The save failed: memory still references the file.
	notSaved := fmt.Errorf("%w: disk full", store.ErrNotSaved)
	DiscardUnsaved(svc, []string{"/uploads/projects/demo/kept.png"}, notSaved)
	if !exists(filepath.Join(root, "projects", "demo", "kept.png")) {
		t.Error("file removed although the change is held in memory")
	}

	// The update was refused: nothing references the file.
	DiscardUnsaved(svc, []string{"/uploads/projects/demo/gone.png", "/etc/passwd"}, apperror.NewBadRequest("bad image"))
	if exists(filepath.Join(root, "projects", "demo", "gone.png")) {
		t.Error("orphaned upload not removed")
	}
}
