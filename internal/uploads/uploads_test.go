package uploads

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// writeFile creates root/rel with some content, making parent directories.
func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte("data"), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestExtensionForMime(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/jpeg", "jpg"},
		{"IMAGE/PNG", "png"},
		{"image/svg+xml", "svg"},
		{"video/quicktime", "mov"},
		{"image/png; charset=binary", "png"},
		{"application/ld+json", "ld"},
		{"image/x-portable-anymap", "x-portable-anymap"},
		{"application/vnd.foo+xml", "vndfoo"},
		{"notamime", "bin"},
		{"", "bin"},
		{"image/", "bin"},
		{"image/+xml", "bin"},
	}
	for _, tt := range tests {
		if got := ExtensionForMime(tt.mime); got != tt.want {
			t.Errorf("ExtensionForMime(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestGenerateFilename(t *testing.T) {
	prefix := regexp.MustCompile(`^upload-\d+-[0-9a-z]{6}`)

	tests := []struct {
		name, ext, original string
		suffix              string
	}{
		{"no original", "png", "", ".png"},
		{"sanitized base", "jpg", "My Holiday  Photo!!.JPG", "-my-holiday-photo.jpg"},
		{"ext from original", "", "clip.MP4", "-clip.mp4"},
		{"bin fallback", "", "README", "-readme.bin"},
		{"dots collapsed", "png", "../../etc/pa..sswd.png", "-pa.sswd.png"},
		{"only junk", "gif", "***.gif", ".gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateFilename(tt.ext, tt.original)
			if !prefix.MatchString(got) {
				t.Fatalf("GenerateFilename() = %q, missing upload prefix", got)
			}
			if !strings.HasSuffix(got, tt.suffix) {
				t.Errorf("GenerateFilename() = %q, want suffix %q", got, tt.suffix)
			}
			if strings.Contains(got, "..") || strings.ContainsAny(got, `/\`) {
				t.Errorf("GenerateFilename() = %q contains unsafe characters", got)
			}
		})
	}
}

func TestGenerateFilename_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		name := GenerateFilename("png", "same.png")
		if seen[name] {
			t.Fatalf("duplicate filename %q after %d iterations", name, i)
		}
		seen[name] = true
	}
}

func TestBuildRelativePath(t *testing.T) {
	if got := BuildRelativePath(KindProjects, "demo", "cover.png"); got != "/uploads/projects/demo/cover.png" {
		t.Errorf("BuildRelativePath() = %q", got)
	}
	if got := BuildWorkshopPath("print.jpg"); got != "/uploads/workshop/print.jpg" {
		t.Errorf("BuildWorkshopPath() = %q", got)
	}
}

func TestNormalizePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "projects/demo/cover.png")
	writeFile(t, root, "workshop/print.jpg")
	if err := os.MkdirAll(filepath.Join(root, "projects", "dir-only"), 0755); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(root)

	tests := []struct {
		name, in, want string
	}{
		{"canonical existing", "/uploads/projects/demo/cover.png", "/uploads/projects/demo/cover.png"},
		{"absolute url", "http://localhost:4000/uploads/projects/demo/cover.png", "/uploads/projects/demo/cover.png"},
		{"relative legacy", "uploads/workshop/print.jpg", "/uploads/workshop/print.jpg"},
		{"query string", "/uploads/workshop/print.jpg?v=2", "/uploads/workshop/print.jpg"},
		{"backslashes", `C:\site\uploads\projects\demo\cover.png`, "/uploads/projects/demo/cover.png"},
		{"double slash", "/uploads//projects/demo/cover.png", "/uploads/projects/demo/cover.png"},
		{"missing file", "/uploads/projects/demo/missing.png", "/uploads/projects/demo/missing.png"},
		{"directory", "/uploads/projects/dir-only", "/uploads/projects/dir-only"},
		{"traversal", "/uploads/../secret.txt", "/uploads/../secret.txt"},
		{"hidden traversal", "/uploads/projects/demo/../../../etc/passwd", "/uploads/projects/demo/../../../etc/passwd"},
		{"external", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"data uri", "data:image/png;base64,/uploads/AAAA", "data:image/png;base64,/uploads/AAAA"},
		{"empty", "", ""},
		{"bare marker", "/uploads/", "/uploads/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.NormalizePath(tt.in); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizePath_NeverRewritesToMissingFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "stories/trip/a.jpg")
	r := NewResolver(root)

	inputs := []string{
		"http://x/uploads/stories/trip/a.jpg",
		"http://x/uploads/stories/trip/b.jpg",
		"uploads/stories/trip/a.jpg#frag",
		"/uploads/stories/../stories/trip/a.jpg",
		"random text",
	}
	for _, in := range inputs {
		out := r.NormalizePath(in)
		if out == in {
			continue
		}
		abs, ok := r.FilePath(out)
		if !ok {
			t.Fatalf("rewrite %q -> %q is not an uploads path", in, out)
		}
		if _, err := os.Stat(abs); err != nil {
			t.Errorf("rewrite %q -> %q points at missing file: %v", in, out, err)
		}
		if again := r.NormalizePath(out); again != out {
			t.Errorf("NormalizePath not idempotent: %q -> %q -> %q", in, out, again)
		}
	}
}

func TestFilePath(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(root)

	got, ok := r.FilePath("/uploads/projects/demo/a.png")
	if !ok || got != filepath.Join(r.Root(), "projects", "demo", "a.png") {
		t.Errorf("FilePath() = %q, %v", got, ok)
	}
	got, ok = r.FilePath("https://example.com/uploads/site/about/hero.jpg?x=1")
	if !ok || got != filepath.Join(r.Root(), "site", "about", "hero.jpg") {
		t.Errorf("FilePath(absolute) = %q, %v", got, ok)
	}
	for _, in := range []string{"", "/static/a.png", "https://example.com/a.png", "/uploads/", "data:image/png;base64,xx"} {
		if _, ok := r.FilePath(in); ok {
			t.Errorf("FilePath(%q) resolved, want false", in)
		}
	}
}

func TestEntityDir(t *testing.T) {
	r := NewResolver(t.TempDir())
	if _, err := r.EntityDir(KindProjects, "demo"); err != nil {
		t.Errorf("EntityDir(valid) error: %v", err)
	}
	for _, id := range []string{"", "..", "a/b", `a\b`, "x..y"} {
		if _, err := r.EntityDir(KindProjects, id); err == nil {
			t.Errorf("EntityDir(%q) accepted unsafe id", id)
		}
	}
	if _, err := r.EntityDir(KindWorkshop, "demo"); err == nil {
		t.Error("EntityDir(workshop) accepted flat kind")
	}
}

func TestEnsureLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	r := NewResolver(root)
	if err := r.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout() error: %v", err)
	}
	for _, kind := range []string{KindProjects, KindStories, KindSite, KindWorkshop} {
		if info, err := os.Stat(filepath.Join(root, kind)); err != nil || !info.IsDir() {
			t.Errorf("missing %s directory", kind)
		}
	}
	if err := r.EnsureLayout(); err != nil {
		t.Errorf("second EnsureLayout() error: %v", err)
	}
}
