package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keyxmakerx/portfolio/internal/password"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

// useDataDir points the configuration at a fresh data and uploads tree.
func useDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV", "development")
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("UPLOADS_DIR", filepath.Join(dir, "uploads"))
	for _, k := range []string{"PROJECTS_FILE", "STORIES_FILE", "DB_FILE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return filepath.Join(dir, "uploads")
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestHashPassword(t *testing.T) {
	for _, tt := range []struct {
		name  string
		stdin string
		args  []string
	}{
		{"argument", "", []string{"hash-password", "hunter22"}},
		{"stdin", "hunter22\n", []string{"hash-password"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("hash-password error: %v", err)
			}
			if !password.Verify("hunter22", strings.TrimSpace(out)) {
				t.Errorf("printed hash %q does not verify", out)
			}
		})
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := run(t, "\n", "hash-password"); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestMediaUnusedAndClean(t *testing.T) {
	root := useDataDir(t)
	orphan := filepath.Join(root, "projects", "gone", "a.png")
	workshop := filepath.Join(root, "workshop", "w.png")
	writeFile(t, orphan)
	writeFile(t, workshop)

	out, err := run(t, "", "media", "unused")
	if err != nil {
		t.Fatalf("media unused error: %v", err)
	}
	if !strings.Contains(out, "projects/gone/a.png") || strings.Contains(out, "workshop/w.png") {
		t.Errorf("media unused output:\n%s", out)
	}

	if _, err := run(t, "", "media", "clean", "--dry-run"); err != nil {
		t.Fatalf("media clean --dry-run error: %v", err)
	}
	if _, err := os.Stat(orphan); err != nil {
		t.Fatalf("dry run removed %s", orphan)
	}

	out, err = run(t, "", "media", "clean")
	if err != nil {
		t.Fatalf("media clean error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 deleted, 0 failed") {
		t.Errorf("media clean output:\n%s", out)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Errorf("orphan still present: %v", err)
	}
	if _, err := os.Stat(workshop); err != nil {
		t.Errorf("workshop image removed: %v", err)
	}
}
