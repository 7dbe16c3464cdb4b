package uploads

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Resolver translates between /uploads/... web paths and files under a
// single uploads root. The root is made absolute once at construction.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver for root. If root cannot be made absolute
// the cleaned relative form is used.
func NewResolver(root string) *Resolver {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	return &Resolver{root: abs}
}

// Root returns the absolute uploads root.
func (r *Resolver) Root() string {
	return r.root
}

// EnsureLayout creates the uploads root and one directory per kind.
func (r *Resolver) EnsureLayout() error {
	for _, kind := range append(append([]string{}, EntityKinds...), KindWorkshop) {
		dir := filepath.Join(r.root, kind)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating uploads directory %s: %w", dir, err)
		}
	}
	return nil
}

// Within reports whether abs lies strictly below the uploads root.
func (r *Resolver) Within(abs string) bool {
	return strings.HasPrefix(filepath.Clean(abs), r.root+string(os.PathSeparator))
}

// NormalizePath rewrites value into its canonical /uploads/<rest> form when
// it points at an existing file under the root. Anything else (external
// URLs, data URIs, traversal attempts, missing files) comes back unchanged.
func (r *Resolver) NormalizePath(value string) string {
	rest, ok := uploadsRemainder(value)
	if !ok || strings.Contains(rest, "..") {
		return value
	}

	abs := filepath.Join(r.root, filepath.FromSlash(rest))
	if !r.Within(abs) {
		return value
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return value
	}

	web, ok := r.WebPath(abs)
	if !ok {
		return value
	}
	return web
}

// WebPath converts an absolute path under the root to its web path.
func (r *Resolver) WebPath(abs string) (string, bool) {
	if !r.Within(abs) {
		return "", false
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", false
	}
	return WebPrefix + filepath.ToSlash(rel), true
}

// FilePath maps a web path to the absolute path it names. Only /uploads/...
// paths (or same-origin absolute URLs whose path is one) resolve. No
// traversal check is applied; callers doing I/O must check Within.
func (r *Resolver) FilePath(webPath string) (string, bool) {
	p := strings.TrimSpace(webPath)
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		u, err := url.Parse(p)
		if err != nil {
			return "", false
		}
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	if !strings.HasPrefix(p, WebPrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(p, WebPrefix)
	if rest == "" {
		return "", false
	}
	return filepath.Join(r.root, filepath.FromSlash(rest)), true
}

// EntityDir returns the directory holding files of one entity. The entity id
// must be a single path element.
func (r *Resolver) EntityDir(kind, entityID string) (string, error) {
	if !IsEntityKind(kind) {
		return "", fmt.Errorf("unknown upload kind %q", kind)
	}
	if !isSafeElement(entityID) {
		return "", fmt.Errorf("invalid entity id %q", entityID)
	}
	return filepath.Join(r.root, kind, entityID), nil
}

// WorkshopDir returns the flat workshop directory.
func (r *Resolver) WorkshopDir() string {
	return filepath.Join(r.root, KindWorkshop)
}

// isSafeElement rejects empty names, separators and dot segments.
func isSafeElement(name string) bool {
	if name == "" || name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// IsSafeFilename reports whether name can be joined onto a directory without
// escaping it.
func IsSafeFilename(name string) bool {
	return isSafeElement(name)
}

// uploadsRemainder finds the uploads marker in value and returns what
// follows it. Data URIs never match.
func uploadsRemainder(value string) (string, bool) {
	s := strings.TrimSpace(value)
	if s == "" || strings.HasPrefix(strings.ToLower(s), "data:") {
		return "", false
	}

	s = strings.ReplaceAll(s, `\`, "/")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	var rest string
	switch {
	case strings.Contains(s, WebPrefix):
		rest = s[strings.Index(s, WebPrefix)+len(WebPrefix):]
	case strings.HasPrefix(s, "uploads/"):
		rest = strings.TrimPrefix(s, "uploads/")
	default:
		return "", false
	}

	rest = strings.TrimLeft(rest, "/")
	if rest == "" {
		return "", false
	}
	return rest, true
}
