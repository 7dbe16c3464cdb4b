package media

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

// Scanner cross-references the uploads tree against stored content.
//
// A scan is a snapshot: content read at report time may change before a
// delete. DeleteUnused re-checks references at delete time so a file that
// became referenced in between is refused.
type Scanner struct {
	store    *store.Store
	resolver *uploads.Resolver
}

// NewScanner creates a Scanner over st's content and its uploads resolver.
func NewScanner(st *store.Store) *Scanner {
	return &Scanner{store: st, resolver: st.Uploads()}
}

// CollectFiles walks root and returns every regular file below it. A
// directory that cannot be read is logged and treated as empty.
func CollectFiles(root string) []FileEntry {
	var files []FileEntry
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("skipping unreadable uploads path",
				slog.String("path", p),
				slog.Any("error", err),
			)
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		files = append(files, FileEntry{
			Name:    d.Name(),
			AbsPath: p,
			RelPath: filepath.ToSlash(rel),
		})
		return nil
	})
	return files
}

// ReferencedURLs returns every media reference in d: record media fields,
// markdown images in free text, and the about page. Strings inside stored
// values the records could not type (an image given as an object, a list
// entry that is not an object) count too, so legacy shapes still protect
// their files. Empty values are skipped.
func ReferencedURLs(d *store.Data) map[string]struct{} {
	refs := make(map[string]struct{})
	add := func(values ...string) {
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				refs[v] = struct{}{}
			}
		}
	}
	addMarkdown := func(text string) {
		add(markdownImageURLs(text)...)
	}
	addBlocks := func(blocks []content.ContentBlock) {
		for _, b := range blocks {
			if b.IsRaw() {
				continue
			}
			add(b.Image, b.Video)
			addMarkdown(b.Description)
		}
	}

	for _, p := range d.Projects {
		if p == nil {
			continue
		}
		add(p.CoverImage, p.Hero)
		add(p.Images...)
		add(p.StoredStrings()...)
		addMarkdown(p.Description)
		addBlocks(p.ContentBlocks)
	}
	for _, s := range d.Stories {
		if s == nil {
			continue
		}
		add(s.CoverImage, s.Image)
		add(s.Images...)
		add(s.StoredStrings()...)
		addMarkdown(s.Content)
		addBlocks(s.ContentBlocks)
	}
	add(d.OpaqueStrings()...)
	add(d.About.HeroImage)
	add(d.About.StoredStrings()...)
	addMarkdown(d.About.Content)
	return refs
}

// referencedFiles resolves the current references to absolute paths.
// Legacy forms that still point at an existing file count too.
func (s *Scanner) referencedFiles() map[string]struct{} {
	var urls map[string]struct{}
	s.store.Read(func(d *store.Data) {
		urls = ReferencedURLs(d)
	})

	files := make(map[string]struct{}, len(urls))
	for u := range urls {
		if abs, ok := s.resolver.FilePath(s.resolver.NormalizePath(u)); ok {
			files[filepath.Clean(abs)] = struct{}{}
		}
	}
	return files
}

// FindUnused lists files under the uploads root that no content record
// references, largest first. Workshop images are never reported; the
// workshop gallery is built from its directory listing.
func (s *Scanner) FindUnused(ctx context.Context) ([]UnusedFile, error) {
	referenced := s.referencedFiles()

	unused := []UnusedFile{}
	for _, f := range CollectFiles(s.resolver.Root()) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isWorkshop(f.RelPath) {
			continue
		}
		if _, ok := referenced[filepath.Clean(f.AbsPath)]; ok {
			continue
		}

		var size int64
		if info, err := os.Stat(f.AbsPath); err != nil {
			slog.Warn("could not stat upload",
				slog.String("path", f.AbsPath),
				slog.Any("error", err),
			)
		} else {
			size = info.Size()
		}

		unused = append(unused, UnusedFile{
			Filename: f.Name,
			Path:     f.RelPath,
			Size:     size,
			URL:      uploads.WebPrefix + f.RelPath,
		})
	}

	slices.SortFunc(unused, func(a, b UnusedFile) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return unused, nil
}

// DeleteUnused removes the given files, each given as a path relative to
// the uploads root or as an /uploads/... URL. Every path is re-validated;
// one bad path never stops the rest. Afterwards empty directories under the
// root are removed, except the root and its top-level kind directories.
func (s *Scanner) DeleteUnused(ctx context.Context, paths []string) DeleteResult {
	result := DeleteResult{Deleted: []string{}, Failed: []DeleteFailure{}}
	referenced := s.referencedFiles()

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, DeleteFailure{Path: p, Reason: err.Error()})
			continue
		}
		if err := s.deleteOne(p, referenced); err != nil {
			result.Failed = append(result.Failed, DeleteFailure{Path: p, Reason: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, p)
	}

	if len(result.Deleted) > 0 {
		s.removeEmptyDirs()
		slog.Info("deleted unused media",
			slog.Int("deleted", len(result.Deleted)),
			slog.Int("failed", len(result.Failed)),
		)
	}
	return result
}

func (s *Scanner) deleteOne(p string, referenced map[string]struct{}) error {
	rel, err := s.relativePath(p)
	if err != nil {
		return err
	}
	if isWorkshop(rel) {
		return errors.New("workshop files are managed from the workshop gallery")
	}

	abs := filepath.Join(s.resolver.Root(), filepath.FromSlash(rel))
	if !s.resolver.Within(abs) {
		return errors.New("path is outside the uploads directory")
	}

	info, err := os.Lstat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return errors.New("file not found")
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("path is a directory")
	}
	if _, ok := referenced[filepath.Clean(abs)]; ok {
		return errors.New("file is still referenced by content")
	}

	if err := os.Remove(abs); err != nil {
		return err
	}
	return nil
}

// relativePath turns a caller-supplied path into a slash-separated path
// relative to the root, rejecting empty and dot-dot paths.
func (s *Scanner) relativePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.New("empty path")
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if strings.HasPrefix(p, uploads.WebPrefix) {
		p = strings.TrimPrefix(p, uploads.WebPrefix)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", errors.New("path traversal is not allowed")
		}
	}
	if path.IsAbs(p) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", errors.New("path must be relative to the uploads directory")
	}
	rel := path.Clean(p)
	if rel == "." {
		return "", errors.New("empty path")
	}
	return rel, nil
}

// removeEmptyDirs prunes empty directories below the kind directories.
func (s *Scanner) removeEmptyDirs() {
	root := s.resolver.Root()
	entries, err := os.ReadDir(root)
	if err != nil {
		slog.Warn("could not read uploads root", slog.Any("error", err))
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		kindDir := filepath.Join(root, e.Name())
		children, err := os.ReadDir(kindDir)
		if err != nil {
			continue
		}
		for _, c := range children {
			if c.IsDir() {
				pruneEmpty(filepath.Join(kindDir, c.Name()))
			}
		}
	}
}

// pruneEmpty removes dir if, after pruning its subdirectories, it is empty.
// It reports whether dir was removed.
func pruneEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	empty := true
	for _, e := range entries {
		if e.IsDir() && pruneEmpty(filepath.Join(dir, e.Name())) {
			continue
		}
		empty = false
	}
	if !empty {
		return false
	}
	if err := os.Remove(dir); err != nil {
		slog.Warn("could not remove empty upload directory",
			slog.String("path", dir),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

func isWorkshop(rel string) bool {
	return rel == uploads.KindWorkshop || strings.HasPrefix(rel, uploads.KindWorkshop+"/")
}
