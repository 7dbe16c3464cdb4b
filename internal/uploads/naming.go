// Package uploads owns the uploads tree: filename generation, MIME to
// extension mapping, and translation between public /uploads/... web paths
// and files under the configured uploads root.
//
// Nothing in this package returns an error for malformed input. Content
// records are untrusted and must never break the store on load, so every
// helper degrades to "leave unchanged" or a best fallback.
package uploads

import (
	"crypto/rand"
	"math/big"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WebPrefix is the public URL namespace of the uploads root.
const WebPrefix = "/uploads/"

// Entity kinds with per-entity subdirectories. Workshop files live flat in
// KindWorkshop.
const (
	KindProjects = "projects"
	KindStories  = "stories"
	KindSite     = "site"
	KindWorkshop = "workshop"
)

// EntityKinds lists the kinds that use <kind>/<entityId>/<filename>.
var EntityKinds = []string{KindProjects, KindStories, KindSite}

// IsEntityKind reports whether kind is one of EntityKinds.
func IsEntityKind(kind string) bool {
	for _, k := range EntityKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// mimeExtensions maps common image and video MIME types to file extensions.
var mimeExtensions = map[string]string{
	"image/jpeg":               "jpg",
	"image/jpg":                "jpg",
	"image/pjpeg":              "jpg",
	"image/png":                "png",
	"image/gif":                "gif",
	"image/webp":               "webp",
	"image/avif":               "avif",
	"image/heic":               "heic",
	"image/heif":               "heif",
	"image/bmp":                "bmp",
	"image/tiff":               "tiff",
	"image/svg+xml":            "svg",
	"image/x-icon":             "ico",
	"image/vnd.microsoft.icon": "ico",
	"video/mp4":                "mp4",
	"video/webm":               "webm",
	"video/quicktime":          "mov",
	"video/ogg":                "ogv",
	"video/x-matroska":         "mkv",
	"video/mpeg":               "mpeg",
}

var nonExtChars = regexp.MustCompile(`[^a-z0-9-]`)

// ExtensionForMime returns the extension (without dot) for a MIME type.
// Unknown types derive one from the subtype with any "+suffix" removed;
// input without a "/" yields "bin".
func ExtensionForMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if ext, ok := mimeExtensions[mime]; ok {
		return ext
	}

	_, subtype, ok := strings.Cut(mime, "/")
	if !ok {
		return "bin"
	}
	if i := strings.IndexByte(subtype, '+'); i >= 0 {
		subtype = subtype[:i]
	}
	subtype = nonExtChars.ReplaceAllString(subtype, "")
	if subtype == "" {
		return "bin"
	}
	return subtype
}

const (
	base36Alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	randomSuffixLen = 6
	maxBaseLen      = 60
)

var (
	nonNameChars   = regexp.MustCompile(`[^a-z0-9.-]+`)
	repeatedHyphen = regexp.MustCompile(`-{2,}`)
	repeatedDot    = regexp.MustCompile(`\.{2,}`)
)

// GenerateFilename returns upload-<epoch-ms>-<random>[-<base>].<ext>, where
// base is a sanitized form of originalName without its extension. An empty
// ext falls back to the original extension, then "bin".
func GenerateFilename(ext, originalName string) string {
	var b strings.Builder
	b.WriteString("upload-")
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))
	b.WriteByte('-')
	b.WriteString(randomBase36(randomSuffixLen))

	origExt := path.Ext(originalName)
	if base := sanitizeBase(strings.TrimSuffix(originalName, origExt)); base != "" {
		b.WriteByte('-')
		b.WriteString(base)
	}

	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = nonExtChars.ReplaceAllString(strings.ToLower(strings.TrimPrefix(origExt, ".")), "")
	}
	if ext == "" {
		ext = "bin"
	}
	b.WriteByte('.')
	b.WriteString(ext)
	return b.String()
}

// sanitizeBase lower-cases name, collapses disallowed runs to single hyphens
// and trims hyphens from both ends. Dot runs are collapsed so a generated
// name never contains "..".
func sanitizeBase(name string) string {
	// Only the last path element of a client-supplied name is meaningful.
	name = name[strings.LastIndexAny(name, `/\`)+1:]
	s := nonNameChars.ReplaceAllString(strings.ToLower(name), "-")
	s = repeatedHyphen.ReplaceAllString(s, "-")
	s = repeatedDot.ReplaceAllString(s, ".")
	s = strings.Trim(s, "-.")
	if len(s) > maxBaseLen {
		s = strings.TrimRight(s[:maxBaseLen], "-.")
	}
	return s
}

// randomBase36 never fails: if crypto/rand is unavailable the clock fills in.
func randomBase36(n int) string {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(base36Alphabet)))
	for i := range out {
		v, err := rand.Int(rand.Reader, limit)
		if err != nil {
			out[i] = base36Alphabet[(time.Now().UnixNano()+int64(i))%int64(len(base36Alphabet))]
			continue
		}
		out[i] = base36Alphabet[v.Int64()]
	}
	return string(out)
}

// BuildRelativePath returns /uploads/<kind>/<entityID>/<filename>.
func BuildRelativePath(kind, entityID, filename string) string {
	return WebPrefix + kind + "/" + entityID + "/" + filename
}

// BuildWorkshopPath returns /uploads/workshop/<filename>.
func BuildWorkshopPath(filename string) string {
	return WebPrefix + KindWorkshop + "/" + filename
}
