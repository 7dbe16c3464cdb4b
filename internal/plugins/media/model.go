// Package media owns the binary side of the site: accepting uploads into the
// uploads tree, listing and deleting workshop images, and finding and
// removing files that no content record references any more.
//
// Files live under the uploads root as <kind>/<entityId>/<filename> for
// projects, stories and site pages, and flat under workshop/. Content
// records point at them through canonical /uploads/... web paths.
package media

import (
	"strings"
	"time"
)

// FileEntry is one regular file found under the uploads root.
type FileEntry struct {
	Name    string // base name
	AbsPath string // absolute filesystem path
	RelPath string // path relative to the root, forward slashes
}

// UnusedFile is a file no content record references.
type UnusedFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"` // relative to the uploads root, forward slashes
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// UnusedReport is the response of the unused media scan.
type UnusedReport struct {
	Files     []UnusedFile `json:"files"`
	Count     int          `json:"count"`
	TotalSize int64        `json:"totalSize"`
}

// NewUnusedReport totals files into a report.
func NewUnusedReport(files []UnusedFile) UnusedReport {
	report := UnusedReport{Files: files, Count: len(files)}
	for _, f := range files {
		report.TotalSize += f.Size
	}
	return report
}

// DeleteFailure explains why one path was not deleted.
type DeleteFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// DeleteResult reports a bulk delete. Both slices are always non-nil.
type DeleteResult struct {
	Deleted []string        `json:"deleted"`
	Failed  []DeleteFailure `json:"failed"`
}

// DeleteRequest is the body of the bulk delete endpoint.
type DeleteRequest struct {
	Paths []string `json:"paths"`
}

// UploadInput is a validated upload ready to be written.
type UploadInput struct {
	Kind         string // projects, stories, site; ignored for workshop uploads
	EntityID     string
	OriginalName string
	MimeType     string
	Data         []byte
}

// UploadedFile describes a file written into the uploads tree.
type UploadedFile struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// WorkshopFile is one entry of the workshop gallery.
type WorkshopFile struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// AllowedMimeTypes lists what uploads accept.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/avif":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// decodableImages are the types whose headers are decoded for dimensions.
var decodableImages = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// baseMime strips parameters and lower-cases a Content-Type value.
func baseMime(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
