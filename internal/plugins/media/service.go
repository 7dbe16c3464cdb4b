package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	// Register decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

// MediaService writes and removes files in the uploads tree.
type MediaService interface {
	Upload(ctx context.Context, input UploadInput) (*UploadedFile, error)
	UploadWorkshop(ctx context.Context, input UploadInput) (*UploadedFile, error)
	MaterializeDataURI(ctx context.Context, kind, entityID, value string) (string, error)
	ListWorkshop(ctx context.Context) ([]WorkshopFile, error)
	DeleteWorkshop(ctx context.Context, filename string) error
	RemoveEntityDir(kind, entityID string)
	RemoveUploads(urls []string)
}

// mediaService implements MediaService.
type mediaService struct {
	resolver *uploads.Resolver
	maxSize  int64 // bytes
}

// NewMediaService creates a media service writing under resolver's root.
func NewMediaService(resolver *uploads.Resolver, maxSize int64) MediaService {
	return &mediaService{resolver: resolver, maxSize: maxSize}
}

// Upload validates input and stores it as uploads/<kind>/<entityId>/<file>.
func (s *mediaService) Upload(ctx context.Context, input UploadInput) (*UploadedFile, error) {
	dir, err := s.resolver.EntityDir(input.Kind, input.EntityID)
	if err != nil {
		return nil, apperror.NewBadRequest(err.Error())
	}
	return s.store(ctx, dir, input)
}

// UploadWorkshop stores input flat in uploads/workshop.
func (s *mediaService) UploadWorkshop(ctx context.Context, input UploadInput) (*UploadedFile, error) {
	return s.store(ctx, s.resolver.WorkshopDir(), input)
}

func (s *mediaService) store(ctx context.Context, dir string, input UploadInput) (*UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mime := baseMime(input.MimeType)
	if mime == "" || mime == "application/octet-stream" {
		mime = baseMime(http.DetectContentType(input.Data))
	}
	if !AllowedMimeTypes[mime] {
		return nil, apperror.NewBadRequest("unsupported file type: " + mime)
	}
	if len(input.Data) == 0 {
		return nil, apperror.NewBadRequest("file is empty")
	}
	if int64(len(input.Data)) > s.maxSize {
		return nil, apperror.NewBadRequest(fmt.Sprintf("file too large; maximum size is %d MB", s.maxSize/(1024*1024)))
	}
	if !validateMagicBytes(input.Data, mime) {
		return nil, apperror.NewBadRequest("file content does not match declared type")
	}

	var width, height int
	if decodableImages[mime] {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(input.Data))
		if err != nil {
			return nil, apperror.NewBadRequest("image could not be decoded")
		}
		width, height = cfg.Width, cfg.Height
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating upload directory: %w", err))
	}

	filename := uploads.GenerateFilename(uploads.ExtensionForMime(mime), input.OriginalName)
	fullPath := filepath.Join(dir, filename)
	if !s.resolver.Within(fullPath) {
		return nil, apperror.NewBadRequest("invalid upload destination")
	}
	if err := os.WriteFile(fullPath, input.Data, 0644); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("writing upload: %w", err))
	}

	web, _ := s.resolver.WebPath(fullPath)
	slog.Info("file uploaded",
		slog.String("url", web),
		slog.String("mime_type", mime),
		slog.Int("size", len(input.Data)),
	)
	return &UploadedFile{
		URL:      web,
		Path:     strings.TrimPrefix(web, uploads.WebPrefix),
		Filename: filename,
		MimeType: mime,
		Size:     int64(len(input.Data)),
		Width:    width,
		Height:   height,
	}, nil
}

// MaterializeDataURI writes a base64 data URI into the entity's upload
// directory and returns its web path. Any other value is returned as is.
func (s *mediaService) MaterializeDataURI(ctx context.Context, kind, entityID, value string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(value)), "data:") {
		return value, nil
	}
	mime, data, err := parseDataURI(strings.TrimSpace(value))
	if err != nil {
		return "", apperror.NewBadRequest(err.Error())
	}
	file, err := s.Upload(ctx, UploadInput{
		Kind:     kind,
		EntityID: entityID,
		MimeType: mime,
		Data:     data,
	})
	if err != nil {
		return "", err
	}
	return file.URL, nil
}

// parseDataURI decodes data:<mime>;base64,<payload>.
func parseDataURI(value string) (string, []byte, error) {
	header, payload, ok := strings.Cut(value[len("data:"):], ",")
	if !ok {
		return "", nil, errors.New("malformed data URI")
	}
	params := strings.Split(header, ";")
	if !slices.Contains(params[1:], "base64") {
		return "", nil, errors.New("data URI must be base64 encoded")
	}
	payload, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, errors.New("malformed data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return "", nil, errors.New("data URI payload is not valid base64")
		}
	}
	return baseMime(params[0]), data, nil
}

// ListWorkshop returns the workshop images, newest first.
func (s *mediaService) ListWorkshop(ctx context.Context) ([]WorkshopFile, error) {
	entries, err := os.ReadDir(s.resolver.WorkshopDir())
	if errors.Is(err, fs.ErrNotExist) {
		return []WorkshopFile{}, nil
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading workshop directory: %w", err))
	}

	files := make([]WorkshopFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, WorkshopFile{
			Filename:   e.Name(),
			URL:        uploads.BuildWorkshopPath(e.Name()),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}
	slices.SortFunc(files, func(a, b WorkshopFile) int {
		if c := b.ModifiedAt.Compare(a.ModifiedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})
	return files, nil
}

// DeleteWorkshop removes one workshop image.
func (s *mediaService) DeleteWorkshop(ctx context.Context, filename string) error {
	if !uploads.IsSafeFilename(filename) {
		return apperror.NewBadRequest("invalid filename")
	}
	target := filepath.Join(s.resolver.WorkshopDir(), filename)
	if !s.resolver.Within(target) {
		return apperror.NewBadRequest("invalid filename")
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperror.NewNotFound("workshop file not found")
		}
		return apperror.NewInternal(fmt.Errorf("deleting workshop file: %w", err))
	}
	slog.Info("workshop file deleted", slog.String("filename", filename))
	return nil
}

// RemoveEntityDir deletes uploads/<kind>/<entityId>. Failures are logged.
func (s *mediaService) RemoveEntityDir(kind, entityID string) {
	dir, err := s.resolver.EntityDir(kind, entityID)
	if err != nil {
		slog.Warn("not removing entity uploads", slog.Any("error", err))
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("could not remove entity uploads",
			slog.String("path", dir),
			slog.Any("error", err),
		)
	}
}

// RemoveUploads deletes the files behind the given /uploads/... web paths.
// Failures are logged.
func (s *mediaService) RemoveUploads(urls []string) {
	for _, u := range urls {
		abs, ok := s.resolver.FilePath(u)
		if !ok {
			continue
		}
		if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("could not remove upload",
				slog.String("path", abs),
				slog.Any("error", err),
			)
		}
	}
}

// validateMagicBytes checks that the leading bytes match the declared type,
// so a renamed file cannot pass as an image.
func validateMagicBytes(data []byte, mime string) bool {
	if len(data) < 4 {
		return false
	}
	switch mime {
	case "image/jpeg":
		return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
	case "image/png":
		return len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	case "image/gif":
		return len(data) >= 6 && string(data[:3]) == "GIF"
	case "image/webp":
		return len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP"
	case "video/webm":
		return bytes.Equal(data[:4], []byte{0x1A, 0x45, 0xDF, 0xA3})
	case "image/avif", "video/mp4", "video/quicktime":
		return len(data) >= 12 && string(data[4:8]) == "ftyp"
	default:
		return false
	}
}

// Materializer turns data URIs into uploaded files and removes them again
// when the record they were written for is not stored.
type Materializer interface {
	MaterializeDataURI(ctx context.Context, kind, entityID, value string) (string, error)
	RemoveUploads(urls []string)
}

// MaterializeFields rewrites every data URI among fields into an uploaded
// file of the given entity, in place. It returns the web paths it wrote,
// also when a later field fails.
func MaterializeFields(ctx context.Context, m Materializer, kind, entityID string, fields []*string) ([]string, error) {
	var written []string
	for _, f := range fields {
		if f == nil || *f == "" {
			continue
		}
		v, err := m.MaterializeDataURI(ctx, kind, entityID, *f)
		if err != nil {
			return written, err
		}
		if v != *f {
			written = append(written, v)
		}
		*f = v
	}
	return written, nil
}

// DiscardUnsaved cleans up after a store update that failed once files had
// been written for it. If the update was refused the files are removed.
// If only the save failed, memory still references them, so they are kept
// and logged for a later unused media scan.
func DiscardUnsaved(m Materializer, written []string, err error) {
	if len(written) == 0 || err == nil {
		return
	}
	if errors.Is(err, store.ErrNotSaved) {
		slog.Warn("uploads written for a change that was not saved",
			slog.Any("paths", written),
			slog.Any("error", err),
		)
		return
	}
	m.RemoveUploads(written)
}
