package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/keyxmakerx/portfolio/internal/content"
)

// EnsureDataFiles creates any missing data file with its default content and
// creates the upload directory layout. Existing files are left alone.
func (s *Store) EnsureDataFiles(ctx context.Context) error {
	defaults := defaultData()
	meta, err := metadataDocument(defaults)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	files := []struct {
		path  string
		value any
	}{
		{s.opts.ProjectsFile, defaults.Projects},
		{s.opts.StoriesFile, defaults.Stories},
		{s.opts.DBFile, meta},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		_, err := os.Stat(f.path)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", f.path, err)
		}
		body, err := encode(f.value)
		if err != nil {
			return fmt.Errorf("encoding default %s: %w", filepath.Base(f.path), err)
		}
		if err := os.WriteFile(f.path, body, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
		slog.Info("created data file", slog.String("path", f.path))
	}

	if s.opts.Uploads != nil {
		if err := s.opts.Uploads.EnsureLayout(); err != nil {
			return fmt.Errorf("creating uploads layout: %w", err)
		}
	}
	return nil
}

// Load reads the three data files into memory. A missing or unparseable
// file is logged and its defaults are kept; Load never fails on bad content.
// Media references are normalized and a missing admin password hash is
// seeded; if either changed anything the result is saved, and a failure of
// that save is returned.
func (s *Store) Load(ctx context.Context) error {
	data := defaultData()

	if raw, ok := readDataFile(s.opts.ProjectsFile); ok {
		if projects, opaque, err := content.DecodeList[content.Project](raw, "project"); err != nil {
			warnFallback(s.opts.ProjectsFile, err)
		} else {
			data.opaque.projects = opaque
			data.Projects = make([]*content.Project, len(projects))
			for i := range projects {
				data.Projects[i] = &projects[i]
			}
		}
	}
	if raw, ok := readDataFile(s.opts.StoriesFile); ok {
		if stories, opaque, err := content.DecodeList[content.Story](raw, "story"); err != nil {
			warnFallback(s.opts.StoriesFile, err)
		} else {
			data.opaque.stories = opaque
			data.Stories = make([]*content.Story, len(stories))
			for i := range stories {
				data.Stories[i] = &stories[i]
			}
		}
	}
	if raw, ok := readDataFile(s.opts.DBFile); ok {
		if err := decodeMetadata(raw, data); err != nil {
			warnFallback(s.opts.DBFile, err)
		}
	}

	dirty := false
	for i, p := range data.Projects {
		p.EnsureSlices()
		if np, changed := s.normalizer.Project(p); changed {
			data.Projects[i] = np
			dirty = true
		}
	}
	for i, st := range data.Stories {
		st.EnsureSlices()
		if ns, changed := s.normalizer.Story(st); changed {
			data.Stories[i] = ns
			dirty = true
		}
	}
	if len(data.Categories) == 0 {
		data.Categories = defaultCategories()
		dirty = true
	}
	if strings.TrimSpace(data.AdminPasswordHash) == "" {
		hash, err := s.seedPasswordHash()
		if err != nil {
			return err
		}
		data.AdminPasswordHash = hash
		dirty = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data

	slog.Info("content loaded",
		slog.Int("projects", len(data.Projects)),
		slog.Int("stories", len(data.Stories)),
		slog.Int("categories", len(data.Categories)),
		slog.Int("messages", len(data.Messages)),
	)

	if !dirty {
		return nil
	}
	if err := s.persist(ctx, data); err != nil {
		return fmt.Errorf("saving normalized content: %w", err)
	}
	return nil
}

func (s *Store) seedPasswordHash() (string, error) {
	if s.opts.HashPassword == nil {
		return "", errors.New("store: no password hasher configured")
	}
	hash, err := s.opts.HashPassword(s.opts.DefaultAdminPassword)
	if err != nil {
		return "", fmt.Errorf("seeding admin password: %w", err)
	}
	slog.Info("seeded admin password hash from configuration")
	return hash, nil
}

// readDataFile returns the file's bytes, or false after logging why it could
// not be read.
func readDataFile(path string) ([]byte, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		warnFallback(path, err)
		return nil, false
	}
	return raw, true
}

func warnFallback(path string, err error) {
	slog.Warn("data file unusable, keeping defaults",
		slog.String("path", path),
		slog.Any("error", err),
	)
}

// decodeMetadata fills data from db.json. Each key is decoded on its own so
// one bad key only resets that key to its default. Keys it does not
// recognise are kept for the next save. Only a non-object document is an
// error.
func decodeMetadata(raw []byte, data *Data) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding metadata: %w", err)
	}
	if doc == nil {
		return errors.New("decoding metadata: not a JSON object")
	}

	for key, value := range doc {
		var err error
		switch key {
		case "categories":
			err = decodeCategories(value, data)
		case "messages":
			var msgs []content.Message
			var opaque []content.Opaque
			if msgs, opaque, err = content.DecodeList[content.Message](value, "message"); err == nil {
				data.Messages = msgs
				data.opaque.messages = opaque
			}
		case "bannedIps":
			var banned []content.BannedIP
			var opaque []content.Opaque
			if banned, opaque, err = content.DecodeList[content.BannedIP](value, "banned ip"); err == nil {
				data.BannedIPs = banned
				data.opaque.bannedIPs = opaque
			}
		case "about":
			var about content.About
			if err = json.Unmarshal(value, &about); err == nil {
				data.About = about.Clone()
			}
		case "contact":
			var contact content.Contact
			if err = json.Unmarshal(value, &contact); err == nil {
				data.Contact = contact.Clone()
			}
		case "adminPasswordHash":
			var hash *string
			if err = json.Unmarshal(value, &hash); err == nil {
				data.AdminPasswordHash = ""
				if hash != nil {
					data.AdminPasswordHash = *hash
				}
			}
		default:
			if data.extra == nil {
				data.extra = make(map[string]json.RawMessage)
			}
			data.extra[key] = value
		}
		if err != nil {
			slog.Warn("metadata key unusable, keeping default",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// decodeCategories keeps categories with a usable id, deriving a missing id
// from the label.
func decodeCategories(value json.RawMessage, data *Data) error {
	cats, opaque, err := content.DecodeList[content.Category](value, "category")
	if err != nil {
		return err
	}
	data.opaque.categories = opaque
	out := make([]content.Category, 0, len(cats))
	seen := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.ID == "" {
			c.ID = content.CategoryID(c.Label)
		}
		if c.ID == "" || seen[c.ID] {
			continue
		}
		if c.Label == "" {
			c.Label = c.ID
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	data.Categories = out
	return nil
}
