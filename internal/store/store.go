// Package store is the single source of truth for site content. It keeps
// every record in memory and persists them to three flat JSON files:
//
//	projects.json  array of projects
//	stories.json   array of stories
//	db.json        categories, messages, bannedIps, about, contact, adminPasswordHash
//
// The Store is created once at startup and passed to every plugin. All
// mutations go through Update, which applies the change and persists it
// under one write lock, so a mutate-then-save pair can never interleave with
// another writer. Saves are not atomic replaces: a crash mid-write can
// corrupt a file, in which case the next Load falls back to defaults for it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

// Data is the in-memory aggregate of all site content.
type Data struct {
	Projects          []*content.Project
	Stories           []*content.Story
	Categories        []content.Category
	Messages          []content.Message
	BannedIPs         []content.BannedIP
	About             content.About
	Contact           content.Contact
	AdminPasswordHash string

	// extra holds db.json keys this version does not know about so they
	// survive a save.
	extra map[string]json.RawMessage
	// opaque holds list entries that were not JSON objects, per list.
	opaque opaqueEntries
}

type opaqueEntries struct {
	projects   []content.Opaque
	stories    []content.Opaque
	categories []content.Opaque
	messages   []content.Opaque
	bannedIPs  []content.Opaque
}

// OpaqueStrings returns the strings inside project and story list entries
// that were not JSON objects. They may still name uploaded files.
func (d *Data) OpaqueStrings() []string {
	var out []string
	for _, o := range slices.Concat(d.opaque.projects, d.opaque.stories) {
		out = append(out, o.Strings()...)
	}
	return out
}

// Options configures a Store. File paths and the uploads resolver come from
// configuration; nothing is computed internally.
type Options struct {
	ProjectsFile string
	StoriesFile  string
	DBFile       string

	// Uploads resolves media references during load-time normalization.
	Uploads *uploads.Resolver

	// DefaultAdminPassword seeds AdminPasswordHash when it is missing.
	DefaultAdminPassword string

	// HashPassword derives the stored hash from DefaultAdminPassword.
	HashPassword func(plain string) (string, error)
}

// Store holds the live Data. Read and Update are the only ways in.
type Store struct {
	opts       Options
	normalizer *content.Normalizer

	mu   sync.RWMutex
	data *Data

	// writeMu serializes file writes between concurrent Save calls.
	writeMu sync.Mutex
}

// New creates a Store holding the built-in defaults. Call Initialize before
// serving requests.
func New(opts Options) *Store {
	return &Store{
		opts:       opts,
		normalizer: content.NewNormalizer(opts.Uploads),
		data:       defaultData(),
	}
}

// Uploads returns the resolver the store normalizes against.
func (s *Store) Uploads() *uploads.Resolver {
	return s.opts.Uploads
}

// Normalizer returns the media reference normalizer used on load.
func (s *Store) Normalizer() *content.Normalizer {
	return s.normalizer
}

// Initialize makes sure the data files and upload directories exist, then
// loads them.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.EnsureDataFiles(ctx); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Read runs fn with shared access to the live data. fn must not mutate d
// and must not keep references to it after returning; copy what you need.
func (s *Store) Read(fn func(d *Data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// ErrNotSaved marks an Update whose change was applied in memory but could
// not be written to disk.
var ErrNotSaved = errors.New("change applied but not saved")

// Update runs fn with exclusive access and persists the result. If fn
// returns an error nothing is saved, so fn must validate before it mutates.
// A persist failure is returned wrapping ErrNotSaved, since memory already
// holds the change.
func (s *Store) Update(ctx context.Context, fn func(d *Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.data); err != nil {
		return err
	}
	if err := s.persist(ctx, s.data); err != nil {
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}

// Save persists the current data to disk.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persist(ctx, s.data)
}

// persist writes the three files concurrently. The caller holds mu.
func (s *Store) persist(ctx context.Context, d *Data) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	projects, err := encodeList(d.Projects, d.opaque.projects)
	if err != nil {
		return fmt.Errorf("encoding projects: %w", err)
	}
	stories, err := encodeList(d.Stories, d.opaque.stories)
	if err != nil {
		return fmt.Errorf("encoding stories: %w", err)
	}
	doc, err := metadataDocument(d)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	meta, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range []struct {
		path string
		body []byte
	}{
		{s.opts.ProjectsFile, projects},
		{s.opts.StoriesFile, stories},
		{s.opts.DBFile, meta},
	} {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.WriteFile(f.path, f.body, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", f.path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// metadataDocument builds the db.json object, keeping unknown keys and
// list entries that were not objects.
func metadataDocument(d *Data) (map[string]any, error) {
	doc := make(map[string]any, len(d.extra)+6)
	for k, v := range d.extra {
		doc[k] = v
	}
	for _, l := range []struct {
		key     string
		records any
		opaque  []content.Opaque
	}{
		{"categories", d.Categories, d.opaque.categories},
		{"messages", d.Messages, d.opaque.messages},
		{"bannedIps", d.BannedIPs, d.opaque.bannedIPs},
	} {
		if len(l.opaque) == 0 {
			doc[l.key] = l.records
			continue
		}
		items, err := restoreOpaque(l.records, l.opaque)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", l.key, err)
		}
		doc[l.key] = items
	}
	doc["about"] = d.About
	doc["contact"] = d.Contact
	doc["adminPasswordHash"] = d.AdminPasswordHash
	return doc, nil
}

// encodeList pretty-prints records with opaque entries put back in place.
func encodeList[T any](records []T, opaque []content.Opaque) ([]byte, error) {
	if len(opaque) == 0 {
		return encode(records)
	}
	items, err := restoreOpaque(records, opaque)
	if err != nil {
		return nil, err
	}
	return encode(items)
}

// restoreOpaque encodes each element of records, a slice, and inserts the
// opaque entries at their recorded positions.
func restoreOpaque(records any, opaque []content.Opaque) ([]json.RawMessage, error) {
	var items []json.RawMessage
	b, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return content.Restore(items, opaque), nil
}

// encode pretty-prints v with two-space indentation.
func encode(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
