package content

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	slugHyphens  = regexp.MustCompile(`-{2,}`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Slugify turns a title or client-supplied id into [a-z0-9-_]. Returns ""
// when nothing usable remains.
func Slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CategoryID derives a category id from its label: lower-cased, whitespace
// runs dashified.
func CategoryID(label string) string {
	return Slugify(whitespace.ReplaceAllString(label, "-"))
}

// UniqueID returns base, or base-2, base-3, ... whichever taken does not
// report as used.
func UniqueID(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// Validate checks that a block carries the media its kind needs.
func (b ContentBlock) Validate() error {
	if b.IsRaw() {
		return fmt.Errorf("content block is not an object")
	}
	switch b.Type {
	case BlockImage:
		if b.Image == "" {
			return fmt.Errorf("image block requires an image")
		}
	case BlockImageText:
		if b.Image == "" {
			return fmt.Errorf("image-text block requires an image")
		}
	case BlockVideo:
		if b.Video == "" {
			return fmt.Errorf("video block requires a video")
		}
	case BlockText:
		if strings.TrimSpace(b.Title) == "" && strings.TrimSpace(b.Description) == "" {
			return fmt.Errorf("text block requires a title or description")
		}
	default:
		return fmt.Errorf("unknown content block type %q", b.Type)
	}
	return nil
}

// MediaFields returns pointers to every media reference of the project so
// callers can rewrite them in place on a record they own.
func (p *Project) MediaFields() []*string {
	out := []*string{&p.CoverImage, &p.Hero}
	for i := range p.Images {
		out = append(out, &p.Images[i])
	}
	return append(out, blockMediaFields(p.ContentBlocks)...)
}

// MediaFields returns pointers to every media reference of the story.
func (s *Story) MediaFields() []*string {
	out := []*string{&s.CoverImage, &s.Image}
	for i := range s.Images {
		out = append(out, &s.Images[i])
	}
	return append(out, blockMediaFields(s.ContentBlocks)...)
}

func blockMediaFields(blocks []ContentBlock) []*string {
	var out []*string
	for i := range blocks {
		if blocks[i].IsRaw() {
			continue
		}
		out = append(out, &blocks[i].Image, &blocks[i].Video)
	}
	return out
}

// EnsureSlices replaces nil slices so records always encode arrays.
func (p *Project) EnsureSlices() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.ContentBlocks == nil {
		p.ContentBlocks = []ContentBlock{}
	}
	if p.ViewHistory == nil {
		p.ViewHistory = []ViewRecord{}
	}
}

// EnsureSlices replaces nil slices so records always encode arrays.
func (s *Story) EnsureSlices() {
	if s.Images == nil {
		s.Images = []string{}
	}
	if s.ContentBlocks == nil {
		s.ContentBlocks = []ContentBlock{}
	}
	if s.ViewHistory == nil {
		s.ViewHistory = []ViewRecord{}
	}
}

// PrepareBlocks validates blocks for storage and gives every block an id.
// Keys a block could not hold are not carried over. The returned slice is
// new; blocks is not modified.
func PrepareBlocks(blocks []ContentBlock) ([]ContentBlock, error) {
	out := make([]ContentBlock, 0, len(blocks))
	seen := make(map[string]bool, len(blocks))
	for i, b := range blocks {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
		b.extra = nil
		b.Title = strings.TrimSpace(b.Title)
		b.Image = strings.TrimSpace(b.Image)
		b.Video = strings.TrimSpace(b.Video)
		if b.ID == "" || seen[b.ID] {
			b.ID = uuid.NewString()
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	return out, nil
}

// CleanList trims entries, drops empty ones and duplicates, keeping order.
func CleanList(values []string, clean func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if clean != nil {
			v = clean(v)
		}
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ValidLink reports whether s is empty or an absolute http(s) URL.
func ValidLink(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
