// Package stories serves and edits photo stories. It mirrors the projects
// plugin without categories or featuring.
package stories

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/plugins/media"
	"github.com/keyxmakerx/portfolio/internal/sanitize"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

// MediaFiles is what the service needs from the media plugin.
type MediaFiles interface {
	media.Materializer
	RemoveEntityDir(kind, entityID string)
}

// StoryService handles business logic for stories.
type StoryService interface {
	List(ctx context.Context) []*content.Story
	Get(ctx context.Context, id string) (*content.Story, error)
	Create(ctx context.Context, input *content.Story) (*content.Story, error)
	Update(ctx context.Context, id string, input *content.Story) (*content.Story, error)
	Delete(ctx context.Context, id string) error
	RecordView(ctx context.Context, id string, view content.ViewRecord) (int64, error)
}

type storyService struct {
	store *store.Store
	media MediaFiles
	now   func() time.Time
}

// NewStoryService creates a story service.
func NewStoryService(st *store.Store, files MediaFiles) StoryService {
	return &storyService{store: st, media: files, now: time.Now}
}

// List returns copies of all stories, newest first.
func (s *storyService) List(ctx context.Context) []*content.Story {
	var out []*content.Story
	s.store.Read(func(d *store.Data) {
		out = make([]*content.Story, 0, len(d.Stories))
		for _, st := range d.Stories {
			out = append(out, st.Clone())
		}
	})
	slices.SortStableFunc(out, func(a, b *content.Story) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Get returns a copy of one story.
func (s *storyService) Get(ctx context.Context, id string) (*content.Story, error) {
	var out *content.Story
	s.store.Read(func(d *store.Data) {
		if i := indexOf(d.Stories, id); i >= 0 {
			out = d.Stories[i].Clone()
		}
	})
	if out == nil {
		return nil, apperror.NewNotFound("story not found")
	}
	return out, nil
}

// Create validates input, assigns a unique slug id and stores the story.
func (s *storyService) Create(ctx context.Context, input *content.Story) (*content.Story, error) {
	st, err := cleanInput(input)
	if err != nil {
		return nil, err
	}

	var created *content.Story
	var written []string
	err = s.store.Update(ctx, func(d *store.Data) error {
		base := content.Slugify(input.ID)
		if base == "" {
			base = content.Slugify(st.Title)
		}
		if base == "" {
			base = "story"
		}
		st.ID = content.UniqueID(base, func(id string) bool { return indexOf(d.Stories, id) >= 0 })

		w, err := s.prepareMedia(ctx, st)
		written = w
		if err != nil {
			return err
		}

		now := s.now().UTC()
		st.CreatedAt, st.UpdatedAt = now, now
		d.Stories = append(d.Stories, st)
		created = st.Clone()
		return nil
	})
	if err != nil {
		media.DiscardUnsaved(s.media, written, err)
		return nil, err
	}

	slog.Info("story created", slog.String("id", created.ID))
	return created, nil
}

// Update replaces the editable fields of a story.
func (s *storyService) Update(ctx context.Context, id string, input *content.Story) (*content.Story, error) {
	st, err := cleanInput(input)
	if err != nil {
		return nil, err
	}

	var updated *content.Story
	var written []string
	err = s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Stories, id)
		if i < 0 {
			return apperror.NewNotFound("story not found")
		}
		old := d.Stories[i]
		st.KeepUnknownFrom(old)

		st.ID = old.ID
		w, err := s.prepareMedia(ctx, st)
		written = w
		if err != nil {
			return err
		}
		st.Views = old.Views
		st.ViewHistory = old.ViewHistory
		st.CreatedAt = old.CreatedAt
		st.UpdatedAt = s.now().UTC()

		d.Stories[i] = st
		updated = st.Clone()
		return nil
	})
	if err != nil {
		media.DiscardUnsaved(s.media, written, err)
		return nil, err
	}

	slog.Info("story updated", slog.String("id", id))
	return updated, nil
}

// Delete removes a story and, best effort, its upload directory.
func (s *storyService) Delete(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Stories, id)
		if i < 0 {
			return apperror.NewNotFound("story not found")
		}
		d.Stories = slices.Delete(slices.Clone(d.Stories), i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	s.media.RemoveEntityDir(uploads.KindStories, id)
	slog.Info("story deleted", slog.String("id", id))
	return nil
}

// RecordView counts a view and appends it to the bounded history.
func (s *storyService) RecordView(ctx context.Context, id string, view content.ViewRecord) (int64, error) {
	var views int64
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Stories, id)
		if i < 0 {
			return apperror.NewNotFound("story not found")
		}
		st := d.Stories[i].Clone()
		if view.Timestamp == 0 {
			view.Timestamp = s.now().UnixMilli()
		}
		st.Views++
		st.ViewHistory = content.AppendView(st.ViewHistory, view)
		d.Stories[i] = st
		views = st.Views
		return nil
	})
	return views, err
}

func (s *storyService) prepareMedia(ctx context.Context, st *content.Story) ([]string, error) {
	written, err := media.MaterializeFields(ctx, s.media, uploads.KindStories, st.ID, st.MediaFields())
	if err != nil {
		return written, err
	}
	if ns, changed := s.store.Normalizer().Story(st); changed {
		*st = *ns
	}
	return written, nil
}

func cleanInput(in *content.Story) (*content.Story, error) {
	if in == nil {
		return nil, apperror.NewBadRequest("invalid request")
	}
	st := &content.Story{
		Title:      sanitize.Line(in.Title, 200),
		Subtitle:   sanitize.Line(in.Subtitle, 300),
		Location:   sanitize.Line(in.Location, 200),
		Date:       sanitize.Line(in.Date, 50),
		Content:    strings.TrimSpace(in.Content),
		CoverImage: strings.TrimSpace(in.CoverImage),
		Image:      strings.TrimSpace(in.Image),
		Images:     content.CleanList(in.Images, nil),
	}
	if st.Title == "" {
		return nil, apperror.NewValidation("title is required")
	}
	blocks, err := content.PrepareBlocks(in.ContentBlocks)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}
	st.ContentBlocks = blocks
	st.EnsureSlices()
	return st, nil
}

func indexOf(stories []*content.Story, id string) int {
	return slices.IndexFunc(stories, func(s *content.Story) bool { return s.ID == id })
}
