// Package projects serves and edits portfolio projects. Public routes list
// and show projects and record views; admin routes create, update, feature
// and delete them. Every write goes through one store.Update so validation,
// mutation and persistence happen under the store's write lock.
package projects

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

// ListFilter narrows List.
type ListFilter struct {
	Category string
	Featured bool
}

// ProjectService handles business logic for projects.
type ProjectService interface {
	List(ctx context.Context, filter ListFilter) []*content.Project
	Get(ctx context.Context, id string) (*content.Project, error)
	Create(ctx context.Context, input *content.Project) (*content.Project, error)
	Update(ctx context.Context, id string, input *content.Project) (*content.Project, error)
	Delete(ctx context.Context, id string) error
	SetFeatured(ctx context.Context, id string, featured bool) (*content.Project, error)
	RecordView(ctx context.Context, id string, view content.ViewRecord) (int64, error)
}

// projectService implements ProjectService on the content store.
type projectService struct {
	store *store.Store
	media MediaFiles
	now   func() time.Time
}

// NewProjectService creates a project service.
func NewProjectService(st *store.Store, files MediaFiles) ProjectService {
	return &projectService{store: st, media: files, now: time.Now}
}

// List returns copies of the matching projects: featured first (most
// recently featured on top), then newest first.
func (s *projectService) List(ctx context.Context, filter ListFilter) []*content.Project {
	var out []*content.Project
	s.store.Read(func(d *store.Data) {
		out = make([]*content.Project, 0, len(d.Projects))
		for _, p := range d.Projects {
			if filter.Category != "" && p.Category != filter.Category {
				continue
			}
			if filter.Featured && !p.Featured {
				continue
			}
			out = append(out, p.Clone())
		}
	})
	slices.SortStableFunc(out, compareProjects)
	return out
}

func compareProjects(a, b *content.Project) int {
	if a.Featured != b.Featured {
		if a.Featured {
			return -1
		}
		return 1
	}
	if a.Featured {
		if c := featuredTime(b).Compare(featuredTime(a)); c != 0 {
			return c
		}
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func featuredTime(p *content.Project) time.Time {
	if p.FeaturedAt == nil {
		return time.Time{}
	}
	return *p.FeaturedAt
}

// Get returns a copy of one project.
func (s *projectService) Get(ctx context.Context, id string) (*content.Project, error) {
	var out *content.Project
	s.store.Read(func(d *store.Data) {
		if i := indexOf(d.Projects, id); i >= 0 {
			out = d.Projects[i].Clone()
		}
	})
	if out == nil {
		return nil, apperror.NewNotFound("project not found")
	}
	return out, nil
}

// Create validates input, assigns a unique slug id and stores the project.
// Data URIs in media fields are written to uploads/projects/<id>/ first.
func (s *projectService) Create(ctx context.Context, input *content.Project) (*content.Project, error) {
	p, err := cleanInput(input)
	if err != nil {
		return nil, err
	}

	var created *content.Project
	var written []string
	err = s.store.Update(ctx, func(d *store.Data) error {
		if err := checkCategory(d, p.Category); err != nil {
			return err
		}
		base := content.Slugify(input.ID)
		if base == "" {
			base = content.Slugify(p.Title)
		}
		if base == "" {
			base = "project"
		}
		p.ID = content.UniqueID(base, func(id string) bool { return indexOf(d.Projects, id) >= 0 })

		w, err := s.prepareMedia(ctx, p)
		written = w
		if err != nil {
			return err
		}

		now := s.now().UTC()
		p.CreatedAt, p.UpdatedAt = now, now
		p.Views = 0
		p.ViewHistory = []content.ViewRecord{}
		if p.Featured {
			p.FeaturedAt = &now
		}

		d.Projects = append(d.Projects, p)
		created = p.Clone()
		return nil
	})
	if err != nil {
		media.DiscardUnsaved(s.media, written, err)
		return nil, err
	}

	slog.Info("project created", slog.String("id", created.ID))
	return created, nil
}

// Update replaces the editable fields of a project. The id, view counts
// and creation time are kept.
func (s *projectService) Update(ctx context.Context, id string, input *content.Project) (*content.Project, error) {
	p, err := cleanInput(input)
	if err != nil {
		return nil, err
	}

	var updated *content.Project
	var written []string
	err = s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Projects, id)
		if i < 0 {
			return apperror.NewNotFound("project not found")
		}
		if err := checkCategory(d, p.Category); err != nil {
			return err
		}
		old := d.Projects[i]
		p.KeepUnknownFrom(old)

		p.ID = old.ID
		w, err := s.prepareMedia(ctx, p)
		written = w
		if err != nil {
			return err
		}

		p.Views = old.Views
		p.ViewHistory = old.ViewHistory
		p.CreatedAt = old.CreatedAt
		p.UpdatedAt = s.now().UTC()
		p.FeaturedAt = old.FeaturedAt
		switch {
		case p.Featured && !old.Featured:
			now := p.UpdatedAt
			p.FeaturedAt = &now
		case !p.Featured:
			p.FeaturedAt = nil
		}

		d.Projects[i] = p
		updated = p.Clone()
		return nil
	})
	if err != nil {
		media.DiscardUnsaved(s.media, written, err)
		return nil, err
	}

	slog.Info("project updated", slog.String("id", id))
	return updated, nil
}

// Delete removes a project and, best effort, its upload directory.
func (s *projectService) Delete(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Projects, id)
		if i < 0 {
			return apperror.NewNotFound("project not found")
		}
		d.Projects = slices.Delete(slices.Clone(d.Projects), i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	s.media.RemoveEntityDir(uploads.KindProjects, id)
	slog.Info("project deleted", slog.String("id", id))
	return nil
}

// SetFeatured toggles the featured flag. Featuring stamps featuredAt with
// the current time; unfeaturing clears it.
func (s *projectService) SetFeatured(ctx context.Context, id string, featured bool) (*content.Project, error) {
	var out *content.Project
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Projects, id)
		if i < 0 {
			return apperror.NewNotFound("project not found")
		}
		p := d.Projects[i].Clone()
		p.Featured = featured
		p.FeaturedAt = nil
		if featured {
			now := s.now().UTC()
			p.FeaturedAt = &now
		}
		d.Projects[i] = p
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordView counts a view and appends it to the bounded history.
func (s *projectService) RecordView(ctx context.Context, id string, view content.ViewRecord) (int64, error) {
	var views int64
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Projects, id)
		if i < 0 {
			return apperror.NewNotFound("project not found")
		}
		p := d.Projects[i].Clone()
		if view.Timestamp == 0 {
			view.Timestamp = s.now().UnixMilli()
		}
		p.Views++
		p.ViewHistory = content.AppendView(p.ViewHistory, view)
		d.Projects[i] = p
		views = p.Views
		return nil
	})
	return views, err
}

// prepareMedia materializes data URIs and canonicalizes media references.
func (s *projectService) prepareMedia(ctx context.Context, p *content.Project) ([]string, error) {
	written, err := media.MaterializeFields(ctx, s.media, uploads.KindProjects, p.ID, p.MediaFields())
	if err != nil {
		return written, err
	}
	if np, changed := s.store.Normalizer().Project(p); changed {
		*p = *np
	}
	return written, nil
}

// cleanInput validates and sanitizes the client-editable fields into a new
// record. Server-managed fields are left zero.
func cleanInput(in *content.Project) (*content.Project, error) {
	if in == nil {
		return nil, apperror.NewBadRequest("invalid request")
	}
	p := &content.Project{
		Title:       sanitize.Line(in.Title, 200),
		Subtitle:    sanitize.Line(in.Subtitle, 300),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Tags:        content.CleanList(in.Tags, func(t string) string { return sanitize.Line(t, 50) }),
		Year:        sanitize.Line(in.Year, 20),
		Client:      sanitize.Line(in.Client, 200),
		Link:        strings.TrimSpace(in.Link),
		CoverImage:  strings.TrimSpace(in.CoverImage),
		Images:      content.CleanList(in.Images, nil),
		Hero:        strings.TrimSpace(in.Hero),
		Featured:    in.Featured,
	}
	if p.Title == "" {
		return nil, apperror.NewValidation("title is required")
	}
	if p.Category == "" {
		return nil, apperror.NewValidation("category is required")
	}
	if !content.ValidLink(p.Link) {
		return nil, apperror.NewValidation("link must be an http or https URL")
	}
	blocks, err := content.PrepareBlocks(in.ContentBlocks)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}
	p.ContentBlocks = blocks
	p.EnsureSlices()
	return p, nil
}

func checkCategory(d *store.Data, id string) error {
	for _, c := range d.Categories {
		if c.ID == id {
			return nil
		}
	}
	return apperror.NewValidation("unknown category " + id)
}

func indexOf(projects []*content.Project, id string) int {
	return slices.IndexFunc(projects, func(p *content.Project) bool { return p.ID == id })
}
