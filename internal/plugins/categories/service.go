// Package categories manages the project categories stored in db.json.
// The store always holds at least one category, and a category that a
// project still points at cannot be removed.
package categories

import (
	"context"
	"log/slog"
	"slices"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/sanitize"
	"github.com/keyxmakerx/portfolio/internal/store"
)

// maxLabelLength bounds category labels in runes.
const maxLabelLength = 50

// CategoryService handles business logic for categories.
type CategoryService interface {
	List(ctx context.Context) []content.Category
	Create(ctx context.Context, label string) (content.Category, error)
	Rename(ctx context.Context, id, label string) (content.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	store *store.Store
}

// NewCategoryService creates a category service.
func NewCategoryService(st *store.Store) CategoryService {
	return &categoryService{store: st}
}

// List returns the categories in stored order.
func (s *categoryService) List(ctx context.Context) []content.Category {
	var out []content.Category
	s.store.Read(func(d *store.Data) {
		out = slices.Clone(d.Categories)
	})
	if out == nil {
		out = []content.Category{}
	}
	return out
}

// Create adds a category whose id is derived from label.
func (s *categoryService) Create(ctx context.Context, label string) (content.Category, error) {
	label = sanitize.Line(label, maxLabelLength)
	id := content.CategoryID(label)
	if id == "" {
		return content.Category{}, apperror.NewValidation("label is required")
	}
	cat := content.Category{ID: id, Label: label}

	err := s.store.Update(ctx, func(d *store.Data) error {
		if indexOf(d.Categories, id) >= 0 {
			return apperror.NewConflict("category already exists")
		}
		d.Categories = append(slices.Clone(d.Categories), cat)
		return nil
	})
	if err != nil {
		return content.Category{}, err
	}

	slog.Info("category created", slog.String("id", id))
	return cat, nil
}

// Rename changes a category's label. The id stays so projects keep
// pointing at it.
func (s *categoryService) Rename(ctx context.Context, id, label string) (content.Category, error) {
	label = sanitize.Line(label, maxLabelLength)
	if label == "" {
		return content.Category{}, apperror.NewValidation("label is required")
	}

	var out content.Category
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Categories, id)
		if i < 0 {
			return apperror.NewNotFound("category not found")
		}
		d.Categories = slices.Clone(d.Categories)
		d.Categories[i].Label = label
		out = d.Categories[i]
		return nil
	})
	return out, err
}

// Delete removes a category. The last category and any category still
// used by a project are refused before anything changes.
func (s *categoryService) Delete(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Categories, id)
		if i < 0 {
			return apperror.NewNotFound("category not found")
		}
		if len(d.Categories) == 1 {
			return apperror.NewConflict("cannot delete the last category")
		}
		for _, p := range d.Projects {
			if p != nil && p.Category == id {
				return apperror.NewConflict("category is used by project " + p.ID)
			}
		}
		d.Categories = slices.Delete(slices.Clone(d.Categories), i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("category deleted", slog.String("id", id))
	return nil
}

func indexOf(cats []content.Category, id string) int {
	return slices.IndexFunc(cats, func(c content.Category) bool { return c.ID == id })
}
