// Package site edits the singleton about and contact pages.
package site

import (
	"context"
	"net/mail"
	"strings"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/plugins/media"
	"github.com/keyxmakerx/portfolio/internal/sanitize"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

// aboutEntity is the upload directory of the about page under uploads/site.
const aboutEntity = "about"

// SiteService handles business logic for the site pages.
type SiteService interface {
	About(ctx context.Context) content.About
	UpdateAbout(ctx context.Context, input content.About) (content.About, error)
	Contact(ctx context.Context) content.Contact
	UpdateContact(ctx context.Context, input content.Contact) (content.Contact, error)
}

type siteService struct {
	store *store.Store
	media media.Materializer
}

// NewSiteService creates a site service.
func NewSiteService(st *store.Store, m media.Materializer) SiteService {
	return &siteService{store: st, media: m}
}

// About returns a copy of the about page.
func (s *siteService) About(ctx context.Context) content.About {
	var out content.About
	s.store.Read(func(d *store.Data) { out = d.About.Clone() })
	return out
}

// UpdateAbout replaces the about page. A data URI hero image is written to
// uploads/site/about first.
func (s *siteService) UpdateAbout(ctx context.Context, input content.About) (content.About, error) {
	about := content.About{
		Title:     sanitize.Line(input.Title, 200),
		HeroImage: strings.TrimSpace(input.HeroImage),
		Content:   strings.TrimSpace(input.Content),
		Skills:    content.CleanList(input.Skills, func(v string) string { return sanitize.Line(v, 50) }),
	}

	var written []string
	err := s.store.Update(ctx, func(d *store.Data) error {
		w, err := media.MaterializeFields(ctx, s.media, uploads.KindSite, aboutEntity, []*string{&about.HeroImage})
		written = w
		if err != nil {
			return err
		}
		about.HeroImage = s.store.Uploads().NormalizePath(about.HeroImage)
		about.KeepUnknownFrom(d.About)
		d.About = about
		return nil
	})
	if err != nil {
		media.DiscardUnsaved(s.media, written, err)
		return content.About{}, err
	}
	return about.Clone(), nil
}

// Contact returns a copy of the contact page.
func (s *siteService) Contact(ctx context.Context) content.Contact {
	var out content.Contact
	s.store.Read(func(d *store.Data) { out = d.Contact.Clone() })
	return out
}

// UpdateContact validates and replaces the contact page.
func (s *siteService) UpdateContact(ctx context.Context, input content.Contact) (content.Contact, error) {
	contact := content.Contact{
		Intro:    sanitize.Multiline(input.Intro, 2000),
		Email:    sanitize.Line(input.Email, 254),
		Phone:    sanitize.Line(input.Phone, 50),
		Location: sanitize.Line(input.Location, 200),
		Socials:  make([]content.SocialLink, 0, len(input.Socials)),
	}
	if contact.Email != "" {
		if addr, err := mail.ParseAddress(contact.Email); err != nil || addr.Address != contact.Email {
			return content.Contact{}, apperror.NewValidation("invalid email address")
		}
	}
	for _, link := range input.Socials {
		link.Label = sanitize.Line(link.Label, 50)
		link.URL = strings.TrimSpace(link.URL)
		if link.URL == "" {
			continue
		}
		if !content.ValidLink(link.URL) {
			return content.Contact{}, apperror.NewValidation("social link must be an http or https URL: " + link.URL)
		}
		contact.Socials = append(contact.Socials, link)
	}

	err := s.store.Update(ctx, func(d *store.Data) error {
		contact.KeepUnknownFrom(d.Contact)
		d.Contact = contact
		return nil
	})
	if err != nil {
		return content.Contact{}, err
	}
	return contact.Clone(), nil
}
