// Package content defines the records the portfolio stores (projects,
// stories, categories, messages, site pages) and the normalizer that keeps
// their media references in canonical /uploads/... form.
//
// Records are decoded leniently: legacy files written by older versions of
// the site may carry missing or wrong-typed fields, and a single bad field
// must never make the whole file unreadable. See decode.go.
package content

import (
	"time"
)

// BlockKind tags the variant of a ContentBlock.
type BlockKind string

// Content block variants.
const (
	BlockImage     BlockKind = "image"
	BlockText      BlockKind = "text"
	BlockImageText BlockKind = "image-text"
	BlockVideo     BlockKind = "video"
)

// Valid reports whether k is a known block kind.
func (k BlockKind) Valid() bool {
	switch k {
	case BlockImage, BlockText, BlockImageText, BlockVideo:
		return true
	}
	return false
}

// ContentBlock is one typed unit of a project or story body. Which media
// fields are meaningful depends on Type; see Validate.
type ContentBlock struct {
	ID          string    `json:"id,omitempty"`
	Type        BlockKind `json:"type"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Video       string    `json:"video,omitempty"`

	// raw keeps a block whose stored JSON was not an object so it survives a
	// load/save round trip untouched.
	raw []byte
	// extra keeps stored keys the typed fields could not hold.
	extra passthrough
}

// IsRaw reports whether the block is an opaque legacy entry.
func (b ContentBlock) IsRaw() bool {
	return b.raw != nil
}

// ViewRecord is one recorded view event.
type ViewRecord struct {
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
}

// Project is a portfolio project.
type Project struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle,omitempty"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Tags          []string       `json:"tags"`
	Year          string         `json:"year,omitempty"`
	Client        string         `json:"client,omitempty"`
	Link          string         `json:"link,omitempty"`
	CoverImage    string         `json:"coverImage"`
	Images        []string       `json:"images"`
	Hero          string         `json:"hero,omitempty"` // legacy
	ContentBlocks []ContentBlock `json:"contentBlocks"`
	Featured      bool           `json:"featured"`
	FeaturedAt    *time.Time     `json:"featuredAt,omitempty"`
	Views         int64          `json:"views"`
	ViewHistory   []ViewRecord   `json:"viewHistory"`
	CreatedAt     time.Time      `json:"createdAt,omitzero"`
	UpdatedAt     time.Time      `json:"updatedAt,omitzero"`

	extra passthrough
}

// Story is a photo story. Stories have no featured flag; a legacy "featured"
// field in stored JSON is dropped on decode.
type Story struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle,omitempty"`
	Location      string         `json:"location,omitempty"`
	Date          string         `json:"date,omitempty"`
	Content       string         `json:"content"`
	CoverImage    string         `json:"coverImage"`
	Image         string         `json:"image,omitempty"` // legacy single image
	Images        []string       `json:"images"`
	ContentBlocks []ContentBlock `json:"contentBlocks"`
	Views         int64          `json:"views"`
	ViewHistory   []ViewRecord   `json:"viewHistory"`
	CreatedAt     time.Time      `json:"createdAt,omitzero"`
	UpdatedAt     time.Time      `json:"updatedAt,omitzero"`

	extra passthrough
}

// Category groups projects. Project.Category references Category.ID.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	extra passthrough
}

// Message is a contact form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"message"`
	IP        string    `json:"ip,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt,omitzero"`

	extra passthrough
}

// BannedIP blocks a client from public write endpoints.
type BannedIP struct {
	IP        string    `json:"ip"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`

	extra passthrough
}

// About is the about page.
type About struct {
	Title     string   `json:"title"`
	HeroImage string   `json:"heroImage"`
	Content   string   `json:"content"`
	Skills    []string `json:"skills"`

	extra passthrough
}

// SocialLink is one entry in the contact page's link list.
type SocialLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Contact is the contact page.
type Contact struct {
	Intro    string       `json:"intro"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone,omitempty"`
	Location string       `json:"location,omitempty"`
	Socials  []SocialLink `json:"socials"`

	extra passthrough
}

// MaxViewHistory bounds ViewHistory; the oldest entries are dropped first.
const MaxViewHistory = 1000

// AppendView records a view on history, keeping at most MaxViewHistory
// entries.
func AppendView(history []ViewRecord, rec ViewRecord) []ViewRecord {
	history = append(history, rec)
	if over := len(history) - MaxViewHistory; over > 0 {
		history = append([]ViewRecord(nil), history[over:]...)
	}
	return history
}
