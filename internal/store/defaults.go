package store

import (
	"time"

	"github.com/keyxmakerx/portfolio/internal/content"
)

// defaultData returns the built-in content used before anything is read from
// disk and whenever a data file is missing or unreadable.
func defaultData() *Data {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Data{
		Projects: []*content.Project{
			{
				ID:          "sample-project",
				Title:       "Sample Project",
				Description: "A placeholder project. Replace it from the admin panel.",
				Category:    "web",
				Tags:        []string{"sample"},
				Images:      []string{},
				ContentBlocks: []content.ContentBlock{
					{ID: "intro", Type: content.BlockText, Title: "Overview", Description: "Describe the project here."},
				},
				ViewHistory: []content.ViewRecord{},
				CreatedAt:   created,
				UpdatedAt:   created,
			},
		},
		Stories: []*content.Story{
			{
				ID:            "sample-story",
				Title:         "Sample Story",
				Content:       "A placeholder photo story.",
				Images:        []string{},
				ContentBlocks: []content.ContentBlock{},
				ViewHistory:   []content.ViewRecord{},
				CreatedAt:     created,
				UpdatedAt:     created,
			},
		},
		Categories: defaultCategories(),
		Messages:   []content.Message{},
		BannedIPs:  []content.BannedIP{},
		About: content.About{
			Title:   "About",
			Content: "Tell visitors who you are.",
			Skills:  []string{},
		},
		Contact: content.Contact{
			Intro:   "Get in touch.",
			Socials: []content.SocialLink{},
		},
	}
}

func defaultCategories() []content.Category {
	return []content.Category{
		{ID: "web", Label: "Web"},
		{ID: "design", Label: "Design"},
		{ID: "3d-printing", Label: "3D Printing"},
	}
}
