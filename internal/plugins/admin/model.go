// Package admin serves the admin dashboard: content counts, view totals,
// the most viewed items and how much disk the uploads tree uses.
package admin

// Stats is the dashboard summary.
type Stats struct {
	Projects       int          `json:"projects"`
	Stories        int          `json:"stories"`
	Categories     int          `json:"categories"`
	Featured       int          `json:"featured"`
	Messages       int          `json:"messages"`
	UnreadMessages int          `json:"unreadMessages"`
	BannedIPs      int          `json:"bannedIps"`
	TotalViews     int64        `json:"totalViews"`
	RecentViews    int          `json:"recentViews"` // recorded in the last recentWindow
	TopProjects    []TopItem    `json:"topProjects"`
	TopStories     []TopItem    `json:"topStories"`
	Storage        StorageUsage `json:"storage"`
}

// TopItem is one entry of a most-viewed list.
type TopItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views int64  `json:"views"`
}

// StorageUsage summarizes the uploads tree.
type StorageUsage struct {
	Files      int                  `json:"files"`
	TotalBytes int64                `json:"totalBytes"`
	ByKind     map[string]KindUsage `json:"byKind"`
}

// KindUsage is the usage of one top-level uploads directory.
type KindUsage struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}
