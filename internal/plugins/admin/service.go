package admin

import (
	"cmp"
	"context"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/plugins/media"
	"github.com/keyxmakerx/portfolio/internal/store"
)

const (
	topItemsLimit = 5
	recentWindow  = 7 * 24 * time.Hour
)

// StatsService computes dashboard statistics.
type StatsService interface {
	Stats(ctx context.Context) (*Stats, error)
}

type statsService struct {
	store *store.Store
	now   func() time.Time
}

// NewStatsService creates a stats service.
func NewStatsService(st *store.Store) StatsService {
	return &statsService{store: st, now: time.Now}
}

// Stats gathers counts under one read lock, then walks the uploads tree
// without holding it.
func (s *statsService) Stats(ctx context.Context) (*Stats, error) {
	since := s.now().Add(-recentWindow).UnixMilli()
	stats := &Stats{}

	s.store.Read(func(d *store.Data) {
		stats.Projects = len(d.Projects)
		stats.Stories = len(d.Stories)
		stats.Categories = len(d.Categories)
		stats.Messages = len(d.Messages)
		stats.BannedIPs = len(d.BannedIPs)
		for _, m := range d.Messages {
			if !m.Read {
				stats.UnreadMessages++
			}
		}

		for _, p := range d.Projects {
			if p == nil {
				continue
			}
			if p.Featured {
				stats.Featured++
			}
			stats.TotalViews += p.Views
			stats.RecentViews += countSince(p.ViewHistory, since)
			stats.TopProjects = append(stats.TopProjects, TopItem{ID: p.ID, Title: p.Title, Views: p.Views})
		}
		for _, st := range d.Stories {
			if st == nil {
				continue
			}
			stats.TotalViews += st.Views
			stats.RecentViews += countSince(st.ViewHistory, since)
			stats.TopStories = append(stats.TopStories, TopItem{ID: st.ID, Title: st.Title, Views: st.Views})
		}
	})

	stats.TopProjects = top(stats.TopProjects)
	stats.TopStories = top(stats.TopStories)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats.Storage = storageUsage(s.store.Uploads().Root())
	return stats, nil
}

// countSince counts views recorded at or after since (epoch millis).
func countSince(views []content.ViewRecord, since int64) int {
	n := 0
	for _, v := range views {
		if v.Timestamp >= since {
			n++
		}
	}
	return n
}

// top sorts by views descending and keeps the first topItemsLimit.
func top(items []TopItem) []TopItem {
	slices.SortStableFunc(items, func(a, b TopItem) int {
		if c := cmp.Compare(b.Views, a.Views); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(items) > topItemsLimit {
		items = items[:topItemsLimit]
	}
	if items == nil {
		items = []TopItem{}
	}
	return items
}

// storageUsage sums file sizes per top-level directory of root. Files
// directly under root are counted under "".
func storageUsage(root string) StorageUsage {
	usage := StorageUsage{ByKind: map[string]KindUsage{}}
	for _, f := range media.CollectFiles(root) {
		info, err := os.Stat(f.AbsPath)
		if err != nil {
			continue
		}
		kind, _, found := strings.Cut(f.RelPath, "/")
		if !found {
			kind = ""
		}
		k := usage.ByKind[kind]
		k.Files++
		k.Bytes += info.Size()
		usage.ByKind[kind] = k
		usage.Files++
		usage.TotalBytes += info.Size()
	}
	return usage
}
