package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// errNotObject is returned when a record's JSON is not an object.
var errNotObject = errors.New("not a JSON object")

// fields is a decoded JSON object whose values are inspected one at a time.
// Every accessor falls back to a zero value when the field is missing or
// has the wrong type, and removes the key once its value was used in full,
// so what remains afterwards is the part a record could not represent.
type fields map[string]json.RawMessage

func objectFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil || f == nil {
		return nil, errNotObject
	}
	return f, nil
}

// str returns the first of keys holding a JSON string. Only the first key
// is consumed; fallback keys stay so their original name is written back.
func (f fields) str(keys ...string) string {
	for i, key := range keys {
		raw, ok := f[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if i == 0 {
				delete(f, key)
			}
			return s
		}
	}
	return ""
}

// id accepts a string or a number; legacy records used numeric ids.
func (f fields) id(key string) string {
	if s := f.str(key); s != "" {
		return s
	}
	var n json.Number
	if raw, ok := f[key]; ok && json.Unmarshal(raw, &n) == nil {
		delete(f, key)
		return n.String()
	}
	return ""
}

// strList keeps only the string entries of an array field. Never nil.
func (f fields) strList(key string) []string {
	out := []string{}
	var items []json.RawMessage
	if raw, ok := f[key]; !ok || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		var s string
		if len(item) > 0 && item[0] == '"' && json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	if len(out) == len(items) {
		delete(f, key)
	}
	return out
}

func (f fields) boolean(key string) bool {
	var b bool
	if raw, ok := f[key]; ok && json.Unmarshal(raw, &b) == nil {
		delete(f, key)
		return b
	}
	return false
}

// count reads a non-negative integer. Fractions are truncated; numeric
// strings are accepted.
func (f fields) count(key string) int64 {
	raw, ok := f[key]
	if !ok {
		return 0
	}
	var n float64
	if json.Unmarshal(raw, &n) != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		n = parsed
	}
	delete(f, key)
	if n < 0 {
		return 0
	}
	return int64(n)
}

// timestamp accepts RFC 3339 strings, plain dates, and epoch milliseconds.
func (f fields) timestamp(key string) (time.Time, bool) {
	raw, ok := f[key]
	if !ok {
		return time.Time{}, false
	}
	t, ok := parseTime(raw)
	if ok {
		delete(f, key)
	}
	return t, ok
}

func parseTime(raw json.RawMessage) (time.Time, bool) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	}
	var ms float64
	if json.Unmarshal(raw, &ms) == nil && ms > 0 {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// epochMillis reads a timestamp as epoch milliseconds.
func (f fields) epochMillis(key string) int64 {
	if t, ok := f.timestamp(key); ok {
		return t.UnixMilli()
	}
	return 0
}

// views decodes viewHistory, skipping entries that are not objects. A
// malformed history is coerced to an empty one. Never nil.
func (f fields) views(key string) []ViewRecord {
	out := []ViewRecord{}
	raw, ok := f[key]
	delete(f, key)
	var items []json.RawMessage
	if !ok || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		vf, err := objectFields(item)
		if err != nil {
			continue
		}
		out = append(out, ViewRecord{
			Timestamp: vf.epochMillis("timestamp"),
			IP:        vf.str("ip"),
			UserAgent: vf.str("userAgent"),
		})
	}
	return out
}

// blocks decodes contentBlocks. Entries that are not objects are preserved
// as raw blocks. Never nil.
func (f fields) blocks(key string) []ContentBlock {
	out := []ContentBlock{}
	var items []json.RawMessage
	if raw, ok := f[key]; !ok || json.Unmarshal(raw, &items) != nil {
		return out
	}
	delete(f, key)
	for _, item := range items {
		var b ContentBlock
		if err := json.Unmarshal(item, &b); err != nil {
			b = ContentBlock{raw: append([]byte(nil), item...)}
		}
		out = append(out, b)
	}
	return out
}

// UnmarshalJSON decodes a block leniently. Legacy blocks stored their text
// under "text" or "content". Keys the block cannot hold, such as an image
// that is not a string, are kept for the next encode.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return fmt.Errorf("content block: %w", err)
	}
	*b = ContentBlock{
		ID:          f.id("id"),
		Type:        BlockKind(f.str("type")),
		Title:       f.str("title"),
		Description: f.str("description", "text", "content"),
		Image:       f.str("image"),
		Video:       f.str("video"),
	}
	b.extra = leftover(f)
	return nil
}

// blockJSON has ContentBlock's fields without its methods.
type blockJSON ContentBlock

// MarshalJSON writes raw blocks back verbatim and merges kept keys into
// the others.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	if b.raw != nil {
		return b.raw, nil
	}
	out, err := json.Marshal(blockJSON(b))
	if err != nil {
		return nil, err
	}
	return b.extra.merge(out)
}

// UnmarshalJSON decodes a project leniently. Only a non-object input fails.
func (p *Project) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	*p = Project{
		ID:            f.id("id"),
		Title:         f.str("title"),
		Subtitle:      f.str("subtitle"),
		Description:   f.str("description"),
		Category:      f.str("category"),
		Tags:          f.strList("tags"),
		Year:          f.id("year"),
		Client:        f.str("client"),
		Link:          f.str("link"),
		CoverImage:    f.str("coverImage"),
		Images:        f.strList("images"),
		Hero:          f.str("hero"),
		ContentBlocks: f.blocks("contentBlocks"),
		Featured:      f.boolean("featured"),
		Views:         f.count("views"),
		ViewHistory:   f.views("viewHistory"),
	}
	if t, ok := f.timestamp("featuredAt"); ok {
		p.FeaturedAt = &t
	}
	p.CreatedAt, _ = f.timestamp("createdAt")
	p.UpdatedAt, _ = f.timestamp("updatedAt")
	p.extra = leftover(f)
	return nil
}

// UnmarshalJSON decodes a story leniently. The legacy "featured" field is
// dropped so the next save strips it; other keys the story cannot hold are
// kept.
func (s *Story) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return fmt.Errorf("story: %w", err)
	}
	*s = Story{
		ID:            f.id("id"),
		Title:         f.str("title"),
		Subtitle:      f.str("subtitle"),
		Location:      f.str("location"),
		Date:          f.str("date"),
		Content:       f.str("content"),
		CoverImage:    f.str("coverImage"),
		Image:         f.str("image"),
		Images:        f.strList("images"),
		ContentBlocks: f.blocks("contentBlocks"),
		Views:         f.count("views"),
		ViewHistory:   f.views("viewHistory"),
	}
	s.CreatedAt, _ = f.timestamp("createdAt")
	s.UpdatedAt, _ = f.timestamp("updatedAt")
	delete(f, "featured")
	s.extra = leftover(f)
	return nil
}

// DecodeList decodes a JSON array one element at a time. Elements that fail
// to decode are logged and returned verbatim as Opaque entries so a save
// can write them back; what names the element kind in logs. A payload that
// is not an array is an error.
func DecodeList[T any](data []byte, what string) ([]T, []Opaque, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil, fmt.Errorf("decoding %s list: %w", what, err)
	}
	out := make([]T, 0, len(items))
	var opaque []Opaque
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			slog.Warn("keeping malformed record as is",
				slog.String("kind", what),
				slog.Int("index", i),
				slog.Any("error", err),
			)
			opaque = append(opaque, Opaque{Index: i, Raw: append(json.RawMessage(nil), item...)})
			continue
		}
		out = append(out, v)
	}
	return out, opaque, nil
}

// UnmarshalJSON decodes a category leniently.
func (c *Category) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	*c = Category{ID: f.id("id"), Label: f.str("label", "name")}
	c.extra = leftover(f)
	return nil
}

// UnmarshalJSON decodes a message leniently. Older records used "body" or
// "content" for the text.
func (m *Message) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	*m = Message{
		ID:      f.id("id"),
		Name:    f.str("name"),
		Email:   f.str("email"),
		Subject: f.str("subject"),
		Body:    f.str("message", "body", "content"),
		IP:      f.str("ip"),
		Read:    f.boolean("read"),
	}
	m.CreatedAt, _ = f.timestamp("createdAt")
	m.extra = leftover(f)
	return nil
}

// UnmarshalJSON accepts either an object or a bare IP string.
func (b *BannedIP) UnmarshalJSON(data []byte) error {
	var ip string
	if json.Unmarshal(data, &ip) == nil {
		*b = BannedIP{IP: ip}
		return nil
	}
	f, err := objectFields(data)
	if err != nil {
		return fmt.Errorf("banned ip: %w", err)
	}
	*b = BannedIP{IP: f.str("ip"), Reason: f.str("reason")}
	b.CreatedAt, _ = f.timestamp("createdAt")
	b.extra = leftover(f)
	return nil
}

// UnmarshalJSON decodes the about page leniently.
func (a *About) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return fmt.Errorf("about: %w", err)
	}
	*a = About{
		Title:     f.str("title"),
		HeroImage: f.str("heroImage"),
		Content:   f.str("content"),
		Skills:    f.strList("skills"),
	}
	a.extra = leftover(f)
	return nil
}

// UnmarshalJSON decodes the contact page leniently. Social entries without a
// URL are dropped; if any were, the stored list is kept and written back
// while no usable entry remains.
func (c *Contact) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return fmt.Errorf("contact: %w", err)
	}
	*c = Contact{
		Intro:    f.str("intro"),
		Email:    f.str("email"),
		Phone:    f.str("phone"),
		Location: f.str("location"),
		Socials:  []SocialLink{},
	}
	var items []json.RawMessage
	if raw, ok := f["socials"]; ok && json.Unmarshal(raw, &items) == nil {
		skipped := false
		for _, item := range items {
			sf, err := objectFields(item)
			if err != nil {
				skipped = true
				continue
			}
			link := SocialLink{Label: sf.str("label", "name"), URL: sf.str("url", "href")}
			if link.URL == "" {
				skipped = true
				continue
			}
			c.Socials = append(c.Socials, link)
		}
		if !skipped {
			delete(f, "socials")
		}
	}
	c.extra = leftover(f)
	return nil
}
