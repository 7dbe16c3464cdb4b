package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// passthrough holds the parts of a stored object that decoding did not
// consume: keys the record type does not know, and known keys whose value
// had an unusable type. They are written back on encode so a load/save
// round trip keeps everything that was on disk.
type passthrough map[string]json.RawMessage

// leftover returns what the accessors of f did not consume.
func leftover(f fields) passthrough {
	if len(f) == 0 {
		return nil
	}
	pt := make(passthrough, len(f))
	for k, v := range f {
		pt[k] = v
	}
	return pt
}

// merge writes the kept keys into encoded, a JSON object. A kept key
// replaces an encoded key only when the encoded value is empty; kept keys
// the record does not encode are appended in key order.
func (pt passthrough) merge(encoded []byte) ([]byte, error) {
	if len(pt) == 0 {
		return encoded, nil
	}

	dec := json.NewDecoder(bytes.NewReader(encoded))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("merging stored fields: encoded value is not an object")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	written := make(map[string]bool, len(pt))
	write := func(key string, value json.RawMessage) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("merging stored fields: %w", err)
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("merging stored fields: %w", err)
		}
		if kept, ok := pt[key]; ok && isEmptyJSON(value) {
			value = kept
		}
		written[key] = true
		write(key, value)
	}

	keys := make([]string, 0, len(pt))
	for k := range pt {
		if !written[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		write(k, pt[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// without returns pt minus the given keys. It never modifies pt.
func (pt passthrough) without(keys map[string]bool) passthrough {
	var out passthrough
	for k, v := range pt {
		if keys[k] {
			continue
		}
		if out == nil {
			out = make(passthrough)
		}
		out[k] = v
	}
	return out
}

// strings returns every string nested anywhere in the kept values.
func (pt passthrough) strings() []string {
	var out []string
	for _, v := range pt {
		out = append(out, nestedStrings(v)...)
	}
	return out
}

func nestedStrings(raw json.RawMessage) []string {
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	var out []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case []any:
			for _, e := range t {
				walk(e)
			}
		case map[string]any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(v)
	return out
}

func isEmptyJSON(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case `""`, "null", "[]", "{}", "0", "false":
		return true
	}
	return false
}

// jsonKeys lists the JSON object keys a struct type encodes.
func jsonKeys(v any) map[string]bool {
	t := reflect.TypeOf(v)
	keys := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[name] = true
	}
	return keys
}

// editedKeys lists the keys an admin edit sets on a record. createdAt is
// carried over from the stored record, so an unreadable stored value of it
// stays with the record.
func editedKeys(v any) map[string]bool {
	keys := jsonKeys(v)
	delete(keys, "createdAt")
	return keys
}

var (
	projectKeys = editedKeys(Project{})
	storyKeys   = editedKeys(Story{})
	aboutKeys   = jsonKeys(About{})
	contactKeys = jsonKeys(Contact{})
)

// Method-free copies of the record types, so MarshalJSON can encode the
// typed fields without recursing.
type (
	projectJSON  Project
	storyJSON    Story
	categoryJSON Category
	messageJSON  Message
	bannedIPJSON BannedIP
	aboutJSON    About
	contactJSON  Contact
)

// marshalKeeping encodes v and merges the kept fields into it.
func marshalKeeping[T any](v T, extra passthrough) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return extra.merge(b)
}

// MarshalJSON writes the project's fields followed by any stored fields
// decoding kept.
func (p Project) MarshalJSON() ([]byte, error) {
	return marshalKeeping(projectJSON(p), p.extra)
}

// MarshalJSON writes the story's fields followed by any stored fields
// decoding kept.
func (s Story) MarshalJSON() ([]byte, error) {
	return marshalKeeping(storyJSON(s), s.extra)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return marshalKeeping(categoryJSON(c), c.extra)
}

func (m Message) MarshalJSON() ([]byte, error) {
	return marshalKeeping(messageJSON(m), m.extra)
}

func (b BannedIP) MarshalJSON() ([]byte, error) {
	return marshalKeeping(bannedIPJSON(b), b.extra)
}

func (a About) MarshalJSON() ([]byte, error) {
	return marshalKeeping(aboutJSON(a), a.extra)
}

func (c Contact) MarshalJSON() ([]byte, error) {
	return marshalKeeping(contactJSON(c), c.extra)
}

// KeepUnknownFrom copies the stored keys of old that an edit does not set
// onto p, so replacing a record's editable fields keeps data written by
// other tools.
func (p *Project) KeepUnknownFrom(old *Project) {
	if old != nil {
		p.extra = old.extra.without(projectKeys)
	}
}

// KeepUnknownFrom copies the stored keys of old that an edit does not set
// onto s.
func (s *Story) KeepUnknownFrom(old *Story) {
	if old != nil {
		s.extra = old.extra.without(storyKeys)
	}
}

// KeepUnknownFrom copies the stored keys of old that About does not define.
func (a *About) KeepUnknownFrom(old About) {
	a.extra = old.extra.without(aboutKeys)
}

// KeepUnknownFrom copies the stored keys of old that Contact does not
// define.
func (c *Contact) KeepUnknownFrom(old Contact) {
	c.extra = old.extra.without(contactKeys)
}

// StoredStrings returns the strings inside stored values the typed fields
// could not hold, including blocks that were not objects. They may still
// be media references.
func (p *Project) StoredStrings() []string {
	return append(p.extra.strings(), blockStrings(p.ContentBlocks)...)
}

// StoredStrings returns the strings inside stored values the typed fields
// could not hold.
func (s *Story) StoredStrings() []string {
	return append(s.extra.strings(), blockStrings(s.ContentBlocks)...)
}

// StoredStrings returns the strings inside stored values the about page
// could not hold.
func (a About) StoredStrings() []string {
	return a.extra.strings()
}

func blockStrings(blocks []ContentBlock) []string {
	var out []string
	for _, b := range blocks {
		if b.raw != nil {
			out = append(out, nestedStrings(b.raw)...)
			continue
		}
		out = append(out, b.extra.strings()...)
	}
	return out
}

// Opaque is a list entry that was not a JSON object. It is kept verbatim
// with its position so a save writes it back where it was.
type Opaque struct {
	Index int
	Raw   json.RawMessage
}

// Strings returns every string inside the entry.
func (o Opaque) Strings() []string {
	return nestedStrings(o.Raw)
}

// Restore inserts opaque entries into encoded records at their recorded
// positions, clamped to the end of the list.
func Restore(records []json.RawMessage, opaque []Opaque) []json.RawMessage {
	if len(opaque) == 0 {
		return records
	}
	out := slices.Clone(records)
	for _, o := range opaque {
		i := min(max(o.Index, 0), len(out))
		out = slices.Insert(out, i, o.Raw)
	}
	return out
}
