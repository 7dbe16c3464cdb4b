// Package sanitize cleans short user-supplied strings (contact form fields,
// category labels, titles) before they are stored. It strips all markup
// with bluemonday's strict policy and keeps the text itself intact.
//
// Long-form markdown (descriptions, story bodies, the about page) is not
// passed through here; it is rendered client side by a markdown renderer
// that does not execute raw HTML.
package sanitize

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes every HTML tag from input and trims surrounding space.
// Entities escaped by the sanitizer are decoded again so "Q&A" stays "Q&A".
func Text(input string) string {
	if input == "" {
		return ""
	}
	cleaned := getPolicy().Sanitize(input)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Line is Text for single-line fields: control characters are dropped and
// whitespace runs collapse to one space. The result is cut to max runes
// when max > 0.
func Line(input string, max int) string {
	s := Text(input)
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return truncate(b.String(), max)
}

// Multiline is Text for free-text fields such as message bodies: line
// breaks survive, other control characters are dropped.
func Multiline(input string, max int) string {
	s := strings.ReplaceAll(Text(input), "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return truncate(s, max)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
