package media

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markdownImage matches ![alt](url) and ![alt](url "title").
var markdownImage = regexp.MustCompile(`!\[[^\]]*\]\(\s*([^)\s]+)(?:\s+"[^"]*")?\s*\)`)

// markdownImageURLs returns the destination of every image in src. The
// inline pattern is always applied; a CommonMark parse adds forms it
// misses, such as reference-style images and <...> destinations. A URL may
// appear twice.
func markdownImageURLs(src string) []string {
	var out []string
	for _, m := range markdownImage.FindAllStringSubmatch(src, -1) {
		out = append(out, m[1])
	}
	if !strings.Contains(src, "![") {
		return out
	}

	doc := goldmark.New().Parser().Parse(text.NewReader([]byte(src)))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := n.(*ast.Image); ok && entering && len(img.Destination) > 0 {
			out = append(out, string(img.Destination))
		}
		return ast.WalkContinue, nil
	})
	return out
}
