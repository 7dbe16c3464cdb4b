package content

// PathNormalizer rewrites one media reference; *uploads.Resolver satisfies it.
type PathNormalizer interface {
	NormalizePath(value string) string
}

// Normalizer rewrites drifted media references in projects and stories into
// canonical /uploads/... form. It never mutates its input: an unchanged
// record is returned as the same pointer, a changed one as a shallow copy
// with fresh slices.
type Normalizer struct {
	paths PathNormalizer
}

// NewNormalizer creates a Normalizer backed by paths.
func NewNormalizer(paths PathNormalizer) *Normalizer {
	return &Normalizer{paths: paths}
}

// Project normalizes the cover image, gallery, legacy hero and every block's
// image and video.
func (n *Normalizer) Project(p *Project) (*Project, bool) {
	if p == nil {
		return nil, false
	}

	cover, c1 := n.one(p.CoverImage)
	hero, c2 := n.one(p.Hero)
	images, c3 := n.list(p.Images)
	blocks, c4 := n.blocks(p.ContentBlocks)
	if !(c1 || c2 || c3 || c4) {
		return p, false
	}

	out := *p
	out.CoverImage = cover
	out.Hero = hero
	out.Images = images
	out.ContentBlocks = blocks
	return &out, true
}

// Story normalizes the cover image, legacy image, gallery and every block's
// image and video.
func (n *Normalizer) Story(s *Story) (*Story, bool) {
	if s == nil {
		return nil, false
	}

	cover, c1 := n.one(s.CoverImage)
	image, c2 := n.one(s.Image)
	images, c3 := n.list(s.Images)
	blocks, c4 := n.blocks(s.ContentBlocks)
	if !(c1 || c2 || c3 || c4) {
		return s, false
	}

	out := *s
	out.CoverImage = cover
	out.Image = image
	out.Images = images
	out.ContentBlocks = blocks
	return &out, true
}

func (n *Normalizer) one(value string) (string, bool) {
	if value == "" {
		return value, false
	}
	out := n.paths.NormalizePath(value)
	return out, out != value
}

// list returns the input slice itself when nothing changed.
func (n *Normalizer) list(values []string) ([]string, bool) {
	var out []string
	for i, v := range values {
		nv, changed := n.one(v)
		if !changed {
			continue
		}
		if out == nil {
			out = append([]string(nil), values...)
		}
		out[i] = nv
	}
	if out == nil {
		return values, false
	}
	return out, true
}

// blocks returns the input slice itself when nothing changed. Raw legacy
// blocks pass through.
func (n *Normalizer) blocks(blocks []ContentBlock) ([]ContentBlock, bool) {
	var out []ContentBlock
	for i, b := range blocks {
		if b.IsRaw() {
			continue
		}
		image, c1 := n.one(b.Image)
		video, c2 := n.one(b.Video)
		if !c1 && !c2 {
			continue
		}
		if out == nil {
			out = append([]ContentBlock(nil), blocks...)
		}
		out[i].Image = image
		out[i].Video = video
	}
	if out == nil {
		return blocks, false
	}
	return out, true
}
