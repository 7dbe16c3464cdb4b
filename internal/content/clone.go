package content

import "slices"

// Clone returns a copy of p that shares no slices with it.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Tags = slices.Clone(p.Tags)
	out.Images = slices.Clone(p.Images)
	out.ContentBlocks = slices.Clone(p.ContentBlocks)
	out.ViewHistory = slices.Clone(p.ViewHistory)
	if p.FeaturedAt != nil {
		t := *p.FeaturedAt
		out.FeaturedAt = &t
	}
	out.EnsureSlices()
	return &out
}

// Clone returns a copy of s that shares no slices with it.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	out := *s
	out.Images = slices.Clone(s.Images)
	out.ContentBlocks = slices.Clone(s.ContentBlocks)
	out.ViewHistory = slices.Clone(s.ViewHistory)
	out.EnsureSlices()
	return &out
}

// Clone returns a copy of a that shares no slices with it.
func (a About) Clone() About {
	a.Skills = slices.Clone(a.Skills)
	if a.Skills == nil {
		a.Skills = []string{}
	}
	return a
}

// Clone returns a copy of c that shares no slices with it.
func (c Contact) Clone() Contact {
	c.Socials = slices.Clone(c.Socials)
	if c.Socials == nil {
		c.Socials = []SocialLink{}
	}
	return c
}

// Public returns a copy for anonymous readers. View history holds visitor
// IPs and is emptied.
func (p *Project) Public() *Project {
	out := p.Clone()
	out.ViewHistory = []ViewRecord{}
	return out
}

// Public returns a copy for anonymous readers with view history emptied.
func (s *Story) Public() *Story {
	out := s.Clone()
	out.ViewHistory = []ViewRecord{}
	return out
}
