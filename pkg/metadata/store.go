package metadata

import (
	"github.com/dixieflatline76/PanCrop/util/log"
)

// Sink receives tags at export time. Set returns an error for tags the
// destination cannot hold; such tags are skipped.
type Sink interface {
	Set(tag Tag) error
}

// Overrides are the identification values stamped on every export.
type Overrides struct {
	Software string
	Editor   string
	// Width and Height are the exported pixel size. The Exif pixel
	// dimensions are rewritten to them, or dropped when either is zero.
	Width, Height int
}

// Store is an ordered set of tags keyed by id.
type Store struct {
	tags []Tag
}

// NewStore returns a store holding tags. Later duplicates replace earlier
// ones.
func NewStore(tags ...Tag) *Store {
	s := &Store{}
	for _, t := range tags {
		s.SetOrReplace(t)
	}
	return s
}

// Len returns the number of tags.
func (s *Store) Len() int {
	return len(s.tags)
}

// Tags returns a copy of the tags in order.
func (s *Store) Tags() []Tag {
	out := make([]Tag, len(s.tags))
	for i, t := range s.tags {
		out[i] = t.clone()
	}
	return out
}

// Get returns the tag with the given id.
func (s *Store) Get(id uint16) (Tag, bool) {
	for _, t := range s.tags {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Tag{}, false
}

// SetOrReplace replaces the first tag with the same id, or appends.
func (s *Store) SetOrReplace(tag Tag) {
	tag = tag.clone()
	for i := range s.tags {
		if s.tags[i].ID == tag.ID {
			s.tags[i] = tag
			return
		}
	}
	s.tags = append(s.tags, tag)
}

// Remove deletes the tag with the given id and reports whether it existed.
func (s *Store) Remove(id uint16) bool {
	for i := range s.tags {
		if s.tags[i].ID == id {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	return &Store{tags: s.Tags()}
}

// ApplyTo copies the tags onto dst for export. The orientation is forced to
// normal because pixels are already physically reoriented, and the software
// and editor tags are overwritten with o. The pixel dimensions follow
// o.Width and o.Height. The live store is not modified. It
// returns the number of tags dst rejected.
func (s *Store) ApplyTo(dst Sink, o Overrides) int {
	out := s.Clone()
	out.SetOrReplace(ShortTag(TagOrientation, IFDPrimary, OrientationNormal))
	if o.Software != "" {
		out.SetOrReplace(ASCIITag(TagSoftware, IFDPrimary, o.Software))
	}
	if o.Editor != "" {
		out.SetOrReplace(ASCIITag(TagArtist, IFDPrimary, o.Editor))
	}
	if o.Width > 0 && o.Height > 0 {
		out.SetOrReplace(LongTag(TagPixelXDimension, IFDExif, uint32(o.Width)))
		out.SetOrReplace(LongTag(TagPixelYDimension, IFDExif, uint32(o.Height)))
	} else {
		out.Remove(TagPixelXDimension)
		out.Remove(TagPixelYDimension)
	}

	skipped := 0
	for _, t := range out.tags {
		if err := dst.Set(t); err != nil {
			log.Debugf("skipping tag 0x%04x: %v", t.ID, err)
			skipped++
		}
	}
	return skipped
}
