package metadata

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Fields that describe file layout rather than the image. They are
// regenerated when a file is written.
var layoutFields = map[exif.FieldName]bool{
	exif.ExifIFDPointer:                   true,
	exif.GPSInfoIFDPointer:                true,
	exif.InteroperabilityIFDPointer:       true,
	exif.InteroperabilityIndex:            true,
	exif.ThumbJPEGInterchangeFormat:       true,
	exif.ThumbJPEGInterchangeFormatLength: true,
}

// Read captures the EXIF tags of an encoded image. Inputs without EXIF yield
// an empty store and an error wrapping ErrNoMetadata; callers usually treat
// that as "no tags".
func Read(r io.Reader) (*Store, error) {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return NewStore(), fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	c := &collector{}
	if err := x.Walk(c); err != nil {
		return NewStore(), fmt.Errorf("walking EXIF: %w", err)
	}

	// Walk order follows a map; keep the store deterministic.
	sort.SliceStable(c.tags, func(i, j int) bool {
		if c.tags[i].IFD != c.tags[j].IFD {
			return c.tags[i].IFD < c.tags[j].IFD
		}
		return c.tags[i].ID < c.tags[j].ID
	})
	return NewStore(c.tags...), nil
}

type collector struct {
	tags []Tag
}

// Walk implements exif.Walker.
func (c *collector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if layoutFields[name] || tag == nil {
		return nil
	}
	value, ok := littleEndianValue(tag)
	if !ok {
		return nil
	}
	c.tags = append(c.tags, Tag{
		ID:    tag.Id,
		Type:  TagType(tag.Type),
		Value: value,
		IFD:   ifdFor(name, tag.Id),
	})
	return nil
}

func ifdFor(name exif.FieldName, id uint16) IFD {
	switch {
	case id < 0x0020 && strings.HasPrefix(string(name), "GPS"):
		return IFDGPS
	case id < 0x8000 || name == exif.Copyright:
		return IFDPrimary
	default:
		return IFDExif
	}
}

// littleEndianValue re-encodes a tag value in little-endian order through the
// typed accessors, since the source byte order is not exposed.
func littleEndianValue(tag *tiff.Tag) ([]byte, bool) {
	typ := TagType(tag.Type)
	size := typ.Size()
	if size == 0 {
		return nil, false
	}
	n := int(tag.Count)
	switch typ {
	case TypeByte, TypeASCII, TypeSByte, TypeUndefined:
		if len(tag.Val) < n {
			return nil, false
		}
		return append([]byte(nil), tag.Val[:n]...), true
	}

	out := make([]byte, n*size)
	for i := 0; i < n; i++ {
		b := out[i*size:]
		switch typ {
		case TypeShort, TypeSShort:
			v, err := tag.Int64(i)
			if err != nil {
				return nil, false
			}
			binary.LittleEndian.PutUint16(b, uint16(v))
		case TypeLong, TypeSLong:
			v, err := tag.Int64(i)
			if err != nil {
				return nil, false
			}
			binary.LittleEndian.PutUint32(b, uint32(v))
		case TypeRational, TypeSRational:
			num, den, err := tag.Rat2(i)
			if err != nil {
				return nil, false
			}
			binary.LittleEndian.PutUint32(b, uint32(num))
			binary.LittleEndian.PutUint32(b[4:], uint32(den))
		case TypeFloat:
			v, err := tag.Float(i)
			if err != nil {
				return nil, false
			}
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		case TypeDouble:
			v, err := tag.Float(i)
			if err != nil {
				return nil, false
			}
			binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		}
	}
	return out, true
}
