// Package metadata holds the EXIF tags captured from a loaded image, the GPS
// rational codec, and the reader/writer that move tags in and out of files.
//
// Tag values are always stored little-endian regardless of the byte order of
// the file they came from.
package metadata

import (
	"encoding/binary"
	"errors"
)

// TagType is the TIFF field type of a tag value.
type TagType uint16

// TIFF field types.
const (
	TypeByte      TagType = 1
	TypeASCII     TagType = 2
	TypeShort     TagType = 3
	TypeLong      TagType = 4
	TypeRational  TagType = 5
	TypeSByte     TagType = 6
	TypeUndefined TagType = 7
	TypeSShort    TagType = 8
	TypeSLong     TagType = 9
	TypeSRational TagType = 10
	TypeFloat     TagType = 11
	TypeDouble    TagType = 12
)

// Size returns the byte size of one component, or 0 for unknown types.
func (t TagType) Size() int {
	switch t {
	case TypeByte, TypeASCII, TypeSByte, TypeUndefined:
		return 1
	case TypeShort, TypeSShort:
		return 2
	case TypeLong, TypeSLong, TypeFloat:
		return 4
	case TypeRational, TypeSRational, TypeDouble:
		return 8
	default:
		return 0
	}
}

// IFD names the directory a tag is written into.
type IFD int

// Directories a tag can live in.
const (
	IFDPrimary IFD = iota
	IFDExif
	IFDGPS
)

// Tag ids used by the engine.
const (
	TagGPSVersionID    uint16 = 0x0000
	TagGPSLatitudeRef  uint16 = 0x0001
	TagGPSLatitude     uint16 = 0x0002
	TagGPSLongitudeRef uint16 = 0x0003
	TagGPSLongitude    uint16 = 0x0004
	TagOrientation     uint16 = 0x0112
	TagSoftware        uint16 = 0x0131
	TagArtist          uint16 = 0x013B
	TagPixelXDimension uint16 = 0xA002
	TagPixelYDimension uint16 = 0xA003

	tagExifPointer    uint16 = 0x8769
	tagGPSPointer     uint16 = 0x8825
	tagInteropPointer uint16 = 0xA005
)

// OrientationNormal is the orientation value for "no rotation".
const OrientationNormal = 1

var (
	// ErrUnsupportedTag is returned by a Sink that cannot hold a tag.
	ErrUnsupportedTag = errors.New("tag not supported by destination")
	// ErrNoMetadata means the input carried no readable EXIF block.
	ErrNoMetadata = errors.New("no EXIF metadata")
)

// Tag is a single metadata entry. IDs are unique within a Store.
type Tag struct {
	ID    uint16
	Type  TagType
	Value []byte
	IFD   IFD
}

// Count returns the number of components in the value.
func (t Tag) Count() int {
	size := t.Type.Size()
	if size == 0 {
		return 0
	}
	return len(t.Value) / size
}

// Valid reports whether the value is a non-empty whole number of components.
func (t Tag) Valid() bool {
	size := t.Type.Size()
	return size > 0 && len(t.Value) > 0 && len(t.Value)%size == 0
}

func (t Tag) clone() Tag {
	t.Value = append([]byte(nil), t.Value...)
	return t
}

// ASCIITag builds a NUL-terminated ASCII tag.
func ASCIITag(id uint16, ifd IFD, s string) Tag {
	v := make([]byte, len(s)+1)
	copy(v, s)
	return Tag{ID: id, Type: TypeASCII, Value: v, IFD: ifd}
}

// ShortTag builds a single SHORT tag.
func ShortTag(id uint16, ifd IFD, v uint16) Tag {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return Tag{ID: id, Type: TypeShort, Value: b, IFD: ifd}
}

// LongTag builds a single LONG tag.
func LongTag(id uint16, ifd IFD, v uint32) Tag {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return Tag{ID: id, Type: TypeLong, Value: b, IFD: ifd}
}

// ASCII returns an ASCII tag value without the trailing NUL.
func (t Tag) ASCII() string {
	v := t.Value
	for len(v) > 0 && v[len(v)-1] == 0 {
		v = v[:len(v)-1]
	}
	return string(v)
}

// Long returns the first LONG component.
func (t Tag) Long() (uint32, bool) {
	if t.Type != TypeLong || len(t.Value) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(t.Value), true
}

// Short returns the first SHORT component.
func (t Tag) Short() (uint16, bool) {
	if t.Type != TypeShort || len(t.Value) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(t.Value), true
}
