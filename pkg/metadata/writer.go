package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

const (
	// maxTIFFSize keeps the block inside one APP1 segment (length field
	// covers itself and the "Exif\0\0" header).
	maxTIFFSize = 0xFFFF - 2 - 6
	tiffHeader  = 8
)

var exifHeader = []byte("Exif\x00\x00")

// ErrNotJPEG is returned by EmbedJPEG for input without a JPEG SOI marker.
var ErrNotJPEG = errors.New("not a JPEG stream")

// Writer is a Sink that serialises tags into a little-endian TIFF block
// suitable for a JPEG APP1 segment.
type Writer struct {
	dirs map[IFD][]Tag
	size int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{dirs: make(map[IFD][]Tag), size: tiffHeader + ifdOverhead}
}

// Set implements Sink. Tags with an unknown type, a ragged value, a
// layout-only id, or that would overflow the segment are rejected.
func (w *Writer) Set(t Tag) error {
	if !t.Valid() {
		return fmt.Errorf("%w: tag 0x%04x has type %d and %d value bytes", ErrUnsupportedTag, t.ID, t.Type, len(t.Value))
	}
	switch t.ID {
	case tagExifPointer, tagGPSPointer, tagInteropPointer:
		return fmt.Errorf("%w: layout tag 0x%04x", ErrUnsupportedTag, t.ID)
	}
	if t.IFD != IFDPrimary && t.IFD != IFDExif && t.IFD != IFDGPS {
		return fmt.Errorf("%w: unknown directory %d", ErrUnsupportedTag, t.IFD)
	}

	t = t.clone()
	dir := w.dirs[t.IFD]
	for i := range dir {
		if dir[i].ID == t.ID {
			delta := entryCost(t) - entryCost(dir[i])
			if w.size+delta > maxTIFFSize {
				return fmt.Errorf("%w: tag 0x%04x overflows the EXIF segment", ErrUnsupportedTag, t.ID)
			}
			dir[i] = t
			w.size += delta
			return nil
		}
	}

	cost := entryCost(t)
	if len(dir) == 0 && t.IFD != IFDPrimary {
		// New sub-directory plus its pointer entry in IFD0.
		cost += ifdOverhead + 12
		if t.IFD == IFDGPS {
			cost += 12 // GPSVersionID
		}
	}
	if w.size+cost > maxTIFFSize {
		return fmt.Errorf("%w: tag 0x%04x overflows the EXIF segment", ErrUnsupportedTag, t.ID)
	}
	w.dirs[t.IFD] = append(dir, t)
	w.size += cost
	return nil
}

// Len returns the number of tags accepted so far.
func (w *Writer) Len() int {
	n := 0
	for _, d := range w.dirs {
		n += len(d)
	}
	return n
}

// TIFF returns the serialised TIFF block: header, IFD0, then the Exif and GPS
// directories when they hold tags.
func (w *Writer) TIFF() []byte {
	primary := append([]Tag(nil), w.dirs[IFDPrimary]...)
	exifDir := append([]Tag(nil), w.dirs[IFDExif]...)
	gpsDir := append([]Tag(nil), w.dirs[IFDGPS]...)

	if len(gpsDir) > 0 && !hasTag(gpsDir, TagGPSVersionID) {
		gpsDir = append(gpsDir, Tag{ID: TagGPSVersionID, Type: TypeByte, Value: []byte{2, 2, 0, 0}, IFD: IFDGPS})
	}
	// Pointer placeholders so IFD0's size is final before offsets are known.
	if len(exifDir) > 0 {
		primary = append(primary, longTag(tagExifPointer, 0))
	}
	if len(gpsDir) > 0 {
		primary = append(primary, longTag(tagGPSPointer, 0))
	}

	primaryAt := uint32(tiffHeader)
	exifAt := primaryAt + uint32(ifdSize(primary))
	gpsAt := exifAt
	if len(exifDir) > 0 {
		gpsAt += uint32(ifdSize(exifDir))
	}
	for i := range primary {
		switch primary[i].ID {
		case tagExifPointer:
			primary[i] = longTag(tagExifPointer, exifAt)
		case tagGPSPointer:
			primary[i] = longTag(tagGPSPointer, gpsAt)
		}
	}

	var buf bytes.Buffer
	buf.Write([]byte{'I', 'I'})
	binary.Write(&buf, binary.LittleEndian, uint16(0x2A))
	binary.Write(&buf, binary.LittleEndian, primaryAt)
	writeIFD(&buf, primary, primaryAt)
	if len(exifDir) > 0 {
		writeIFD(&buf, exifDir, exifAt)
	}
	if len(gpsDir) > 0 {
		writeIFD(&buf, gpsDir, gpsAt)
	}
	return buf.Bytes()
}

// EmbedJPEG returns jpeg with the tags in an APP1 segment right after SOI.
// Any existing EXIF APP1 segment is dropped.
func (w *Writer) EmbedJPEG(jpeg []byte) ([]byte, error) {
	if len(jpeg) < 4 || jpeg[0] != 0xFF || jpeg[1] != 0xD8 {
		return nil, ErrNotJPEG
	}
	block := w.TIFF()

	var out bytes.Buffer
	out.Write(jpeg[:2])
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(2+len(exifHeader)+len(block)))
	out.Write(exifHeader)
	out.Write(block)

	rest := jpeg[2:]
	for len(rest) >= 4 && rest[0] == 0xFF && rest[1] >= 0xE0 && rest[1] <= 0xEF {
		segLen := int(binary.BigEndian.Uint16(rest[2:4]))
		if segLen < 2 || 2+segLen > len(rest) {
			break
		}
		seg := rest[:2+segLen]
		isExif := rest[1] == 0xE1 && bytes.HasPrefix(seg[4:], exifHeader)
		if !isExif {
			out.Write(seg)
		}
		rest = rest[2+segLen:]
	}
	out.Write(rest)
	return out.Bytes(), nil
}

const ifdOverhead = 2 + 4 // entry count + next-IFD offset

func entryCost(t Tag) int {
	if len(t.Value) <= 4 {
		return 12
	}
	return 12 + len(t.Value) + len(t.Value)%2
}

func ifdSize(tags []Tag) int {
	n := ifdOverhead
	for _, t := range tags {
		n += entryCost(t)
	}
	return n
}

func writeIFD(buf *bytes.Buffer, tags []Tag, at uint32) {
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })

	dataAt := at + uint32(2+12*len(tags)+4)
	var data bytes.Buffer

	binary.Write(buf, binary.LittleEndian, uint16(len(tags)))
	for _, t := range tags {
		binary.Write(buf, binary.LittleEndian, t.ID)
		binary.Write(buf, binary.LittleEndian, uint16(t.Type))
		binary.Write(buf, binary.LittleEndian, uint32(t.Count()))
		if len(t.Value) <= 4 {
			var inline [4]byte
			copy(inline[:], t.Value)
			buf.Write(inline[:])
			continue
		}
		binary.Write(buf, binary.LittleEndian, dataAt+uint32(data.Len()))
		data.Write(t.Value)
		if len(t.Value)%2 == 1 {
			data.WriteByte(0)
		}
	}
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.Write(data.Bytes())
}

func longTag(id uint16, v uint32) Tag {
	return LongTag(id, IFDPrimary, v)
}

func hasTag(tags []Tag, id uint16) bool {
	for _, t := range tags {
		if t.ID == id {
			return true
		}
	}
	return false
}
