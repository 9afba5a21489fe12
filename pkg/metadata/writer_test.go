package metadata

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestWriterRejects(t *testing.T) {
	w := NewWriter()

	assert.ErrorIs(t, w.Set(Tag{ID: 0x010F, Type: 42, Value: []byte{1}}), ErrUnsupportedTag)
	assert.ErrorIs(t, w.Set(Tag{ID: 0x0112, Type: TypeShort, Value: []byte{1, 2, 3}}), ErrUnsupportedTag)
	assert.ErrorIs(t, w.Set(longTag(tagExifPointer, 10)), ErrUnsupportedTag)
	assert.ErrorIs(t, w.Set(Tag{ID: 0x0001, Type: TypeByte, Value: []byte{1}, IFD: IFD(7)}), ErrUnsupportedTag)

	big := Tag{ID: 0x927C, Type: TypeUndefined, Value: make([]byte, 70000), IFD: IFDExif}
	assert.ErrorIs(t, w.Set(big), ErrUnsupportedTag)
	assert.Equal(t, 0, w.Len())
}

func TestWriterUpsert(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Set(ASCIITag(TagSoftware, IFDPrimary, "a")))
	require.NoError(t, w.Set(ASCIITag(TagSoftware, IFDPrimary, "much longer value")))
	assert.Equal(t, 1, w.Len())
}

func TestWriterTIFFLayout(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Set(ShortTag(TagOrientation, IFDPrimary, 1)))
	block := w.TIFF()

	require.True(t, len(block) >= 8+2+12+4)
	assert.Equal(t, []byte{'I', 'I', 0x2A, 0}, block[:4])
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(block[4:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(block[8:]))
	assert.Equal(t, TagOrientation, binary.LittleEndian.Uint16(block[10:]))
	assert.Equal(t, uint16(TypeShort), binary.LittleEndian.Uint16(block[12:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(block[14:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(block[18:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(block[22:]), "no next IFD")
}

func TestWriterReadRoundTrip(t *testing.T) {
	src := NewStore(
		ShortTag(TagOrientation, IFDPrimary, 6),
		ASCIITag(0x010F, IFDPrimary, "Maker"),
		ASCIITag(0x9003, IFDExif, "2024:05:01 10:00:00"),
	)
	require.NoError(t, src.SetGPS(37.4219, -122.0840))

	w := NewWriter()
	skipped := src.ApplyTo(w, Overrides{Software: "PanCrop", Editor: "Ed"})
	assert.Equal(t, 0, skipped)

	out, err := w.EmbedJPEG(encodeTestJPEG(t))
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(out))
	require.NoError(t, err)

	lat, lon, ok := DecodeGPS(got)
	require.True(t, ok)
	assert.InDelta(t, 37.4219, lat, 1e-6)
	assert.InDelta(t, -122.0840, lon, 1e-6)

	o, ok := got.Get(TagOrientation)
	require.True(t, ok)
	v, _ := o.Short()
	assert.Equal(t, uint16(OrientationNormal), v)

	sw, ok := got.Get(TagSoftware)
	require.True(t, ok)
	assert.Equal(t, "PanCrop", sw.ASCII())

	ed, ok := got.Get(TagArtist)
	require.True(t, ok)
	assert.Equal(t, "Ed", ed.ASCII())

	dt, ok := got.Get(0x9003)
	require.True(t, ok)
	assert.Equal(t, IFDExif, dt.IFD)
	assert.Equal(t, "2024:05:01 10:00:00", dt.ASCII())

	ver, ok := got.Get(TagGPSVersionID)
	require.True(t, ok)
	assert.Equal(t, []byte{2, 2, 0, 0}, ver.Value)

	_, ok = got.Get(tagExifPointer)
	assert.False(t, ok, "pointer tags are not captured")
}

func TestEmbedJPEGReplacesExistingExif(t *testing.T) {
	first := NewWriter()
	require.NoError(t, first.Set(ASCIITag(TagSoftware, IFDPrimary, "first")))
	once, err := first.EmbedJPEG(encodeTestJPEG(t))
	require.NoError(t, err)

	second := NewWriter()
	require.NoError(t, second.Set(ASCIITag(TagSoftware, IFDPrimary, "second")))
	twice, err := second.EmbedJPEG(once)
	require.NoError(t, err)

	assert.Equal(t, 1, bytes.Count(twice, exifHeader))
	got, err := Read(bytes.NewReader(twice))
	require.NoError(t, err)
	sw, ok := got.Get(TagSoftware)
	require.True(t, ok)
	assert.Equal(t, "second", sw.ASCII())

	_, err = jpeg.Decode(bytes.NewReader(twice))
	assert.NoError(t, err, "output is still a decodable JPEG")
}

func TestEmbedJPEGRejectsNonJPEG(t *testing.T) {
	_, err := NewWriter().EmbedJPEG([]byte("\x89PNG...."))
	assert.ErrorIs(t, err, ErrNotJPEG)
}

func TestReadWithoutExif(t *testing.T) {
	s, err := Read(bytes.NewReader(encodeTestJPEG(t)))
	assert.ErrorIs(t, err, ErrNoMetadata)
	require.NotNil(t, s)
	assert.Equal(t, 0, s.Len())
}
