package metadata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// secondsDenominator fixes seconds to six decimal digits.
const secondsDenominator = 1_000_000

// ErrInvalidCoordinate is returned for latitudes or longitudes out of range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ValidCoordinate reports whether lat/lon are finite and in range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DecodeGPS reads decimal degrees from the GPS tags. Missing or malformed
// coordinate tags yield ok == false. A missing hemisphere reference is read
// as north/east.
func DecodeGPS(s *Store) (lat, lon float64, ok bool) {
	latTag, ok1 := s.Get(TagGPSLatitude)
	lonTag, ok2 := s.Get(TagGPSLongitude)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	lat, ok1 = decodeDMS(latTag)
	lon, ok2 = decodeDMS(lonTag)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	if ref, found := s.Get(TagGPSLatitudeRef); found && len(ref.Value) > 0 && ref.Value[0] == 'S' {
		lat = -lat
	}
	if ref, found := s.Get(TagGPSLongitudeRef); found && len(ref.Value) > 0 && ref.Value[0] == 'W' {
		lon = -lon
	}
	return lat, lon, true
}

// EncodeGPS returns the latitude ref, latitude, longitude ref and longitude
// tags for the given decimal degrees.
func EncodeGPS(lat, lon float64) [4]Tag {
	latRef, lonRef := byte('N'), byte('E')
	if lat < 0 {
		latRef = 'S'
	}
	if lon < 0 {
		lonRef = 'W'
	}
	return [4]Tag{
		{ID: TagGPSLatitudeRef, Type: TypeASCII, Value: []byte{latRef, 0}, IFD: IFDGPS},
		{ID: TagGPSLatitude, Type: TypeRational, Value: encodeDMS(math.Abs(lat)), IFD: IFDGPS},
		{ID: TagGPSLongitudeRef, Type: TypeASCII, Value: []byte{lonRef, 0}, IFD: IFDGPS},
		{ID: TagGPSLongitude, Type: TypeRational, Value: encodeDMS(math.Abs(lon)), IFD: IFDGPS},
	}
}

// SetGPS upserts the four GPS coordinate tags.
func (s *Store) SetGPS(lat, lon float64) error {
	if !ValidCoordinate(lat, lon) {
		return fmt.Errorf("%w: %v, %v", ErrInvalidCoordinate, lat, lon)
	}
	for _, t := range EncodeGPS(lat, lon) {
		s.SetOrReplace(t)
	}
	return nil
}

// ClearGPS removes the GPS coordinate tags.
func (s *Store) ClearGPS() {
	for _, id := range []uint16{TagGPSLatitudeRef, TagGPSLatitude, TagGPSLongitudeRef, TagGPSLongitude} {
		s.Remove(id)
	}
}

// ParseCoordinates parses "lat, lon" in decimal degrees as typed by a user.
func ParseCoordinates(text string) (lat, lon float64, err error) {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' || r == ' ' })
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected \"lat, lon\", got %q", ErrInvalidCoordinate, text)
	}
	if lat, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return 0, 0, fmt.Errorf("%w: latitude: %v", ErrInvalidCoordinate, err)
	}
	if lon, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return 0, 0, fmt.Errorf("%w: longitude: %v", ErrInvalidCoordinate, err)
	}
	if !ValidCoordinate(lat, lon) {
		return 0, 0, fmt.Errorf("%w: %v, %v", ErrInvalidCoordinate, lat, lon)
	}
	return lat, lon, nil
}

func decodeDMS(t Tag) (float64, bool) {
	if t.Type != TypeRational || len(t.Value) < 24 {
		return 0, false
	}
	var parts [3]float64
	for i := range parts {
		num := binary.LittleEndian.Uint32(t.Value[i*8:])
		den := binary.LittleEndian.Uint32(t.Value[i*8+4:])
		if den == 0 {
			return 0, false
		}
		parts[i] = float64(num) / float64(den)
	}
	return parts[0] + parts[1]/60 + parts[2]/3600, true
}

func encodeDMS(v float64) []byte {
	deg := math.Floor(v)
	minutes := math.Floor((v - deg) * 60)
	sec := ((v-deg)*60 - minutes) * 60
	secNum := uint64(math.Round(sec * secondsDenominator))

	// Rounding can push seconds (and then minutes) up to a full unit.
	if secNum >= 60*secondsDenominator {
		secNum -= 60 * secondsDenominator
		minutes++
	}
	if minutes >= 60 {
		minutes -= 60
		deg++
	}

	b := make([]byte, 24)
	putRational(b[0:], uint32(deg), 1)
	putRational(b[8:], uint32(minutes), 1)
	putRational(b[16:], uint32(secNum), secondsDenominator)
	return b
}

func putRational(b []byte, num, den uint32) {
	binary.LittleEndian.PutUint32(b, num)
	binary.LittleEndian.PutUint32(b[4:], den)
}
