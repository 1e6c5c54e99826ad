// Package exifinfo recovers capture time and GPS position from image bytes.
package exifinfo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	_ "golang.org/x/image/webp"
)

// DateTimeLayout is the EXIF DateTimeOriginal layout (YYYY:MM:DD HH:MM:SS).
const DateTimeLayout = "2006:01:02 15:04:05"

var ErrMetadataParse = errors.New("metadata parse error")

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type Info struct {
	TakenAt *time.Time
	GPS     *Coordinates
}

// Parse validates the image container and decodes its EXIF block if there is one.
// An image without EXIF yields an empty Info. Individual malformed tags are
// reported as absent.
func Parse(data []byte) (Info, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrMetadataParse, err)
	}

	var payload []byte
	switch format {
	case "jpeg":
		payload = findJPEGExif(data)
	case "png":
		payload = findPNGExif(data)
	case "webp":
		payload = findWebpExif(data)
	}

	if len(payload) == 0 {
		return Info{}, nil
	}

	x, err := exif.Decode(bytes.NewReader(payload))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return Info{}, fmt.Errorf("%w: %v", ErrMetadataParse, err)
	}

	return Info{
		TakenAt: takenAt(x),
		GPS:     gps(x),
	}, nil
}

func takenAt(x *exif.Exif) *time.Time {
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return nil
	}

	s, err := tag.StringVal()
	if err != nil {
		return nil
	}

	t, err := time.Parse(DateTimeLayout, strings.Trim(s, "\x00 "))
	if err != nil {
		return nil
	}

	return &t
}

func gps(x *exif.Exif) *Coordinates {
	lat, ok := coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef, "S")
	if !ok {
		return nil
	}

	lon, ok := coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef, "W")
	if !ok {
		return nil
	}

	return &Coordinates{Latitude: lat, Longitude: lon}
}

// coordinate converts a degrees/minutes/seconds rational triple to signed decimal degrees.
// A missing reference tag means the positive hemisphere.
func coordinate(x *exif.Exif, field, refField exif.FieldName, negativeRef string) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil || tag.Count < 3 {
		return 0, false
	}

	parts := [3]float64{}
	for i := range parts {
		v, ok := rational(tag, i)
		if !ok {
			return 0, false
		}
		parts[i] = v
	}

	value := parts[0] + parts[1]/60 + parts[2]/3600

	if ref, err := x.Get(refField); err == nil {
		if s, err := ref.StringVal(); err == nil && strings.EqualFold(strings.Trim(s, "\x00 "), negativeRef) {
			value = -value
		}
	}

	return value, true
}

func rational(tag *tiff.Tag, i int) (float64, bool) {
	num, den, err := tag.Rat2(i)
	if err != nil || den == 0 {
		return 0, false
	}

	return float64(num) / float64(den), true
}

// findJPEGExif walks the marker segments up to SOS and returns the TIFF block of the Exif APP1 segment.
func findJPEGExif(data []byte) []byte {
	const exifHeader = "Exif\x00\x00"

	i := 2 // SOI
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return nil
		}

		marker := data[i+1]
		switch {
		case marker == 0xFF:
			i++
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD8):
			i += 2
			continue
		case marker == 0xDA || marker == 0xD9:
			return nil
		}

		length := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if length < 2 || i+2+length > len(data) {
			return nil
		}

		segment := data[i+4 : i+2+length]
		if marker == 0xE1 && bytes.HasPrefix(segment, []byte(exifHeader)) {
			return segment[len(exifHeader):]
		}

		i += 2 + length
	}

	return nil
}

// findPNGExif returns the body of the eXIf chunk.
func findPNGExif(data []byte) []byte {
	i := 8 // signature
	for i+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[i : i+4]))
		typ := string(data[i+4 : i+8])

		end := i + 8 + length
		if length < 0 || end+4 > len(data) {
			return nil
		}

		switch typ {
		case "eXIf":
			return data[i+8 : end]
		case "IEND":
			return nil
		}

		i = end + 4 // crc
	}

	return nil
}

// findWebpExif returns the body of the RIFF EXIF chunk.
func findWebpExif(data []byte) []byte {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil
	}

	i := 12
	for i+8 <= len(data) {
		fourcc := string(data[i : i+4])
		size := int(binary.LittleEndian.Uint32(data[i+4 : i+8]))

		end := i + 8 + size
		if size < 0 || end > len(data) {
			return nil
		}

		if fourcc == "EXIF" {
			// some encoders keep the JPEG-style prefix
			return bytes.TrimPrefix(data[i+8:end], []byte("Exif\x00\x00"))
		}

		i = end + size%2
	}

	return nil
}
