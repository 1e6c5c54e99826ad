// Package exiftest builds small JPEG and PNG images carrying synthetic EXIF blocks.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
)

const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5

	tagExifIFD          = 0x8769
	tagGPSIFD           = 0x8825
	tagDateTimeOriginal = 0x9003
	tagGPSLatitudeRef   = 0x0001
	tagGPSLatitude      = 0x0002
	tagGPSLongitudeRef  = 0x0003
	tagGPSLongitude     = 0x0004
)

// GPS describes a position as unsigned magnitudes plus hemisphere references.
// Empty refs are omitted from the block.
type GPS struct {
	Latitude     float64
	LatitudeRef  string
	Longitude    float64
	LongitudeRef string
}

type Options struct {
	DateTimeOriginal string
	GPS              *GPS
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte // inline when len <= 4
}

// TIFF returns a little-endian TIFF block with IFD0 and optional Exif and GPS sub-IFDs.
func TIFF(opts Options) []byte {
	var exifEntries, gpsEntries []entry

	if opts.DateTimeOriginal != "" {
		exifEntries = append(exifEntries, asciiEntry(tagDateTimeOriginal, opts.DateTimeOriginal))
	}

	if g := opts.GPS; g != nil {
		if g.LatitudeRef != "" {
			gpsEntries = append(gpsEntries, asciiEntry(tagGPSLatitudeRef, g.LatitudeRef))
		}
		gpsEntries = append(gpsEntries, dmsEntry(tagGPSLatitude, g.Latitude))
		if g.LongitudeRef != "" {
			gpsEntries = append(gpsEntries, asciiEntry(tagGPSLongitudeRef, g.LongitudeRef))
		}
		gpsEntries = append(gpsEntries, dmsEntry(tagGPSLongitude, g.Longitude))
	}

	var ifd0 []entry
	if len(exifEntries) > 0 {
		ifd0 = append(ifd0, entry{tag: tagExifIFD, typ: typeLong, count: 1})
	}
	if len(gpsEntries) > 0 {
		ifd0 = append(ifd0, entry{tag: tagGPSIFD, typ: typeLong, count: 1})
	}

	ifd0Off := uint32(8)
	exifOff := ifd0Off + ifdSize(ifd0)
	gpsOff := exifOff + ifdSize(exifEntries)

	for i := range ifd0 {
		off := exifOff
		if ifd0[i].tag == tagGPSIFD {
			off = gpsOff
		}
		ifd0[i].data = binary.LittleEndian.AppendUint32(nil, off)
	}

	buf := &bytes.Buffer{}
	buf.WriteString("II")
	_ = binary.Write(buf, binary.LittleEndian, uint16(42))
	_ = binary.Write(buf, binary.LittleEndian, ifd0Off)

	writeIFD(buf, ifd0, ifd0Off)
	if len(exifEntries) > 0 {
		writeIFD(buf, exifEntries, exifOff)
	}
	if len(gpsEntries) > 0 {
		writeIFD(buf, gpsEntries, gpsOff)
	}

	return buf.Bytes()
}

// JPEG encodes a small image and inserts tiffBlock as an Exif APP1 segment. A nil block produces a plain JPEG.
func JPEG(tiffBlock []byte) []byte {
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, sample(), nil); err != nil {
		panic(err)
	}

	plain := buf.Bytes()
	if tiffBlock == nil {
		return plain
	}

	payload := append([]byte("Exif\x00\x00"), tiffBlock...)

	out := make([]byte, 0, len(plain)+len(payload)+4)
	out = append(out, plain[:2]...) // SOI
	out = append(out, 0xFF, 0xE1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	out = append(out, plain[2:]...)

	return out
}

// PNG encodes a small image and inserts tiffBlock as an eXIf chunk after IHDR.
func PNG(tiffBlock []byte) []byte {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, sample()); err != nil {
		panic(err)
	}

	plain := buf.Bytes()
	if tiffBlock == nil {
		return plain
	}

	const afterIHDR = 8 + 4 + 4 + 13 + 4

	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(tiffBlock)))
	chunk = append(chunk, "eXIf"...)
	chunk = append(chunk, tiffBlock...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(plain)+len(chunk))
	out = append(out, plain[:afterIHDR]...)
	out = append(out, chunk...)
	out = append(out, plain[afterIHDR:]...)

	return out
}

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	return img
}

func asciiEntry(tag uint16, s string) entry {
	data := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

// dmsEntry stores v as whole degrees, whole minutes and seconds in hundredths.
func dmsEntry(tag uint16, v float64) entry {
	v = math.Abs(v)
	deg := math.Floor(v)
	minutes := math.Floor((v - deg) * 60)
	sec := math.Round(((v-deg)*60-minutes)*60*100)

	var data []byte
	for _, r := range [][2]uint32{{uint32(deg), 1}, {uint32(minutes), 1}, {uint32(sec), 100}} {
		data = binary.LittleEndian.AppendUint32(data, r[0])
		data = binary.LittleEndian.AppendUint32(data, r[1])
	}

	return entry{tag: tag, typ: typeRational, count: 3, data: data}
}

func ifdSize(entries []entry) uint32 {
	if len(entries) == 0 {
		return 0
	}

	size := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if len(e.data) > 4 {
			size += uint32(len(e.data))
		}
	}

	return size
}

// writeIFD writes the directory at offset off followed by its out-of-line values.
func writeIFD(buf *bytes.Buffer, entries []entry, off uint32) {
	dataOff := off + uint32(2+12*len(entries)+4)

	_ = binary.Write(buf, binary.LittleEndian, uint16(len(entries)))

	var extra []byte
	for _, e := range entries {
		_ = binary.Write(buf, binary.LittleEndian, e.tag)
		_ = binary.Write(buf, binary.LittleEndian, e.typ)
		_ = binary.Write(buf, binary.LittleEndian, e.count)

		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			buf.Write(inline)
			continue
		}

		_ = binary.Write(buf, binary.LittleEndian, dataOff+uint32(len(extra)))
		extra = append(extra, e.data...)
	}

	_ = binary.Write(buf, binary.LittleEndian, uint32(0)) // next IFD
	buf.Write(extra)
}
