// Package filetype classifies uploads by their content signature.
package filetype

import (
	"errors"

	"github.com/gabriel-vasile/mimetype"
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	WEBP Format = "webp"
	MP4  Format = "mp4"
	MKV  Format = "mkv"
	TS   Format = "ts"
	AVI  Format = "avi"
)

var (
	ErrInvalidImageFormat = errors.New("invalid image format")
	ErrInvalidVideoFormat = errors.New("invalid video format")
)

type signature struct {
	mime   string
	format Format
}

var (
	imageSignatures = []signature{
		{mime: "image/png", format: PNG},
		{mime: "image/jpeg", format: JPEG},
		{mime: "image/webp", format: WEBP},
	}

	// webm это подмножество matroska
	videoSignatures = []signature{
		{mime: "video/mp4", format: MP4},
		{mime: "video/x-matroska", format: MKV},
		{mime: "video/webm", format: MKV},
		{mime: "video/x-msvideo", format: AVI},
	}
)

const tsPacketSize = 188

// Ext is the file extension used for stored names.
func (f Format) Ext() string {
	return string(f)
}

func DetectImage(data []byte) (Format, error) {
	if format, ok := detect(data, imageSignatures); ok {
		return format, nil
	}

	return "", ErrInvalidImageFormat
}

func DetectVideo(data []byte) (Format, error) {
	if format, ok := detect(data, videoSignatures); ok {
		return format, nil
	}

	// mimetype не распознает MPEG-TS
	if isTransportStream(data) {
		return TS, nil
	}

	return "", ErrInvalidVideoFormat
}

// ContentType MIME тип содержимого для метаданных объекта в хранилище
func ContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// detect сравнивает найденный тип и его предков: apng принимается как png,
// а mp4 с частным брендом как mp4
func detect(data []byte, signatures []signature) (Format, bool) {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		for _, sig := range signatures {
			if m.Is(sig.mime) {
				return sig.format, true
			}
		}
	}

	return "", false
}

// MPEG-TS packets start with sync byte 0x47; check the second packet too when present.
func isTransportStream(data []byte) bool {
	if len(data) < 4 || data[0] != 0x47 {
		return false
	}
	if len(data) > tsPacketSize {
		return data[tsPacketSize] == 0x47
	}

	return true
}
