package models

import (
	"path/filepath"
	"strings"
	"time"
)

type MediaKind string

const (
	MediaKindPicture MediaKind = "picture"
	MediaKindVideo   MediaKind = "video"
)

// GeoLocation координаты WGS84 и страна, полученная обратным геокодированием
type GeoLocation struct {
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PictureMetadata данные, извлеченные из одного изображения. Не сохраняется в БД
type PictureMetadata struct {
	TakenAt *time.Time
	Geo     *GeoLocation
}

// UploadedFile бинарная часть multipart запроса
type UploadedFile struct {
	FieldName string
	FileName  string
	Data      []byte
}

// Label имя, которое попадет в сгенерированное имя файла: имя файла без
// расширения, если клиент его передал, иначе имя поля
func (f UploadedFile) Label() string {
	if f.FileName != "" {
		base := filepath.Base(f.FileName)
		if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" && stem != "." {
			return stem
		}
	}

	return f.FieldName
}

// StoredFile файл, прошедший проверку сигнатуры и получивший имя в хранилище
type StoredFile struct {
	Name     string
	Data     []byte
	Metadata PictureMetadata
}
