package http

import (
	"errors"
	"fmt"
	"io"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/storage"

	"github.com/labstack/echo/v4"
)

// readParts читает multipart тело запроса по частям в порядке их получения
func (r *Routers) readParts(c echo.Context) ([]models.UploadedFile, error) {
	reader, err := c.Request().MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMultipart, err)
	}

	var parts []models.UploadedFile
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMultipart, err)
		}

		data, err := io.ReadAll(io.LimitReader(part, r.opts.MaxUploadSize+1))
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMultipart, err)
		}

		if int64(len(data)) > r.opts.MaxUploadSize {
			return nil, fmt.Errorf("%w: field %q", storage.ErrFileTooLarge, part.FormName())
		}

		parts = append(parts, models.UploadedFile{
			FieldName: part.FormName(),
			FileName:  part.FileName(),
			Data:      data,
		})
	}

	return parts, nil
}
