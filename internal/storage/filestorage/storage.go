package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	storerr "project_gallery/internal/storage"
)

// FileStorage плоское пространство имен файлов проектов
type FileStorage interface {
	Save(ctx context.Context, name string, data []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}

// LocalFileStorage реализация для локальной файловой системы
type LocalFileStorage struct {
	baseDir string // Базовый каталог для хранения (например: "./storage")
}

func NewLocalFileStorage(baseDir string) (*LocalFileStorage, error) {
	// Создаем директорию, если она не существует
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
	}, nil
}

// ValidateName отклоняет имена, выходящие за пределы плоского каталога
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", storerr.ErrInvalidFileName, name)
	}

	return nil
}

func (s *LocalFileStorage) Save(ctx context.Context, name string, data []byte) error {
	const op = "filestorage.LocalFileStorage.Save"

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := ValidateName(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	filePath := s.GetFullPath(name)

	// O_EXCL: имена уникальны по построению, перезапись означает ошибку
	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%s: failed to create destination file: %w", op, err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var copyErr error

	go func() {
		_, copyErr = io.Copy(dst, bytes.NewReader(data))
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return fmt.Errorf("%s: failed to copy file: %w", op, copyErr)
		}
	case <-ctx.Done():
		<-done
		_ = os.Remove(filePath)
		return ctx.Err()
	}

	return nil
}

func (s *LocalFileStorage) Read(ctx context.Context, name string) ([]byte, error) {
	const op = "filestorage.LocalFileStorage.Read"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := os.ReadFile(s.GetFullPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w: %s", op, storerr.ErrFileNotFound, name)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

func (s *LocalFileStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	info, err := os.Stat(s.GetFullPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return info.Mode().IsRegular(), nil
}

// Delete удаляет файл из хранилища
func (s *LocalFileStorage) Delete(ctx context.Context, name string) error {
	const op = "filestorage.LocalFileStorage.Delete"

	if err := ValidateName(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(s.GetFullPath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w: %s", op, storerr.ErrFileNotFound, name)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalFileStorage) GetFullPath(name string) string {
	return filepath.Join(s.baseDir, name)
}
