package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dmorales/becas-core/internal/pkg/logger"
)

// LocalStorage stores files on the local filesystem under a base directory
// and serves them under a base URL.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a LocalStorage rooted at basePath.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SaveFile saves an uploaded file under a random name, keeping its extension.
func (s *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(fileHeader.Filename)
	name := uuid.New().String() + ext
	fullPath := filepath.Join(s.basePath, name)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Best effort cleanup of the partial file.
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.Debug().Str("file", name).Int64("size", fileHeader.Size).Msg("File stored")
	return s.baseURL + "/" + name, nil
}

// SaveBytes saves generated content under the given filename.
func (s *LocalStorage) SaveBytes(filename string, content []byte) (string, error) {
	name := filepath.Base(filename) // never escape the storage root
	fullPath := filepath.Join(s.basePath, name)

	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// DeleteFile removes the file behind a public URL.
func (s *LocalStorage) DeleteFile(fileURL string) error {
	fullPath := s.GetFullPath(fileURL)
	if fullPath == "" {
		return fmt.Errorf("file URL %q is outside storage", fileURL)
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetFullPath maps a public URL back to a filesystem path. It returns an
// empty string for URLs not under the storage base URL.
func (s *LocalStorage) GetFullPath(fileURL string) string {
	if !strings.HasPrefix(fileURL, s.baseURL+"/") {
		return ""
	}
	name := filepath.Base(strings.TrimPrefix(fileURL, s.baseURL+"/"))
	return filepath.Join(s.basePath, name)
}
