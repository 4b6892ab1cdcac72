package filestorage

import "mime/multipart"

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile saves an uploaded file and returns its public URL
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveBytes saves generated content under the given filename and
	// returns its public URL
	SaveBytes(filename string, content []byte) (string, error)

	// DeleteFile removes a file from storage
	DeleteFile(fileURL string) error

	// GetFullPath returns the full filesystem path for a given file URL
	GetFullPath(fileURL string) string
}
