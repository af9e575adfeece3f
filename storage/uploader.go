package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader хранит архивные копии сеток (например, итоговую HTML-страницу турнира).
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ArchiveKey returns the object key of a tournament's final bracket page.
func ArchiveKey(tournamentID string) string {
	return "brackets/" + tournamentID + "/final.html"
}
