package photostore

import (
	"context"
	"io"
	"mime"
	"strings"
)

// PhotoStore keeps photo payloads outside the catalog database, keyed by a
// generated image id.
//
// Load returns domain.ErrNotFound for an unknown id. Delete of an unknown id is
// a no-op. Save failures wrap domain.ErrStorageWrite.
type PhotoStore interface {
	Save(ctx context.Context, mimeType string, r io.Reader) (imageID string, err error)
	Load(ctx context.Context, imageID string) (data []byte, mimeType string, err error)
	Delete(ctx context.Context, imageID string) error
	List(ctx context.Context) ([]string, error)
}

// MimeTypeToExt maps a photo mime type to the extension used in image ids.
func MimeTypeToExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}

// ExtToMimeType is the inverse of MimeTypeToExt.
func ExtToMimeType(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
