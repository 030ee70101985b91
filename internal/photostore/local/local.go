package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vbonduro/artcatalog/internal/domain"
	"github.com/vbonduro/artcatalog/internal/photostore"
)

const tempPrefix = ".tmp-"

// LocalPhotoStore writes each photo as a file named by its image id inside
// basePath. The directory is created on the first Save.
type LocalPhotoStore struct {
	basePath string
}

func NewLocalPhotoStore(basePath string) *LocalPhotoStore {
	return &LocalPhotoStore{basePath: basePath}
}

// Save writes to a temporary file and renames it into place, so a failed write
// never appears under an image id.
func (s *LocalPhotoStore) Save(ctx context.Context, mimeType string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create photo directory: %w", domain.ErrStorageWrite, err)
	}

	imageID := uuid.NewString() + photostore.MimeTypeToExt(mimeType)
	filePath := filepath.Join(s.basePath, imageID)

	f, err := os.CreateTemp(s.basePath, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("%w: failed to create file: %w", domain.ErrStorageWrite, err)
	}
	tmpPath := f.Name()

	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		removeTemp(tmpPath)
		return "", fmt.Errorf("%w: failed to write file: %w", domain.ErrStorageWrite, err)
	}
	if err := f.Sync(); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after sync error", "error", cerr)
		}
		removeTemp(tmpPath)
		return "", fmt.Errorf("%w: failed to sync file: %w", domain.ErrStorageWrite, err)
	}
	if err := f.Close(); err != nil {
		removeTemp(tmpPath)
		return "", fmt.Errorf("%w: failed to close file: %w", domain.ErrStorageWrite, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		removeTemp(tmpPath)
		return "", fmt.Errorf("%w: failed to rename file: %w", domain.ErrStorageWrite, err)
	}
	return imageID, nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to remove temporary photo file", "path", path, "error", err)
	}
}

func (s *LocalPhotoStore) Load(ctx context.Context, imageID string) ([]byte, string, error) {
	filePath, err := s.safeJoin(imageID)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("photo %s: %w", imageID, domain.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	return data, photostore.ExtToMimeType(filepath.Ext(filePath)), nil
}

func (s *LocalPhotoStore) Delete(ctx context.Context, imageID string) error {
	filePath, err := s.safeJoin(imageID)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List returns the ids of all stored photos. In-flight temporary files are
// skipped.
func (s *LocalPhotoStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read photo directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		ids = append(ids, entry.Name())
	}
	return ids, nil
}

// safeJoin resolves imageID relative to basePath and rejects directory
// traversal. An id that cannot name a stored photo is reported as not found.
func (s *LocalPhotoStore) safeJoin(imageID string) (string, error) {
	if imageID == "" || imageID != filepath.Base(imageID) || strings.HasPrefix(imageID, tempPrefix) {
		return "", fmt.Errorf("invalid photo id %q: %w", imageID, domain.ErrNotFound)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, imageID))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt %q: %w", imageID, domain.ErrNotFound)
	}
	return absPath, nil
}
