package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/artcatalog/internal/domain"
	"github.com/vbonduro/artcatalog/internal/photostore"
)

// photoRepository is the subset of store.PhotoStore the service requires.
type photoRepository interface {
	Create(ctx context.Context, itemID int64, imageID string, position int) (*domain.PhotoAssociation, error)
	CountByItemID(ctx context.Context, itemID int64) (int, error)
	NextPosition(ctx context.Context, itemID int64) (int, error)
	ListByItemID(ctx context.Context, itemID int64) ([]*domain.PhotoAssociation, error)
	ListImageIDs(ctx context.Context) (map[string]struct{}, error)
	DeleteByItemID(ctx context.Context, itemID int64) ([]*domain.PhotoAssociation, error)
}

// PhotoUpload is one photo waiting to be attached to an item.
type PhotoUpload struct {
	Data     []byte
	MimeType string
}

// PhotoAttacher links stored images to catalog items. Calls for the same item
// are serialized so the photo limit check and the write happen together.
type PhotoAttacher struct {
	photos   photoRepository
	photoStg photostore.PhotoStore
	locks    *keyedMutex
	logger   *slog.Logger
}

func NewPhotoAttacher(photos photoRepository, photoStg photostore.PhotoStore, logger *slog.Logger) *PhotoAttacher {
	return &PhotoAttacher{
		photos:   photos,
		photoStg: photoStg,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// Attach stores upload and links it to the item at the next position. The
// limit is checked before anything is written, and the stored image is removed
// again if the association row cannot be created.
func (a *PhotoAttacher) Attach(ctx context.Context, itemID int64, upload PhotoUpload) (*domain.PhotoAssociation, error) {
	unlock := a.locks.Lock(itemID)
	defer unlock()

	count, err := a.photos.CountByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}
	if count >= domain.MaxPhotosPerItem {
		return nil, fmt.Errorf("%w: item %d already has %d photos", domain.ErrPhotoLimitExceeded, itemID, count)
	}

	position, err := a.photos.NextPosition(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo position: %w", err)
	}

	imageID, err := a.photoStg.Save(ctx, upload.MimeType, bytes.NewReader(upload.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	a.logger.Debug("photo saved", "item_id", itemID, "image_id", imageID, "bytes", len(upload.Data))

	photo, err := a.photos.Create(ctx, itemID, imageID, position)
	if err != nil {
		if stgErr := a.photoStg.Delete(context.WithoutCancel(ctx), imageID); stgErr != nil {
			a.logger.Error("failed to roll back photo file", "item_id", itemID, "image_id", imageID, "error", stgErr)
		}
		return nil, fmt.Errorf("%w: failed to create photo association: %w", domain.ErrPersistenceWrite, err)
	}

	return photo, nil
}

// DetachAll removes every association of the item, then the images they
// referenced. An interruption between the two leaves orphaned images, which
// SweepOrphans reclaims, never an association without its image.
func (a *PhotoAttacher) DetachAll(ctx context.Context, itemID int64) error {
	unlock := a.locks.Lock(itemID)
	defer unlock()

	photos, err := a.photos.DeleteByItemID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete photo associations: %w", domain.ErrPersistenceWrite, err)
	}

	for _, p := range photos {
		if err := a.photoStg.Delete(ctx, p.ImageID); err != nil {
			a.logger.Error("failed to delete photo file", "item_id", itemID, "image_id", p.ImageID, "error", err)
		}
	}
	if len(photos) > 0 {
		a.logger.Debug("photos detached", "item_id", itemID, "count", len(photos))
	}
	return nil
}

// List returns the item's associations in insertion order.
func (a *PhotoAttacher) List(ctx context.Context, itemID int64) ([]*domain.PhotoAssociation, error) {
	return a.photos.ListByItemID(ctx, itemID)
}
