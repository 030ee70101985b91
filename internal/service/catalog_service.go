package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vbonduro/artcatalog/internal/domain"
	"github.com/vbonduro/artcatalog/internal/photostore"
)

// collectionRepository is the subset of store.CollectionStore that CatalogService requires.
type collectionRepository interface {
	Create(ctx context.Context, clientName, removalNumber string) (*domain.Collection, error)
	GetByID(ctx context.Context, id int64) (*domain.Collection, error)
	GetByRemovalNumber(ctx context.Context, removalNumber string) (*domain.Collection, error)
	List(ctx context.Context) ([]*domain.Collection, error)
	Delete(ctx context.Context, id int64) error
}

// itemRepository is the subset of store.ItemStore that CatalogService requires.
type itemRepository interface {
	Create(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error)
	GetByID(ctx context.Context, id int64) (*domain.CatalogItem, error)
	ListByCollectionID(ctx context.Context, collectionID int64) ([]*domain.CatalogItem, error)
	Delete(ctx context.Context, id int64) error
}

// NewItemRequest carries the field values of an item that has not been saved yet.
type NewItemRequest struct {
	Type    domain.ObjectType
	Common  domain.Common
	Details domain.Details
}

// CatalogService is the single entry point for reading and changing the
// catalog. Mutations are applied one at a time.
type CatalogService struct {
	collections collectionRepository
	items       itemRepository
	photos      photoRepository
	photoStg    photostore.PhotoStore
	attacher    *PhotoAttacher
	logger      *slog.Logger

	mu sync.Mutex
}

func NewCatalogService(
	collections collectionRepository,
	items itemRepository,
	photos photoRepository,
	photoStg photostore.PhotoStore,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		collections: collections,
		items:       items,
		photos:      photos,
		photoStg:    photoStg,
		attacher:    NewPhotoAttacher(photos, photoStg, logger),
		logger:      logger,
	}
}

// CreateCollection adds a collection unless its removal number is taken.
func (s *CatalogService) CreateCollection(ctx context.Context, clientName, removalNumber string) (*domain.Collection, error) {
	clientName = strings.TrimSpace(clientName)
	removalNumber = strings.TrimSpace(removalNumber)
	if removalNumber == "" {
		return nil, fmt.Errorf("%w: removal number is required", domain.ErrInvalidCollection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.collections.GetByRemovalNumber(ctx, removalNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicates: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateRemovalNumber, removalNumber)
	}

	c, err := s.collections.Create(ctx, clientName, removalNumber)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRemovalNumber) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}

	s.logger.Info("collection created", "collection_id", c.ID, "removal_number", c.RemovalNumber)
	return c, nil
}

func (s *CatalogService) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	return s.collections.List(ctx)
}

func (s *CatalogService) GetCollection(ctx context.Context, id int64) (*domain.Collection, error) {
	c, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("collection %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// DeleteCollection removes the collection with all of its items, their photo
// associations and the stored images.
func (s *CatalogService) DeleteCollection(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetCollection(ctx, id); err != nil {
		return err
	}

	items, err := s.items.ListByCollectionID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	for _, item := range items {
		if err := s.deleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("failed to delete item %d: %w", item.ID, err)
		}
	}

	if err := s.collections.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}

	s.logger.Info("collection deleted", "collection_id", id, "items_deleted", len(items))
	return nil
}

// CreateCatalogItem saves a new item and attaches photos in order. Either the
// item is saved with every photo, or nothing of it remains.
func (s *CatalogService) CreateCatalogItem(ctx context.Context, collectionID int64, req NewItemRequest, photos []PhotoUpload) (*domain.CatalogItem, error) {
	if len(photos) > domain.MaxPhotosPerItem {
		return nil, fmt.Errorf("%w: %d photos given, at most %d allowed", domain.ErrPhotoLimitExceeded, len(photos), domain.MaxPhotosPerItem)
	}

	item, err := domain.NewCatalogItem(collectionID, req.Type, req.Common, req.Details)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	s.logger.Info("create catalog item started", "collection_id", collectionID, "object_type", item.Type, "photos", len(photos))

	saved, err := s.items.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}

	saved.Photos = make([]*domain.PhotoAssociation, 0, len(photos))
	for i, upload := range photos {
		photo, err := s.attacher.Attach(ctx, saved.ID, upload)
		if err != nil {
			s.rollbackItem(ctx, saved.ID, saved.Photos)
			return nil, fmt.Errorf("failed to attach photo %d: %w", i+1, err)
		}
		saved.Photos = append(saved.Photos, photo)
	}

	s.logger.Info("create catalog item complete", "item_id", saved.ID, "photos_attached", len(saved.Photos))
	return saved, nil
}

// rollbackItem undoes a partially created item. attached holds the photos
// written so far; their images are deleted even when the association rows
// cannot be read back. Failures are logged; the error that caused the rollback
// is the one reported to the caller.
func (s *CatalogService) rollbackItem(ctx context.Context, itemID int64, attached []*domain.PhotoAssociation) {
	ctx = context.WithoutCancel(ctx)
	if err := s.attacher.DetachAll(ctx, itemID); err != nil {
		s.logger.Error("failed to roll back photos", "item_id", itemID, "error", err)
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		s.logger.Error("failed to roll back catalog item", "item_id", itemID, "error", err)
	}
	for _, p := range attached {
		if err := s.photoStg.Delete(ctx, p.ImageID); err != nil {
			s.logger.Error("failed to roll back photo file", "item_id", itemID, "image_id", p.ImageID, "error", err)
		}
	}
	s.logger.Warn("catalog item rolled back", "item_id", itemID)
}

func (s *CatalogService) GetItem(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("catalog item %d: %w", id, domain.ErrNotFound)
	}

	item.Photos, err = s.attacher.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return item, nil
}

// ListItems returns the collection's items by date, oldest first, each with
// its photos.
func (s *CatalogService) ListItems(ctx context.Context, collectionID int64) ([]*domain.CatalogItem, error) {
	if _, err := s.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	items, err := s.items.ListByCollectionID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if items == nil {
		return []*domain.CatalogItem{}, nil
	}

	for _, item := range items {
		item.Photos, err = s.attacher.List(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list photos for item %d: %w", item.ID, err)
		}
	}
	return items, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get catalog item: %w", err)
	}
	if item == nil {
		return fmt.Errorf("catalog item %d: %w", id, domain.ErrNotFound)
	}

	if err := s.deleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info("catalog item deleted", "item_id", id)
	return nil
}

func (s *CatalogService) deleteItem(ctx context.Context, id int64) error {
	if err := s.attacher.DetachAll(ctx, id); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}
	return nil
}

// AttachPhoto adds one photo to an existing item.
func (s *CatalogService) AttachPhoto(ctx context.Context, itemID int64, upload PhotoUpload) (*domain.PhotoAssociation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("catalog item %d: %w", itemID, domain.ErrNotFound)
	}

	photo, err := s.attacher.Attach(ctx, itemID, upload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("photo attached", "item_id", itemID, "image_id", photo.ImageID, "position", photo.Position)
	return photo, nil
}

// DetachAll removes every photo from an item, including the stored images.
func (s *CatalogService) DetachAll(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to get catalog item: %w", err)
	}
	if item == nil {
		return fmt.Errorf("catalog item %d: %w", itemID, domain.ErrNotFound)
	}

	return s.attacher.DetachAll(ctx, itemID)
}

// LoadPhoto returns the stored bytes and mime type of an image.
func (s *CatalogService) LoadPhoto(ctx context.Context, imageID string) ([]byte, string, error) {
	return s.photoStg.Load(ctx, imageID)
}

// SweepOrphans deletes stored images that no photo association references and
// returns their ids.
func (s *CatalogService) SweepOrphans(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	referenced, err := s.photos.ListImageIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced images: %w", err)
	}
	stored, err := s.photoStg.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored images: %w", err)
	}

	var removed []string
	for _, id := range stored {
		if _, ok := referenced[id]; ok {
			continue
		}
		if err := s.photoStg.Delete(ctx, id); err != nil {
			s.logger.Error("failed to delete orphaned photo", "image_id", id, "error", err)
			continue
		}
		removed = append(removed, id)
	}

	if len(removed) > 0 {
		s.logger.Info("orphaned photos removed", "count", len(removed))
	}
	return removed, nil
}
