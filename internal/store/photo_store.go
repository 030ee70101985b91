package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/artcatalog/internal/domain"
)

// PhotoStore persists photo_associations rows. The image bytes themselves live
// in a photostore.PhotoStore.
type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func (s *PhotoStore) Create(ctx context.Context, itemID int64, imageID string, position int) (*domain.PhotoAssociation, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO photo_associations (catalog_item_id, image_id, position) VALUES (?, ?, ?)
	`, itemID, imageID, position)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo association: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PhotoStore) GetByID(ctx context.Context, id int64) (*domain.PhotoAssociation, error) {
	p := &domain.PhotoAssociation{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, catalog_item_id, image_id, position, created_at FROM photo_associations WHERE id = ?
	`, id).Scan(&p.ID, &p.CatalogItemID, &p.ImageID, &p.Position, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo association: %w", err)
	}

	return p, nil
}

func (s *PhotoStore) CountByItemID(ctx context.Context, itemID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM photo_associations WHERE catalog_item_id = ?
	`, itemID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count photo associations: %w", err)
	}
	return n, nil
}

// NextPosition returns the position a newly attached photo should take.
func (s *PhotoStore) NextPosition(ctx context.Context, itemID int64) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position) + 1, 0) FROM photo_associations WHERE catalog_item_id = ?
	`, itemID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next photo position: %w", err)
	}
	return next, nil
}

// ListByItemID returns an item's associations in insertion order.
func (s *PhotoStore) ListByItemID(ctx context.Context, itemID int64) ([]*domain.PhotoAssociation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, catalog_item_id, image_id, position, created_at FROM photo_associations
		WHERE catalog_item_id = ? ORDER BY position ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo associations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var photos []*domain.PhotoAssociation
	for rows.Next() {
		p := &domain.PhotoAssociation{}
		if err := rows.Scan(&p.ID, &p.CatalogItemID, &p.ImageID, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo association: %w", err)
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photo associations: %w", err)
	}

	return photos, nil
}

// ListImageIDs returns every image id referenced by any association.
func (s *PhotoStore) ListImageIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT image_id FROM photo_associations`)
	if err != nil {
		return nil, fmt.Errorf("failed to list image ids: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan image id: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image ids: %w", err)
	}

	return ids, nil
}

// DeleteByItemID removes an item's associations and returns them so the caller
// can clean up the referenced images.
func (s *PhotoStore) DeleteByItemID(ctx context.Context, itemID int64) ([]*domain.PhotoAssociation, error) {
	photos, err := s.ListByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos for item: %w", err)
	}
	if len(photos) == 0 {
		return nil, nil
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM photo_associations WHERE catalog_item_id = ?
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete photos for item: %w", err)
	}

	return photos, nil
}

func (s *PhotoStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM photo_associations WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo association: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("photo association %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
