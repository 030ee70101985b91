package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/artcatalog/internal/domain"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, collection_id, object_type, storage_type, storage_location, item_date,
	title, artist_name, medium, description, dimensions, contents, created_at`

// variantColumns holds the nullable per-variant columns of catalog_items.
// Columns that do not apply to an item's object type stay NULL.
type variantColumns struct {
	title, artistName, medium, description, dimensions, contents sql.NullString
}

func columnsFor(details domain.Details) variantColumns {
	var v variantColumns
	switch d := details.(type) {
	case domain.ArtworkDetails:
		v.title = validString(d.Title)
		v.artistName = validString(d.ArtistName)
		v.medium = validString(string(d.Medium))
	case domain.FurnitureDetails:
		v.description = validString(d.Description)
	case domain.ContainerDetails:
		v.dimensions = validString(d.Dimensions)
		v.contents = validString(d.Contents)
	}
	return v
}

func validString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func (v variantColumns) details(objectType domain.ObjectType) (domain.Details, error) {
	switch {
	case objectType == domain.ObjectArtwork:
		return domain.ArtworkDetails{
			Title:      v.title.String,
			ArtistName: v.artistName.String,
			Medium:     domain.Medium(v.medium.String),
		}, nil
	case objectType == domain.ObjectFurniture:
		return domain.FurnitureDetails{Description: v.description.String}, nil
	case objectType.IsContainer():
		return domain.ContainerDetails{Dimensions: v.dimensions.String, Contents: v.contents.String}, nil
	}
	return nil, fmt.Errorf("unknown object type %q in catalog_items", objectType)
}

// Create inserts item and returns the stored copy. The item's Photos are not
// written; associations are managed by PhotoStore.
func (s *ItemStore) Create(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error) {
	v := columnsFor(item.Details)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_items (collection_id, object_type, storage_type, storage_location, item_date,
			title, artist_name, medium, description, dimensions, contents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.CollectionID, string(item.Type), string(item.Storage), item.StorageLocation, item.Date.UTC(),
		v.title, v.artistName, v.medium, v.description, v.dimensions, v.contents)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.CatalogItem, error) {
	var (
		item        domain.CatalogItem
		objectType  string
		storageType string
		date        time.Time
		v           variantColumns
	)
	if err := row.Scan(&item.ID, &item.CollectionID, &objectType, &storageType, &item.StorageLocation, &date,
		&v.title, &v.artistName, &v.medium, &v.description, &v.dimensions, &v.contents, &item.CreatedAt); err != nil {
		return nil, err
	}

	item.Type = domain.ObjectType(objectType)
	item.Storage = domain.StorageType(storageType)
	item.Date = date.UTC()

	details, err := v.details(item.Type)
	if err != nil {
		return nil, err
	}
	item.Details = details

	return &item, nil
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM catalog_items WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}

	return item, nil
}

// ListByCollectionID returns a collection's items by date, oldest first.
func (s *ItemStore) ListByCollectionID(ctx context.Context, collectionID int64) ([]*domain.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM catalog_items
		WHERE collection_id = ? ORDER BY item_date ASC, id ASC
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.CatalogItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog items: %w", err)
	}

	return items, nil
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM catalog_items WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("catalog item %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
